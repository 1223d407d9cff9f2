package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachVisitsEveryIndex(t *testing.T) {
	const n = 257
	seen := make([]int32, n)

	err := ForEach(n, 4, func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	require.NoError(t, err)

	for i, v := range seen {
		assert.Equalf(t, int32(1), v, "index %d visited %d times", i, v)
	}
}

func TestForEachReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(10, 3, func(i int) error {
		if i == 7 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	err = ForEach(5, 1, func(i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachEmpty(t *testing.T) {
	called := false
	require.NoError(t, ForEach(0, 4, func(int) error {
		called = true
		return nil
	}))
	assert.False(t, called)
}

func TestRangeCoversLength(t *testing.T) {
	for _, tc := range []struct{ length, limit int }{
		{1, 8}, {10, 3}, {100, 7}, {64, 64}, {5, 0},
	} {
		var total int64
		covered := make([]int32, tc.length)
		Range(tc.length, tc.limit, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&covered[i], 1)
			}
			atomic.AddInt64(&total, int64(end-start))
		})
		assert.Equal(t, int64(tc.length), total)
		for i, c := range covered {
			assert.Equalf(t, int32(1), c, "length=%d index %d", tc.length, i)
		}
	}
}

func TestWorkersPositive(t *testing.T) {
	assert.Greater(t, Workers(), 0)
	assert.NotEmpty(t, Describe())
}
