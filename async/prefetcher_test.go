package async

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-chessnet/tensor"
	"github.com/tsawler/go-chessnet/vision/dataloader"
)

// countingSource yields n single-sample batches labelled 0..n-1.
type countingSource struct {
	mu     sync.Mutex
	n      int
	pos    int
	resets int
	failAt int
	gate   chan struct{}
}

func (s *countingSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.resets++
}

func (s *countingSource) NumBatches() int { return s.n }

func (s *countingSource) NextBatch() (*dataloader.Batch, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= s.n {
		return nil, nil
	}
	if s.failAt > 0 && s.pos == s.failAt {
		return nil, errors.New("corrupt image")
	}
	s.pos++
	return &dataloader.Batch{
		Images: tensor.MustNew([]int{1, 1}, []float32{float32(s.pos - 1)}),
		Labels: []int{s.pos - 1},
	}, nil
}

func drain(t *testing.T, p *Prefetcher) []int {
	t.Helper()
	var labels []int
	for {
		b, err := p.NextBatch()
		require.NoError(t, err)
		if b == nil {
			return labels
		}
		labels = append(labels, b.Labels...)
	}
}

func TestPrefetcherPreservesOrder(t *testing.T) {
	src := &countingSource{n: 5}
	p, err := NewPrefetcher(src, 2)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 5, p.NumBatches())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, drain(t, p))

	// The end of the epoch is sticky until Reset.
	b, err := p.NextBatch()
	assert.NoError(t, err)
	assert.Nil(t, b)
	assert.Equal(t, int64(5), p.Produced())
}

func TestPrefetcherResetStartsNewEpoch(t *testing.T) {
	src := &countingSource{n: 4}
	p, err := NewPrefetcher(src, 3)
	require.NoError(t, err)
	defer p.Close()

	b, err := p.NextBatch()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, b.Labels)

	p.Reset()
	assert.Equal(t, []int{0, 1, 2, 3}, drain(t, p))
	assert.Equal(t, 1, src.resets)
}

func TestPrefetcherReportsErrors(t *testing.T) {
	src := &countingSource{n: 5, failAt: 2}
	p, err := NewPrefetcher(src, 1)
	require.NoError(t, err)
	defer p.Close()

	for i := 0; i < 2; i++ {
		_, err := p.NextBatch()
		require.NoError(t, err)
	}
	_, err = p.NextBatch()
	assert.EqualError(t, err, "corrupt image")

	b, err := p.NextBatch()
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestPrefetcherResetWhileProducerIsBlocked(t *testing.T) {
	gate := make(chan struct{})
	src := &countingSource{n: 10, gate: gate}
	p, err := NewPrefetcher(src, 1)
	require.NoError(t, err)

	go func() {
		for i := 0; i < 3; i++ {
			gate <- struct{}{}
		}
		close(gate)
	}()
	b, err := p.NextBatch()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, b.Labels)

	p.Reset()
	labels := drain(t, p)
	assert.Len(t, labels, 10)
	p.Close()

	_, err = p.NextBatch()
	assert.Error(t, err)
}

func TestNewPrefetcherDefaults(t *testing.T) {
	_, err := NewPrefetcher(nil, 2)
	assert.Error(t, err)

	p, err := NewPrefetcher(&countingSource{}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefetchDepth, p.Depth())
	assert.Empty(t, drain(t, p))
}
