package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesShape(t *testing.T) {
	_, err := New([]int{2, 0}, nil)
	assert.Error(t, err)

	_, err = New([]int{2, 2}, []float32{1, 2, 3})
	assert.Error(t, err)

	tt, err := New([]int{2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, tt.NumElems)
	assert.Equal(t, []int{3, 1}, tt.Strides)
}

func TestReshapeSharesData(t *testing.T) {
	tt := MustNew([]int{2, 2, 1, 1}, []float32{1, 2, 3, 4})
	flat, err := tt.Flatten()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, flat.Shape)

	flat.Data[0] = 9
	assert.Equal(t, float32(9), tt.Data[0])

	_, err = tt.Reshape(3, 2)
	assert.Error(t, err)
}

// naiveConv is a direct seven-loop convolution used as a reference.
func naiveConv(in, w, b *Tensor, stride, pad int) []float32 {
	n, c, h, wd := in.Shape[0], in.Shape[1], in.Shape[2], in.Shape[3]
	co, kh, kw := w.Shape[0], w.Shape[2], w.Shape[3]
	ho := (h+2*pad-kh)/stride + 1
	wo := (wd+2*pad-kw)/stride + 1
	out := make([]float32, n*co*ho*wo)
	for i := 0; i < n; i++ {
		for o := 0; o < co; o++ {
			for y := 0; y < ho; y++ {
				for x := 0; x < wo; x++ {
					var s float32
					if b != nil {
						s = b.Data[o]
					}
					for ch := 0; ch < c; ch++ {
						for ky := 0; ky < kh; ky++ {
							for kx := 0; kx < kw; kx++ {
								iy, ix := y*stride-pad+ky, x*stride-pad+kx
								if iy < 0 || iy >= h || ix < 0 || ix >= wd {
									continue
								}
								s += in.Data[((i*c+ch)*h+iy)*wd+ix] * w.Data[((o*c+ch)*kh+ky)*kw+kx]
							}
						}
					}
					out[((i*co+o)*ho+y)*wo+x] = s
				}
			}
		}
	}
	return out
}

func TestConv2DMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		n, c, h, w, co, k, stride, pad int
		bias                           bool
	}{
		{1, 3, 7, 7, 4, 3, 1, 1, true},
		{2, 2, 9, 8, 3, 3, 2, 1, false},
		{5, 3, 12, 12, 2, 5, 4, 2, true},
		{64, 1, 4, 4, 2, 1, 1, 0, true},
	}
	for _, tc := range cases {
		in, err := RandN([]int{tc.n, tc.c, tc.h, tc.w}, rng)
		require.NoError(t, err)
		w, err := RandN([]int{tc.co, tc.c, tc.k, tc.k}, rng)
		require.NoError(t, err)
		var b *Tensor
		if tc.bias {
			b, err = RandN([]int{tc.co}, rng)
			require.NoError(t, err)
		}

		got, err := Conv2D(in, w, b, tc.stride, tc.pad)
		require.NoError(t, err)
		want := naiveConv(in, w, b, tc.stride, tc.pad)
		require.Len(t, got.Data, len(want))
		for i := range want {
			assert.InDelta(t, want[i], got.Data[i], 1e-4)
		}
	}
}

func TestConv2DChannelMismatch(t *testing.T) {
	in := MustNew([]int{1, 3, 4, 4}, nil)
	w := MustNew([]int{2, 2, 3, 3}, nil)
	_, err := Conv2D(in, w, nil, 1, 1)
	assert.Error(t, err)
}

func TestMaxPool2D(t *testing.T) {
	in := MustNew([]int{1, 1, 4, 4}, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	out, err := MaxPool2D(in, 2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2}, out.Shape)
	assert.Equal(t, []float32{6, 8, 14, 16}, out.Data)

	// kernel 3, stride 2, padding 1 (the ResNet stem)
	out, err = MaxPool2D(in, 3, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2}, out.Shape)
	assert.Equal(t, []float32{6, 8, 14, 16}, out.Data)
}

func TestAdaptiveAvgPool2D(t *testing.T) {
	in := MustNew([]int{1, 1, 2, 2}, []float32{1, 2, 3, 4})
	out, err := AdaptiveAvgPool2D(in, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.5}, out.Data)

	// Upsampling replicates, as in VGG's 7x7 pool on small inputs.
	out, err = AdaptiveAvgPool2D(MustNew([]int{1, 1, 1, 1}, []float32{3}), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 3, 3, 3}, out.Data)

	// Divisible sizes match a plain average pool.
	rng := rand.New(rand.NewSource(2))
	x, err := RandN([]int{2, 3, 6, 6}, rng)
	require.NoError(t, err)
	a, err := AdaptiveAvgPool2D(x, 3, 3)
	require.NoError(t, err)
	b, err := AvgPool2D(x, 2, 2, 2, 2)
	require.NoError(t, err)
	assert.True(t, AllClose(a, b, 1e-5, 1e-6))
}

func TestLinear(t *testing.T) {
	x := MustNew([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	w := MustNew([]int{2, 3}, []float32{1, 0, 0, 0, 1, 1})
	b := MustNew([]int{2}, []float32{0.5, -1})

	out, err := Linear(x, w, b)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, out.Shape)
	assert.Equal(t, []float32{1.5, 4, 4.5, 10}, out.Data)

	_, err = Linear(MustNew([]int{2, 4}, nil), w, b)
	assert.Error(t, err)
}

func TestMatMul(t *testing.T) {
	a := MustNew([]int{2, 2}, []float32{1, 2, 3, 4})
	b := MustNew([]int{2, 3}, []float32{1, 0, 1, 0, 1, 1})
	out, err := MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 3, 4, 7}, out.Data)
}

func TestBatchNormWithOwnStatisticsIsStandardized(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x, err := RandN([]int{4, 2, 3, 3}, rng)
	require.NoError(t, err)
	for i := range x.Data {
		x.Data[i] = x.Data[i]*3 + 7
	}

	mean, variance, err := ChannelStats(x)
	require.NoError(t, err)
	y, err := BatchNorm2D(x, mean, variance, nil, nil, 0)
	require.NoError(t, err)

	m2, v2, err := ChannelStats(y)
	require.NoError(t, err)
	for c := 0; c < 2; c++ {
		assert.InDelta(t, 0, m2[c], 1e-4)
		assert.InDelta(t, 1, v2[c], 1e-3)
	}
}

func TestSoftmaxAndArgMax(t *testing.T) {
	x := MustNew([]int{2, 3}, []float32{1, 3, 2, 1000, 0, -1000})
	p, err := Softmax(x)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		var sum float64
		for _, v := range p.Data[i*3 : (i+1)*3] {
			assert.False(t, math.IsNaN(float64(v)))
			sum += float64(v)
		}
		assert.InDelta(t, 1, sum, 1e-6)
	}

	idx, err := ArgMax(x)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, idx)
}

func TestReLUAndAdd(t *testing.T) {
	x := MustNew([]int{4}, []float32{-1, 0, 2, -3})
	assert.Equal(t, []float32{0, 0, 2, 0}, ReLU(x).Data)
	assert.Equal(t, float32(-1), x.Data[0])

	sum, err := Add(x, x)
	require.NoError(t, err)
	assert.Equal(t, []float32{-2, 0, 4, -6}, sum.Data)

	_, err = Add(x, MustNew([]int{2}, nil))
	assert.Error(t, err)
}
