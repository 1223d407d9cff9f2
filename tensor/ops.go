package tensor

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/parallel"
)

// ReLU returns max(x, 0) element-wise.
func ReLU(t *Tensor) *Tensor {
	out := t.Clone()
	ReLUInPlace(out)
	return out
}

// ReLUInPlace clamps negative elements of t to zero.
func ReLUInPlace(t *Tensor) {
	for i, v := range t.Data {
		if v < 0 {
			t.Data[i] = 0
		}
	}
}

// Add returns a + b for tensors of identical shape.
func Add(a, b *Tensor) (*Tensor, error) {
	if !SameShape(a.Shape, b.Shape) {
		return nil, errors.Errorf("add: shape mismatch %v vs %v", a.Shape, b.Shape)
	}
	out := a.Clone()
	for i, v := range b.Data {
		out.Data[i] += v
	}
	return out, nil
}

// Linear computes x @ weight^T + bias for x [N, in], weight [out, in] and
// bias [out] (optional), the torch.nn.Linear convention.
func Linear(x, weight, bias *Tensor) (*Tensor, error) {
	if err := expectDims("linear input", x, 2); err != nil {
		return nil, err
	}
	if err := expectDims("linear weight", weight, 2); err != nil {
		return nil, err
	}
	n, in := x.Shape[0], x.Shape[1]
	outF, inW := weight.Shape[0], weight.Shape[1]
	if in != inW {
		return nil, errors.Errorf("linear: input features %d != weight in_features %d", in, inW)
	}
	if bias != nil && bias.NumElems != outF {
		return nil, errors.Errorf("linear: bias has %d elements, want %d", bias.NumElems, outF)
	}

	out, err := New([]int{n, outF}, nil)
	if err != nil {
		return nil, err
	}

	parallel.Range(outF, 0, func(start, end int) {
		for o := start; o < end; o++ {
			wRow := weight.Data[o*in : (o+1)*in]
			b := float32(0)
			if bias != nil {
				b = bias.Data[o]
			}
			for i := 0; i < n; i++ {
				xRow := x.Data[i*in : (i+1)*in]
				out.Data[i*outF+o] = dot(xRow, wRow) + b
			}
		}
	})
	return out, nil
}

// MatMul computes a @ b for a [N, K] and b [K, M].
func MatMul(a, b *Tensor) (*Tensor, error) {
	if err := expectDims("matmul lhs", a, 2); err != nil {
		return nil, err
	}
	if err := expectDims("matmul rhs", b, 2); err != nil {
		return nil, err
	}
	n, k := a.Shape[0], a.Shape[1]
	k2, m := b.Shape[0], b.Shape[1]
	if k != k2 {
		return nil, errors.Errorf("matmul: inner dimensions differ %v @ %v", a.Shape, b.Shape)
	}
	out, err := New([]int{n, m}, nil)
	if err != nil {
		return nil, err
	}
	parallel.Range(n, 0, func(start, end int) {
		for i := start; i < end; i++ {
			dst := out.Data[i*m : (i+1)*m]
			for kk := 0; kk < k; kk++ {
				av := a.Data[i*k+kk]
				if av == 0 {
					continue
				}
				row := b.Data[kk*m : (kk+1)*m]
				for j, v := range row {
					dst[j] += av * v
				}
			}
		}
	})
	return out, nil
}

// BatchNorm2D normalizes [N, C, H, W] input per channel with the given
// statistics: y = (x - mean) / sqrt(variance + eps) * gamma + beta.
// gamma and beta may be nil (no affine transform).
func BatchNorm2D(x *Tensor, mean, variance, gamma, beta []float32, eps float32) (*Tensor, error) {
	if err := expectDims("batchnorm input", x, 4); err != nil {
		return nil, err
	}
	n, c, h, w := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	if len(mean) != c || len(variance) != c {
		return nil, errors.Errorf("batchnorm: statistics have %d/%d channels, input has %d", len(mean), len(variance), c)
	}
	if (gamma != nil && len(gamma) != c) || (beta != nil && len(beta) != c) {
		return nil, errors.Errorf("batchnorm: affine parameters do not match %d channels", c)
	}

	out, err := New(x.Shape, nil)
	if err != nil {
		return nil, err
	}
	hw := h * w
	parallel.Range(n*c, 0, func(start, end int) {
		for plane := start; plane < end; plane++ {
			ch := plane % c
			scale := float32(1 / math.Sqrt(float64(variance[ch]+eps)))
			shift := -mean[ch] * scale
			if gamma != nil {
				scale *= gamma[ch]
				shift *= gamma[ch]
			}
			if beta != nil {
				shift += beta[ch]
			}
			src := x.Data[plane*hw : (plane+1)*hw]
			dst := out.Data[plane*hw : (plane+1)*hw]
			for i, v := range src {
				dst[i] = v*scale + shift
			}
		}
	})
	return out, nil
}

// ChannelStats returns the per-channel mean and biased variance of
// [N, C, H, W] input, the statistics BatchNorm uses in training mode.
func ChannelStats(x *Tensor) (mean, variance []float32, err error) {
	if err := expectDims("channel stats input", x, 4); err != nil {
		return nil, nil, err
	}
	n, c, h, w := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	hw := h * w
	count := float64(n * hw)
	mean = make([]float32, c)
	variance = make([]float32, c)

	parallel.Range(c, 0, func(start, end int) {
		for ch := start; ch < end; ch++ {
			var sum, sumSq float64
			for i := 0; i < n; i++ {
				for _, v := range x.Data[(i*c+ch)*hw : (i*c+ch+1)*hw] {
					sum += float64(v)
					sumSq += float64(v) * float64(v)
				}
			}
			m := sum / count
			v := sumSq/count - m*m
			if v < 0 {
				v = 0
			}
			mean[ch] = float32(m)
			variance[ch] = float32(v)
		}
	})
	return mean, variance, nil
}

// Softmax applies a numerically stable softmax to each row of a [N, K]
// tensor.
func Softmax(x *Tensor) (*Tensor, error) {
	if err := expectDims("softmax input", x, 2); err != nil {
		return nil, err
	}
	out := x.Clone()
	k := x.Shape[1]
	for i := 0; i < x.Shape[0]; i++ {
		row := out.Data[i*k : (i+1)*k]
		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float64
		for j, v := range row {
			e := math.Exp(float64(v - maxVal))
			row[j] = float32(e)
			sum += e
		}
		for j := range row {
			row[j] = float32(float64(row[j]) / sum)
		}
	}
	return out, nil
}

// ArgMax returns the index of the largest value in each row of a [N, K]
// tensor. Ties resolve to the lowest index.
func ArgMax(x *Tensor) ([]int, error) {
	if err := expectDims("argmax input", x, 2); err != nil {
		return nil, err
	}
	k := x.Shape[1]
	idx := make([]int, x.Shape[0])
	for i := range idx {
		row := x.Data[i*k : (i+1)*k]
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		idx[i] = best
	}
	return idx, nil
}

// AllClose reports whether a and b have the same shape and every pair of
// elements satisfies |a-b| <= atol + rtol*|b|.
func AllClose(a, b *Tensor, rtol, atol float64) bool {
	if !SameShape(a.Shape, b.Shape) {
		return false
	}
	for i, v := range a.Data {
		diff := math.Abs(float64(v) - float64(b.Data[i]))
		if diff > atol+rtol*math.Abs(float64(b.Data[i])) {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float32 {
	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= len(a); i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < len(a); i++ {
		s0 += a[i] * b[i]
	}
	return s0 + s1 + s2 + s3
}
