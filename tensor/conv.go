package tensor

import (
	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/memory"
	"github.com/tsawler/go-chessnet/parallel"
)

// Conv2D performs a 2D convolution using the im2col algorithm.
//
// Input shape:  [N, C_in, H, W]
// Weight shape: [C_out, C_in, K_h, K_w]
// Bias shape:   [C_out] (optional, may be nil)
// Output shape: [N, C_out, H_out, W_out]
//
// Padding is symmetric and zero-filled. Groups and dilation are fixed at 1.
func Conv2D(input, weight, bias *Tensor, stride, padding int) (*Tensor, error) {
	if err := expectDims("conv2d input", input, 4); err != nil {
		return nil, err
	}
	if err := expectDims("conv2d weight", weight, 4); err != nil {
		return nil, err
	}
	if stride <= 0 {
		return nil, errors.Errorf("conv2d: stride must be positive, got %d", stride)
	}
	if padding < 0 {
		return nil, errors.Errorf("conv2d: padding must be non-negative, got %d", padding)
	}

	n, cIn, h, w := input.Shape[0], input.Shape[1], input.Shape[2], input.Shape[3]
	cOut, cInK, kh, kw := weight.Shape[0], weight.Shape[1], weight.Shape[2], weight.Shape[3]
	if cIn != cInK {
		return nil, errors.Errorf("conv2d: input channels %d != weight channels %d", cIn, cInK)
	}
	if bias != nil && (bias.NumElems != cOut) {
		return nil, errors.Errorf("conv2d: bias has %d elements, want %d", bias.NumElems, cOut)
	}

	hOut := (h+2*padding-kh)/stride + 1
	wOut := (w+2*padding-kw)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		return nil, errors.Errorf("conv2d: input %v too small for kernel %dx%d (stride %d, padding %d)", input.Shape, kh, kw, stride, padding)
	}

	out, err := New([]int{n, cOut, hOut, wOut}, nil)
	if err != nil {
		return nil, err
	}

	g := convGeometry{
		cIn: cIn, h: h, w: w,
		cOut: cOut, kh: kh, kw: kw,
		hOut: hOut, wOut: wOut,
		stride: stride, padding: padding,
	}
	var biasData []float32
	if bias != nil {
		biasData = bias.Data
	}

	inPlane := cIn * h * w
	outPlane := cOut * hOut * wOut
	workers := parallel.Workers()
	scratch := memory.Default()
	colSize := g.colRows() * g.colCols()

	if n >= workers {
		// Enough samples to keep every worker busy: one sample per task.
		return out, parallel.ForEach(n, workers, func(i int) error {
			col := scratch.Get(colSize)
			defer scratch.Put(col)
			g.im2col(col, input.Data[i*inPlane:(i+1)*inPlane])
			g.matmul(out.Data[i*outPlane:(i+1)*outPlane], weight.Data, biasData, col, 0, cOut)
			return nil
		})
	}

	col := scratch.Get(colSize)
	defer scratch.Put(col)
	for i := 0; i < n; i++ {
		g.im2col(col, input.Data[i*inPlane:(i+1)*inPlane])
		dst := out.Data[i*outPlane : (i+1)*outPlane]
		parallel.Range(cOut, workers, func(start, end int) {
			g.matmul(dst, weight.Data, biasData, col, start, end)
		})
	}
	return out, nil
}

type convGeometry struct {
	cIn, h, w       int
	cOut, kh, kw    int
	hOut, wOut      int
	stride, padding int
}

// colRows is C_in*K_h*K_w, the reduction length.
func (g convGeometry) colRows() int { return g.cIn * g.kh * g.kw }

// colCols is H_out*W_out, one column per output pixel.
func (g convGeometry) colCols() int { return g.hOut * g.wOut }

// im2col writes one sample's patches as a [C_in*K_h*K_w, H_out*W_out]
// matrix so the inner matmul loop walks contiguous memory.
func (g convGeometry) im2col(col, img []float32) {
	cols := g.colCols()
	for c := 0; c < g.cIn; c++ {
		plane := img[c*g.h*g.w : (c+1)*g.h*g.w]
		for ky := 0; ky < g.kh; ky++ {
			for kx := 0; kx < g.kw; kx++ {
				row := col[((c*g.kh+ky)*g.kw+kx)*cols:][:cols]
				idx := 0
				for oy := 0; oy < g.hOut; oy++ {
					iy := oy*g.stride - g.padding + ky
					if iy < 0 || iy >= g.h {
						for ox := 0; ox < g.wOut; ox++ {
							row[idx] = 0
							idx++
						}
						continue
					}
					src := plane[iy*g.w : (iy+1)*g.w]
					for ox := 0; ox < g.wOut; ox++ {
						ix := ox*g.stride - g.padding + kx
						if ix < 0 || ix >= g.w {
							row[idx] = 0
						} else {
							row[idx] = src[ix]
						}
						idx++
					}
				}
			}
		}
	}
}

// matmul computes output channels [coStart, coEnd) of one sample.
func (g convGeometry) matmul(dst, weight, bias, col []float32, coStart, coEnd int) {
	rows := g.colRows()
	cols := g.colCols()
	for co := coStart; co < coEnd; co++ {
		out := dst[co*cols : (co+1)*cols]
		b := float32(0)
		if bias != nil {
			b = bias[co]
		}
		for p := range out {
			out[p] = b
		}
		wRow := weight[co*rows : (co+1)*rows]
		for k, a := range wRow {
			if a == 0 {
				continue
			}
			src := col[k*cols : (k+1)*cols]
			for p, v := range src {
				out[p] += a * v
			}
		}
	}
}
