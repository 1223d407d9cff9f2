package tensor

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/parallel"
)

// MaxPool2D applies max pooling over [N, C, H, W] input. Padding is filled
// with -Inf and output sizes use floor mode, as in torch.nn.MaxPool2d.
func MaxPool2D(input *Tensor, kernel, stride, padding int) (*Tensor, error) {
	if err := expectDims("maxpool2d input", input, 4); err != nil {
		return nil, err
	}
	if kernel <= 0 || stride <= 0 || padding < 0 {
		return nil, errors.Errorf("maxpool2d: invalid kernel=%d stride=%d padding=%d", kernel, stride, padding)
	}
	if padding*2 > kernel {
		return nil, errors.Errorf("maxpool2d: padding %d should be at most half of kernel %d", padding, kernel)
	}

	n, c, h, w := input.Shape[0], input.Shape[1], input.Shape[2], input.Shape[3]
	hOut := (h+2*padding-kernel)/stride + 1
	wOut := (w+2*padding-kernel)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		return nil, errors.Errorf("maxpool2d: input %v too small for kernel %d", input.Shape, kernel)
	}

	out, err := New([]int{n, c, hOut, wOut}, nil)
	if err != nil {
		return nil, err
	}

	parallel.Range(n*c, 0, func(start, end int) {
		for plane := start; plane < end; plane++ {
			src := input.Data[plane*h*w : (plane+1)*h*w]
			dst := out.Data[plane*hOut*wOut : (plane+1)*hOut*wOut]
			for oy := 0; oy < hOut; oy++ {
				y0 := oy*stride - padding
				for ox := 0; ox < wOut; ox++ {
					x0 := ox*stride - padding
					maxVal := float32(math.Inf(-1))
					for ky := 0; ky < kernel; ky++ {
						y := y0 + ky
						if y < 0 || y >= h {
							continue
						}
						row := src[y*w : (y+1)*w]
						for kx := 0; kx < kernel; kx++ {
							x := x0 + kx
							if x < 0 || x >= w {
								continue
							}
							if v := row[x]; v > maxVal {
								maxVal = v
							}
						}
					}
					dst[oy*wOut+ox] = maxVal
				}
			}
		}
	})
	return out, nil
}

// AvgPool2D applies unpadded average pooling.
func AvgPool2D(input *Tensor, kernelH, kernelW, strideH, strideW int) (*Tensor, error) {
	if err := expectDims("avgpool2d input", input, 4); err != nil {
		return nil, err
	}
	if kernelH <= 0 || kernelW <= 0 || strideH <= 0 || strideW <= 0 {
		return nil, errors.Errorf("avgpool2d: invalid kernel %dx%d stride %dx%d", kernelH, kernelW, strideH, strideW)
	}
	n, c, h, w := input.Shape[0], input.Shape[1], input.Shape[2], input.Shape[3]
	hOut := (h-kernelH)/strideH + 1
	wOut := (w-kernelW)/strideW + 1
	if hOut <= 0 || wOut <= 0 {
		return nil, errors.Errorf("avgpool2d: input %v too small for kernel %dx%d", input.Shape, kernelH, kernelW)
	}

	out, err := New([]int{n, c, hOut, wOut}, nil)
	if err != nil {
		return nil, err
	}
	area := float32(kernelH * kernelW)

	parallel.Range(n*c, 0, func(start, end int) {
		for plane := start; plane < end; plane++ {
			src := input.Data[plane*h*w : (plane+1)*h*w]
			dst := out.Data[plane*hOut*wOut : (plane+1)*hOut*wOut]
			for oy := 0; oy < hOut; oy++ {
				for ox := 0; ox < wOut; ox++ {
					var sum float32
					for ky := 0; ky < kernelH; ky++ {
						row := src[(oy*strideH+ky)*w:]
						for kx := 0; kx < kernelW; kx++ {
							sum += row[ox*strideW+kx]
						}
					}
					dst[oy*wOut+ox] = sum / area
				}
			}
		}
	})
	return out, nil
}

// AdaptiveAvgPool2D averages [N, C, H, W] input down (or up) to
// [N, C, outH, outW]. Bin i along an axis of length L covers
// [floor(i*L/out), ceil((i+1)*L/out)), matching torch.nn.AdaptiveAvgPool2d.
func AdaptiveAvgPool2D(input *Tensor, outH, outW int) (*Tensor, error) {
	if err := expectDims("adaptive_avgpool2d input", input, 4); err != nil {
		return nil, err
	}
	if outH <= 0 || outW <= 0 {
		return nil, errors.Errorf("adaptive_avgpool2d: invalid output size %dx%d", outH, outW)
	}
	n, c, h, w := input.Shape[0], input.Shape[1], input.Shape[2], input.Shape[3]

	out, err := New([]int{n, c, outH, outW}, nil)
	if err != nil {
		return nil, err
	}

	parallel.Range(n*c, 0, func(start, end int) {
		for plane := start; plane < end; plane++ {
			src := input.Data[plane*h*w : (plane+1)*h*w]
			dst := out.Data[plane*outH*outW : (plane+1)*outH*outW]
			for oy := 0; oy < outH; oy++ {
				y0, y1 := adaptiveBounds(oy, h, outH)
				for ox := 0; ox < outW; ox++ {
					x0, x1 := adaptiveBounds(ox, w, outW)
					var sum float32
					for y := y0; y < y1; y++ {
						for x := x0; x < x1; x++ {
							sum += src[y*w+x]
						}
					}
					dst[oy*outW+ox] = sum / float32((y1-y0)*(x1-x0))
				}
			}
		}
	})
	return out, nil
}

func adaptiveBounds(i, in, out int) (int, int) {
	start := (i * in) / out
	end := ((i+1)*in + out - 1) / out
	return start, end
}
