// Package preprocessing turns image files into normalized CHW float32 data
// and applies the random flips used for training augmentation.
package preprocessing

import (
	"context"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/go-chessnet/tensor"
)

// Normalization holds per-channel (R, G, B) statistics.
type Normalization struct {
	Mean [3]float32
	Std  [3]float32
}

// ImageNetNormalization is the mean/std the pretrained backbones expect.
var ImageNetNormalization = Normalization{
	Mean: [3]float32{0.485, 0.456, 0.406},
	Std:  [3]float32{0.229, 0.224, 0.225},
}

// NewNormalization validates slice statistics from configuration.
func NewNormalization(mean, std []float32) (Normalization, error) {
	var n Normalization
	if len(mean) != 3 || len(std) != 3 {
		return n, errors.Errorf("normalization needs 3 means and 3 stds, got %d and %d", len(mean), len(std))
	}
	for c := 0; c < 3; c++ {
		if std[c] <= 0 {
			return n, errors.Errorf("std[%d] = %g must be positive", c, std[c])
		}
		n.Mean[c] = mean[c]
		n.Std[c] = std[c]
	}
	return n, nil
}

// ImageProcessor resizes decoded images to a square and normalizes them.
// The resize buffer is reused; a processor is safe for concurrent use.
type ImageProcessor struct {
	mu              sync.Mutex
	tempImageBuffer *image.RGBA
	targetSize      int
	norm            Normalization
}

// NewImageProcessor creates a new image processor with the specified target size
func NewImageProcessor(targetSize int, norm Normalization) *ImageProcessor {
	return &ImageProcessor{
		targetSize: targetSize,
		norm:       norm,
	}
}

// TargetSize returns the output side length.
func (p *ImageProcessor) TargetSize() int {
	return p.targetSize
}

// ProcessedImage represents a preprocessed image ready for neural network input
type ProcessedImage struct {
	Data     []float32
	Width    int
	Height   int
	Channels int
}

// Clone returns a deep copy so augmentation never touches cached data.
func (img *ProcessedImage) Clone() *ProcessedImage {
	c := *img
	c.Data = append([]float32(nil), img.Data...)
	return &c
}

// DecodeAndPreprocess decodes any registered image format, resizes it with
// bilinear interpolation and returns normalized CHW data.
func (p *ImageProcessor) DecodeAndPreprocess(reader io.Reader) (*ProcessedImage, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return p.Preprocess(img), nil
}

// ProcessFile opens, decodes and preprocesses one file.
func (p *ImageProcessor) ProcessFile(path string) (*ProcessedImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image %s", path)
	}
	defer file.Close()

	img, err := p.DecodeAndPreprocess(file)
	if err != nil {
		return nil, errors.Wrapf(err, "image %s", path)
	}
	return img, nil
}

// dropAlpha makes every pixel of img opaque while keeping its straight
// (non-premultiplied) color, so translucent pixels are not darkened when
// scaled into an RGBA buffer.
func dropAlpha(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := out.Pix[out.PixOffset(b.Min.X, y):out.PixOffset(b.Max.X, y)]
			copy(row, src.Pix[src.PixOffset(b.Min.X, y):])
			for i := 3; i < len(row); i += 4 {
				row[i] = 0xff
			}
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Preprocess resizes img to the target size and converts it to normalized
// CHW float32 data.
func (p *ImageProcessor) Preprocess(img image.Image) *ProcessedImage {
	size := p.targetSize

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tempImageBuffer == nil || p.tempImageBuffer.Bounds().Dx() != size {
		p.tempImageBuffer = image.NewRGBA(image.Rect(0, 0, size, size))
	}
	dst := p.tempImageBuffer
	draw.BiLinear.Scale(dst, dst.Bounds(), dropAlpha(img), img.Bounds(), draw.Src, nil)

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < size; x++ {
			px := row[4*x:]
			idx := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255
				data[c*plane+idx] = (v - p.norm.Mean[c]) / p.norm.Std[c]
			}
		}
	}

	return &ProcessedImage{
		Data:     data,
		Width:    size,
		Height:   size,
		Channels: 3,
	}
}

// PreprocessBatch preprocesses multiple images concurrently. The first
// failure cancels the remaining work and is returned.
func PreprocessBatch(ctx context.Context, p *ImageProcessor, imagePaths []string, maxWorkers int) ([]*ProcessedImage, error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	results := make([]*ProcessedImage, len(imagePaths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, path := range imagePaths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := p.ProcessFile(path)
			if err != nil {
				return err
			}
			results[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stack packs equally sized images into an [n, C, H, W] tensor.
func Stack(images []*ProcessedImage) (*tensor.Tensor, error) {
	if len(images) == 0 {
		return nil, errors.New("no images to stack")
	}
	first := images[0]
	per := first.Channels * first.Height * first.Width
	data := make([]float32, 0, len(images)*per)
	for i, img := range images {
		if img.Channels != first.Channels || img.Height != first.Height || img.Width != first.Width {
			return nil, errors.Errorf("image %d is %dx%dx%d, expected %dx%dx%d",
				i, img.Channels, img.Height, img.Width, first.Channels, first.Height, first.Width)
		}
		data = append(data, img.Data...)
	}
	return tensor.New([]int{len(images), first.Channels, first.Height, first.Width}, data)
}
