package preprocessing

import (
	"fmt"
	"math/rand"
)

// Transform is a random augmentation applied in place to a CHW image.
type Transform interface {
	Apply(img *ProcessedImage, rng *rand.Rand)
	String() string
}

// RandomHorizontalFlip mirrors the image left to right with probability P.
type RandomHorizontalFlip struct {
	P float64
}

func (f RandomHorizontalFlip) Apply(img *ProcessedImage, rng *rand.Rand) {
	if rng.Float64() < f.P {
		FlipHorizontal(img)
	}
}

func (f RandomHorizontalFlip) String() string {
	return fmt.Sprintf("RandomHorizontalFlip(p=%g)", f.P)
}

// RandomVerticalFlip mirrors the image top to bottom with probability P.
type RandomVerticalFlip struct {
	P float64
}

func (f RandomVerticalFlip) Apply(img *ProcessedImage, rng *rand.Rand) {
	if rng.Float64() < f.P {
		FlipVertical(img)
	}
}

func (f RandomVerticalFlip) String() string {
	return fmt.Sprintf("RandomVerticalFlip(p=%g)", f.P)
}

// FlipHorizontal reverses every row of every channel.
func FlipHorizontal(img *ProcessedImage) {
	w := img.Width
	for row := 0; row < img.Channels*img.Height; row++ {
		r := img.Data[row*w : (row+1)*w]
		for i, j := 0, w-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
	}
}

// FlipVertical reverses the row order of every channel.
func FlipVertical(img *ProcessedImage) {
	w, h := img.Width, img.Height
	tmp := make([]float32, w)
	for c := 0; c < img.Channels; c++ {
		plane := img.Data[c*h*w : (c+1)*h*w]
		for i, j := 0, h-1; i < j; i, j = i+1, j-1 {
			top, bottom := plane[i*w:(i+1)*w], plane[j*w:(j+1)*w]
			copy(tmp, top)
			copy(top, bottom)
			copy(bottom, tmp)
		}
	}
}
