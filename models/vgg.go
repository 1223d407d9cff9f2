package models

import (
	"fmt"

	"github.com/tsawler/go-chessnet/layers"
)

// vgg16Config lists conv widths; 0 marks a 2x2 max pool.
var vgg16Config = []int{64, 64, 0, 128, 128, 0, 256, 256, 256, 0, 512, 512, 512, 0, 512, 512, 512, 0}

// VGG16 is torchvision's vgg16 (configuration D, no batch norm).
type VGG16 struct{}

func (VGG16) Name() string         { return "vgg16" }
func (VGG16) HeadLocation() string { return "classifier.6" }
func (VGG16) FeatureWidth() int    { return 4096 }

func (VGG16) Spec(inputShape []int) (*layers.ModelSpec, error) {
	b := layers.NewModelBuilder(inputShape)

	idx := 0
	for _, width := range vgg16Config {
		if width == 0 {
			b.AddMaxPool2D(2, 2, 0, fmt.Sprintf("features.%d", idx))
			idx++
			continue
		}
		b.AddConv2D(width, 3, 1, 1, true, layers.InitKaimingFanOut, fmt.Sprintf("features.%d", idx))
		b.AddReLU(fmt.Sprintf("features.%d", idx+1))
		idx += 2
	}

	return b.
		AddAdaptiveAvgPool2D(7, 7, "avgpool").
		AddFlatten("flatten").
		AddDenseInit(4096, true, 0.01, "classifier.0").
		AddReLU("classifier.1").
		AddDropout(0.5, "classifier.2").
		AddDenseInit(4096, true, 0.01, "classifier.3").
		AddReLU("classifier.4").
		AddDropout(0.5, "classifier.5").
		AddDenseInit(ImageNetClasses, true, 0.01, "classifier.6").
		Compile()
}
