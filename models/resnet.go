package models

import (
	"fmt"

	"github.com/tsawler/go-chessnet/layers"
)

// ResNet18 is torchvision's resnet18: a 7x7 stem followed by four stages of
// two basic blocks each.
type ResNet18 struct{}

func (ResNet18) Name() string         { return "resnet18" }
func (ResNet18) HeadLocation() string { return "fc" }
func (ResNet18) FeatureWidth() int    { return 512 }

func (ResNet18) Spec(inputShape []int) (*layers.ModelSpec, error) {
	b := layers.NewModelBuilder(inputShape).
		AddConv2D(64, 7, 2, 3, false, layers.InitKaimingFanOut, "conv1").
		AddBatchNorm(1e-5, 0.1, "bn1").
		AddReLU("relu").
		AddMaxPool2D(3, 2, 1, "maxpool")

	for stage, width := range []int{64, 128, 256, 512} {
		stride := 2
		if stage == 0 {
			stride = 1
		}
		b.AddBasicBlock(width, stride, fmt.Sprintf("layer%d.0", stage+1))
		b.AddBasicBlock(width, 1, fmt.Sprintf("layer%d.1", stage+1))
	}

	return b.
		AddAdaptiveAvgPool2D(1, 1, "avgpool").
		AddFlatten("flatten").
		AddDense(ImageNetClasses, true, "fc").
		Compile()
}
