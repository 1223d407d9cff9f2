package models

import "github.com/tsawler/go-chessnet/layers"

// AlexNet is torchvision's single-tower AlexNet.
type AlexNet struct{}

func (AlexNet) Name() string         { return "alexnet" }
func (AlexNet) HeadLocation() string { return "classifier.6" }
func (AlexNet) FeatureWidth() int    { return 4096 }

func (AlexNet) Spec(inputShape []int) (*layers.ModelSpec, error) {
	return layers.NewModelBuilder(inputShape).
		AddConv2D(64, 11, 4, 2, true, "", "features.0").
		AddReLU("features.1").
		AddMaxPool2D(3, 2, 0, "features.2").
		AddConv2D(192, 5, 1, 2, true, "", "features.3").
		AddReLU("features.4").
		AddMaxPool2D(3, 2, 0, "features.5").
		AddConv2D(384, 3, 1, 1, true, "", "features.6").
		AddReLU("features.7").
		AddConv2D(256, 3, 1, 1, true, "", "features.8").
		AddReLU("features.9").
		AddConv2D(256, 3, 1, 1, true, "", "features.10").
		AddReLU("features.11").
		AddMaxPool2D(3, 2, 0, "features.12").
		AddAdaptiveAvgPool2D(6, 6, "avgpool").
		AddFlatten("flatten").
		AddDropout(0.5, "classifier.0").
		AddDense(4096, true, "classifier.1").
		AddReLU("classifier.2").
		AddDropout(0.5, "classifier.3").
		AddDense(4096, true, "classifier.4").
		AddReLU("classifier.5").
		AddDense(ImageNetClasses, true, "classifier.6").
		Compile()
}
