// Package models describes the ImageNet backbones that can be fine-tuned for
// chess piece classification and adapts them to a new label set.
//
// Every backbone reproduces the torchvision architecture and parameter names,
// so pre-trained torchvision weights exported to safetensors load directly.
package models

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/layers"
)

// ImageNetClasses is the width of every stock classification head.
const ImageNetClasses = 1000

// Backbone is a pre-built classification architecture with a known final
// layer that fine-tuning replaces.
type Backbone interface {
	// Name is the lookup key, e.g. "vgg16".
	Name() string
	// Spec compiles the full ImageNet architecture for inputShape
	// [batch, 3, size, size].
	Spec(inputShape []int) (*layers.ModelSpec, error)
	// HeadLocation names the final classification layer.
	HeadLocation() string
	// FeatureWidth is the number of features feeding the head.
	FeatureWidth() int
}

var registry = map[string]Backbone{
	"vgg16":    VGG16{},
	"resnet18": ResNet18{},
	"alexnet":  AlexNet{},
}

// ByName returns the backbone registered under name.
func ByName(name string) (Backbone, error) {
	b, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown backbone %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return b, nil
}

// Names lists the registered backbones in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
