package models

import (
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/layers"
)

// AdaptOptions controls how a backbone is instantiated for fine-tuning.
type AdaptOptions struct {
	// InputShape is [batch, 3, size, size]; the batch dimension only sizes
	// the compiled shapes, the network accepts any batch.
	InputShape []int
	// Pretrained loads ImageNet weights from WeightsPath (safetensors with
	// torchvision parameter names) before freezing.
	Pretrained  bool
	WeightsPath string
	Rng         *rand.Rand
}

// headSpec is the replacement classification layer.
func headSpec(b Backbone, numClasses int) layers.LayerSpec {
	return layers.NewDenseSpec(numClasses, true, b.HeadLocation())
}

// AdaptSpec compiles b with its head replaced by a numClasses-way dense
// layer. No weights are allocated.
func AdaptSpec(b Backbone, numClasses int, inputShape []int) (*layers.ModelSpec, error) {
	if numClasses < 1 {
		return nil, errors.Errorf("number of classes must be at least 1, got %d", numClasses)
	}
	spec, err := b.Spec(inputShape)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile %s", b.Name())
	}
	if err := checkHead(b, spec); err != nil {
		return nil, err
	}
	adapted, err := spec.WithLayer(b.HeadLocation(), headSpec(b, numClasses))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to replace %s head", b.Name())
	}
	return adapted, nil
}

func checkHead(b Backbone, spec *layers.ModelSpec) error {
	head, _, ok := spec.Layer(b.HeadLocation())
	if !ok {
		return errors.Errorf("%s has no layer %q", b.Name(), b.HeadLocation())
	}
	if head.Type != layers.Dense || len(head.Params) == 0 {
		return errors.Errorf("%s head %q is a %s, not a dense layer", b.Name(), b.HeadLocation(), head.Type)
	}
	if in := head.Params[0].Shape[1]; in != b.FeatureWidth() {
		return errors.Errorf("%s head %q takes %d features, expected %d", b.Name(), b.HeadLocation(), in, b.FeatureWidth())
	}
	return nil
}

// Adapt builds b for fine-tuning: the network is initialized as torchvision
// does (or loaded from pre-trained weights), every parameter is frozen, and
// the head is replaced by a freshly initialized trainable numClasses-way
// dense layer. Only the head receives gradients afterwards.
func Adapt(b Backbone, numClasses int, opts AdaptOptions) (*layers.Network, error) {
	if numClasses < 1 {
		return nil, errors.Errorf("number of classes must be at least 1, got %d", numClasses)
	}
	if opts.Rng == nil {
		return nil, errors.New("adapt requires a random source")
	}

	spec, err := b.Spec(opts.InputShape)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile %s", b.Name())
	}
	if err := checkHead(b, spec); err != nil {
		return nil, err
	}
	net, err := layers.NewNetwork(spec, opts.Rng)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s", b.Name())
	}

	if opts.Pretrained {
		if err := loadPretrained(net, opts.WeightsPath); err != nil {
			return nil, errors.Wrapf(err, "failed to load pre-trained %s weights", b.Name())
		}
	}

	net.Freeze()
	if err := net.ReplaceLayer(b.HeadLocation(), headSpec(b, numClasses)); err != nil {
		return nil, errors.Wrapf(err, "failed to replace %s head", b.Name())
	}
	return net, nil
}

func loadPretrained(net *layers.Network, path string) error {
	if path == "" {
		return errors.New("pre-trained weights requested but no weights path configured")
	}
	state, err := checkpoints.LoadSafetensors(path)
	if err != nil {
		return err
	}
	// BatchNorm step counters are not model state here.
	for name := range state {
		if strings.HasSuffix(name, ".num_batches_tracked") {
			delete(state, name)
		}
	}
	return net.LoadState(state, true)
}
