package models

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/tensor"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"vgg16", "resnet18", "alexnet", "VGG16"} {
		b, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, b)
	}
	_, err := ByName("lenet")
	assert.Error(t, err)
	assert.Equal(t, []string{"alexnet", "resnet18", "vgg16"}, Names())
}

func TestStockArchitectures(t *testing.T) {
	tests := []struct {
		backbone   Backbone
		head       string
		width      int
		parameters int64
	}{
		{VGG16{}, "classifier.6", 4096, 138357544},
		{ResNet18{}, "fc", 512, 11689512},
		{AlexNet{}, "classifier.6", 4096, 61100840},
	}
	for _, tt := range tests {
		t.Run(tt.backbone.Name(), func(t *testing.T) {
			spec, err := tt.backbone.Spec([]int{1, 3, 224, 224})
			require.NoError(t, err)
			assert.Equal(t, []int{1, ImageNetClasses}, spec.OutputShape)
			assert.Equal(t, tt.parameters, spec.TotalParameters)

			head, _, ok := spec.Layer(tt.head)
			require.True(t, ok)
			assert.Equal(t, []int{ImageNetClasses, tt.width}, head.Params[0].Shape)
			assert.Equal(t, tt.head, tt.backbone.HeadLocation())
			assert.Equal(t, tt.width, tt.backbone.FeatureWidth())
		})
	}
}

func TestAdaptSpecHeadWidthMatchesClassCount(t *testing.T) {
	for _, name := range Names() {
		b, err := ByName(name)
		require.NoError(t, err)
		for _, k := range []int{1, 2, 12} {
			spec, err := AdaptSpec(b, k, []int{32, 3, 224, 224})
			require.NoError(t, err)
			assert.Equal(t, []int{32, k}, spec.OutputShape, "%s with %d classes", name, k)

			head, idx, ok := spec.Layer(b.HeadLocation())
			require.True(t, ok)
			assert.Equal(t, len(spec.Layers)-1, idx)
			assert.Equal(t, int64(b.FeatureWidth()*k+k), head.ParameterCount)
		}
	}
}

func TestAdaptSpecRejectsZeroClasses(t *testing.T) {
	_, err := AdaptSpec(VGG16{}, 0, []int{1, 3, 224, 224})
	assert.Error(t, err)
}

func TestAdaptFreezesEverythingButTheHead(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, err := Adapt(ResNet18{}, 2, AdaptOptions{InputShape: []int{2, 3, 32, 32}, Rng: rng})
	require.NoError(t, err)

	assert.Equal(t, int64(512*2+2), net.NumTrainable())
	trainable := net.TrainableParameters()
	require.Len(t, trainable, 2)
	assert.Equal(t, "fc.weight", trainable[0].Name)
	assert.Equal(t, "fc.bias", trainable[1].Name)

	x, err := tensor.RandN([]int{2, 3, 32, 32}, rng)
	require.NoError(t, err)
	net.SetMode(layers.ModeTrain)
	net.ZeroGrad()
	out, err := net.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, out.Shape)

	require.NoError(t, net.Backward(tensor.MustNew([]int{2, 2}, []float32{0.5, -0.5, -0.5, 0.5})))
	for _, p := range net.Parameters() {
		if p.Trainable {
			require.NotNil(t, p.Grad, p.Name)
			continue
		}
		for _, g := range p.Grad {
			require.Zero(t, g, p.Name)
		}
	}
}

func TestAdaptLoadsPretrainedWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	source, err := layers.NewNetwork(mustSpec(t, ResNet18{}), rng)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "resnet18.safetensors")
	require.NoError(t, checkpoints.SaveSafetensors(path, source.StateDict(), nil))

	net, err := Adapt(ResNet18{}, 3, AdaptOptions{
		InputShape:  []int{1, 3, 32, 32},
		Pretrained:  true,
		WeightsPath: path,
		Rng:         rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)

	want, _ := source.ParameterByName("layer3.1.conv2.weight")
	got, ok := net.ParameterByName("layer3.1.conv2.weight")
	require.True(t, ok)
	assert.Equal(t, want.Data, got.Data)
	assert.False(t, got.Trainable)

	wantMean, _ := source.BufferByName("bn1.running_mean")
	gotMean, _ := net.BufferByName("bn1.running_mean")
	assert.Equal(t, wantMean.Data, gotMean.Data)

	head, _ := net.ParameterByName("fc.weight")
	assert.Equal(t, []int{3, 512}, head.Shape)
}

func TestAdaptPretrainedErrors(t *testing.T) {
	opts := AdaptOptions{
		InputShape:  []int{1, 3, 32, 32},
		Pretrained:  true,
		WeightsPath: filepath.Join(t.TempDir(), "missing.safetensors"),
		Rng:         rand.New(rand.NewSource(1)),
	}
	_, err := Adapt(ResNet18{}, 2, opts)
	assert.Error(t, err)

	opts.WeightsPath = ""
	_, err = Adapt(ResNet18{}, 2, opts)
	assert.Error(t, err)

	// Weights for a different architecture do not load.
	small, err := layers.NewModelBuilder([]int{1, 3, 32, 32}).
		AddConv2D(4, 7, 2, 3, false, "", "conv1").
		Compile()
	require.NoError(t, err)
	other, err := layers.NewNetwork(small, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "other.safetensors")
	require.NoError(t, checkpoints.SaveSafetensors(path, other.StateDict(), nil))
	opts.WeightsPath = path
	_, err = Adapt(ResNet18{}, 2, opts)
	assert.Error(t, err)
}

func mustSpec(t *testing.T, b Backbone) *layers.ModelSpec {
	t.Helper()
	spec, err := b.Spec([]int{1, 3, 32, 32})
	require.NoError(t, err)
	return spec
}
