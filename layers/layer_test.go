package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerTypeString(t *testing.T) {
	tests := []struct {
		layerType LayerType
		expected  string
	}{
		{Dense, "Dense"},
		{Conv2D, "Conv2D"},
		{ReLU, "ReLU"},
		{MaxPool2D, "MaxPool2D"},
		{AdaptiveAvgPool2D, "AdaptiveAvgPool2D"},
		{Dropout, "Dropout"},
		{BatchNorm, "BatchNorm"},
		{Flatten, "Flatten"},
		{BasicBlock, "BasicBlock"},
		{LayerType(99), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.layerType.String())
	}
}

func smallCNN() *ModelBuilder {
	return NewModelBuilder([]int{4, 3, 16, 16}).
		AddConv2D(8, 3, 1, 1, true, "", "features.0").
		AddReLU("features.1").
		AddMaxPool2D(2, 2, 0, "features.2").
		AddAdaptiveAvgPool2D(2, 2, "avgpool").
		AddFlatten("flatten").
		AddDropout(0.5, "classifier.0").
		AddDense(10, true, "classifier.1")
}

func TestCompileComputesShapesAndParameters(t *testing.T) {
	model, err := smallCNN().Compile()
	require.NoError(t, err)
	require.True(t, model.Compiled)

	assert.Equal(t, []int{4, 3, 16, 16}, model.InputShape)
	assert.Equal(t, []int{4, 10}, model.OutputShape)
	assert.Equal(t, []int{4, 8, 16, 16}, model.Layers[0].OutputShape)
	assert.Equal(t, []int{4, 8, 8, 8}, model.Layers[2].OutputShape)
	assert.Equal(t, []int{4, 8, 2, 2}, model.Layers[3].OutputShape)
	assert.Equal(t, []int{4, 32}, model.Layers[4].OutputShape)

	conv := model.Layers[0]
	require.Len(t, conv.Params, 2)
	assert.Equal(t, "features.0.weight", conv.Params[0].Name)
	assert.Equal(t, []int{8, 3, 3, 3}, conv.Params[0].Shape)
	assert.Equal(t, "features.0.bias", conv.Params[1].Name)

	fc := model.Layers[6]
	assert.Equal(t, []int{10, 32}, fc.Params[0].Shape)
	assert.Equal(t, int64(8*3*9+8+10*32+10), model.TotalParameters)
	assert.Len(t, model.ParameterShapes, 4)
}

func TestCompileRejectsInvalidModels(t *testing.T) {
	_, err := NewModelBuilder([]int{1, 3, 8, 8}).Compile()
	assert.Error(t, err, "empty model")

	_, err = NewModelBuilder([]int{1, 3, 8, 8}).AddReLU("a").AddReLU("a").Compile()
	assert.Error(t, err, "duplicate names")

	_, err = NewModelBuilder([]int{1, 3, 8, 8}).AddDense(4, true, "fc").Compile()
	assert.Error(t, err, "dense on 4D input")

	_, err = NewModelBuilder([]int{1, 3, 2, 2}).AddConv2D(4, 5, 1, 0, true, "", "conv").Compile()
	assert.Error(t, err, "kernel larger than input")
}

func TestWithLayerReplacesOnlyTheNamedLayer(t *testing.T) {
	model, err := smallCNN().Compile()
	require.NoError(t, err)

	adapted, err := model.WithLayer("classifier.1", NewDenseSpec(2, true, "classifier.1"))
	require.NoError(t, err)

	assert.Equal(t, []int{4, 2}, adapted.OutputShape)
	assert.Equal(t, []int{4, 10}, model.OutputShape, "receiver must not change")
	require.Len(t, adapted.Layers, len(model.Layers))
	for i := 0; i < len(model.Layers)-1; i++ {
		assert.Equal(t, model.Layers[i].Params, adapted.Layers[i].Params)
	}

	_, err = model.WithLayer("missing", NewDenseSpec(2, true, "missing"))
	assert.Error(t, err)
}

func TestBasicBlockParts(t *testing.T) {
	model, err := NewModelBuilder([]int{1, 4, 8, 8}).
		AddBasicBlock(4, 1, "layer1.0").
		AddBasicBlock(8, 2, "layer2.0").
		Compile()
	require.NoError(t, err)

	same := model.Layers[0]
	assert.Equal(t, []int{1, 4, 8, 8}, same.OutputShape)
	parts, err := same.BlockParts()
	require.NoError(t, err)
	assert.Empty(t, parts.Downsample)
	assert.Equal(t, "layer1.0.conv1", parts.Conv1.Name)

	down := model.Layers[1]
	assert.Equal(t, []int{1, 8, 4, 4}, down.OutputShape)
	parts, err = down.BlockParts()
	require.NoError(t, err)
	require.Len(t, parts.Downsample, 2)
	assert.Equal(t, "layer2.0.downsample.0", parts.Downsample[0].Name)

	var names []string
	for _, p := range down.Params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"layer2.0.conv1.weight",
		"layer2.0.bn1.weight", "layer2.0.bn1.bias",
		"layer2.0.conv2.weight",
		"layer2.0.bn2.weight", "layer2.0.bn2.bias",
		"layer2.0.downsample.0.weight",
		"layer2.0.downsample.1.weight", "layer2.0.downsample.1.bias",
	}, names)
	assert.Len(t, down.Buffers, 6)
	assert.Equal(t, "layer2.0.bn1.running_mean", down.Buffers[0].Name)

	_, err = model.Layers[0].BlockParts()
	require.NoError(t, err)
	relu := LayerSpec{Type: ReLU, Name: "relu"}
	_, err = relu.BlockParts()
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	model, err := smallCNN().Compile()
	require.NoError(t, err)
	summary := model.Summary()
	assert.Contains(t, summary, "Total Parameters")
	assert.Contains(t, summary, "classifier.1 (Dense)")

	assert.Equal(t, "Model not compiled", (&ModelSpec{}).Summary())
}
