package layers

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// LayerType represents the type of neural network layer
type LayerType int

const (
	Dense LayerType = iota
	Conv2D
	ReLU
	MaxPool2D
	AdaptiveAvgPool2D
	Dropout
	BatchNorm
	Flatten
	BasicBlock
)

func (lt LayerType) String() string {
	switch lt {
	case Dense:
		return "Dense"
	case Conv2D:
		return "Conv2D"
	case ReLU:
		return "ReLU"
	case MaxPool2D:
		return "MaxPool2D"
	case AdaptiveAvgPool2D:
		return "AdaptiveAvgPool2D"
	case Dropout:
		return "Dropout"
	case BatchNorm:
		return "BatchNorm"
	case Flatten:
		return "Flatten"
	case BasicBlock:
		return "BasicBlock"
	default:
		return "Unknown"
	}
}

// Weight initialization schemes, stored under the "init" layer parameter.
const (
	// InitDefault is PyTorch's default for Linear and Conv2d:
	// weight and bias ~ U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
	InitDefault = "default"
	// InitKaimingFanOut draws conv weights from N(0, 2/fan_out) with zero bias.
	InitKaimingFanOut = "kaiming_normal_fan_out"
	// InitNormal draws weights from N(0, init_std^2) with zero bias.
	InitNormal = "normal"
)

// TensorInfo names one parameter or buffer tensor of a layer.
type TensorInfo struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
}

// LayerSpec defines layer configuration.
// This is pure configuration - no execution logic
type LayerSpec struct {
	Type       LayerType              `json:"type"`
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`

	// Shape information (computed during model compilation)
	InputShape  []int `json:"input_shape,omitempty"`
	OutputShape []int `json:"output_shape,omitempty"`

	// Parameter metadata (computed during model compilation)
	Params         []TensorInfo `json:"params,omitempty"`
	ParameterCount int64        `json:"parameter_count,omitempty"`

	// Non-learnable state such as BatchNorm running statistics
	Buffers []TensorInfo `json:"buffers,omitempty"`
}

// ModelSpec defines a complete neural network model as layer configuration
type ModelSpec struct {
	Layers []LayerSpec `json:"layers"`

	// Compiled model information
	TotalParameters int64   `json:"total_parameters"`
	ParameterShapes [][]int `json:"parameter_shapes"`
	InputShape      []int   `json:"input_shape"`
	OutputShape     []int   `json:"output_shape"`
	Compiled        bool    `json:"compiled"`
}

// ModelBuilder helps construct neural network models
type ModelBuilder struct {
	layers     []LayerSpec
	inputShape []int
}

// NewModelBuilder creates a new model builder for [batch, channels, height, width]
// or [batch, features] input.
func NewModelBuilder(inputShape []int) *ModelBuilder {
	return &ModelBuilder{
		layers:     make([]LayerSpec, 0),
		inputShape: copyInts(inputShape),
	}
}

// AddLayer adds a layer to the model
func (mb *ModelBuilder) AddLayer(layer LayerSpec) *ModelBuilder {
	mb.layers = append(mb.layers, layer)
	return mb
}

// NewDenseSpec creates a fully connected layer specification. The input
// size is taken from the previous layer when the model is compiled.
func NewDenseSpec(outputSize int, useBias bool, name string) LayerSpec {
	return LayerSpec{
		Type: Dense,
		Name: name,
		Parameters: map[string]interface{}{
			"output_size": outputSize,
			"use_bias":    useBias,
			"init":        InitDefault,
		},
	}
}

// AddDense adds a dense layer to the model
func (mb *ModelBuilder) AddDense(outputSize int, useBias bool, name string) *ModelBuilder {
	return mb.AddLayer(NewDenseSpec(outputSize, useBias, name))
}

// AddDenseInit adds a dense layer with N(0, std^2) weights and zero bias.
func (mb *ModelBuilder) AddDenseInit(outputSize int, useBias bool, std float64, name string) *ModelBuilder {
	spec := NewDenseSpec(outputSize, useBias, name)
	spec.Parameters["init"] = InitNormal
	spec.Parameters["init_std"] = std
	return mb.AddLayer(spec)
}

// AddConv2D adds a Conv2D layer to the model
func (mb *ModelBuilder) AddConv2D(
	outputChannels, kernelSize, stride, padding int,
	useBias bool, scheme string, name string,
) *ModelBuilder {
	if scheme == "" {
		scheme = InitDefault
	}
	layer := LayerSpec{
		Type: Conv2D,
		Name: name,
		Parameters: map[string]interface{}{
			"output_channels": outputChannels,
			"kernel_size":     kernelSize,
			"stride":          stride,
			"padding":         padding,
			"use_bias":        useBias,
			"init":            scheme,
		},
	}
	return mb.AddLayer(layer)
}

// AddReLU adds a ReLU activation to the model
func (mb *ModelBuilder) AddReLU(name string) *ModelBuilder {
	return mb.AddLayer(LayerSpec{
		Type:       ReLU,
		Name:       name,
		Parameters: map[string]interface{}{},
	})
}

// AddMaxPool2D adds a max pooling layer
func (mb *ModelBuilder) AddMaxPool2D(kernelSize, stride, padding int, name string) *ModelBuilder {
	return mb.AddLayer(LayerSpec{
		Type: MaxPool2D,
		Name: name,
		Parameters: map[string]interface{}{
			"kernel_size": kernelSize,
			"stride":      stride,
			"padding":     padding,
		},
	})
}

// AddAdaptiveAvgPool2D adds a pooling layer with a fixed output size
func (mb *ModelBuilder) AddAdaptiveAvgPool2D(outputHeight, outputWidth int, name string) *ModelBuilder {
	return mb.AddLayer(LayerSpec{
		Type: AdaptiveAvgPool2D,
		Name: name,
		Parameters: map[string]interface{}{
			"output_height": outputHeight,
			"output_width":  outputWidth,
		},
	})
}

// AddDropout adds a Dropout layer to the model
// rate: dropout probability (0.0 = no dropout, 1.0 = drop all)
func (mb *ModelBuilder) AddDropout(rate float32, name string) *ModelBuilder {
	return mb.AddLayer(LayerSpec{
		Type: Dropout,
		Name: name,
		Parameters: map[string]interface{}{
			"rate": rate,
		},
	})
}

// AddBatchNorm adds a 2D Batch Normalization layer over the input channels.
// eps: small value added for numerical stability (default: 1e-5)
// momentum: momentum for running statistics update (default: 0.1)
func (mb *ModelBuilder) AddBatchNorm(eps float32, momentum float32, name string) *ModelBuilder {
	return mb.AddLayer(NewBatchNormSpec(eps, momentum, name))
}

// NewBatchNormSpec creates an affine BatchNorm specification.
func NewBatchNormSpec(eps, momentum float32, name string) LayerSpec {
	return LayerSpec{
		Type: BatchNorm,
		Name: name,
		Parameters: map[string]interface{}{
			"eps":      eps,
			"momentum": momentum,
		},
	}
}

// AddFlatten collapses all non-batch dimensions
func (mb *ModelBuilder) AddFlatten(name string) *ModelBuilder {
	return mb.AddLayer(LayerSpec{
		Type:       Flatten,
		Name:       name,
		Parameters: map[string]interface{}{},
	})
}

// AddBasicBlock adds a ResNet basic block: two 3x3 convolutions with batch
// norm and a residual connection. A 1x1 downsample projection is added when
// the stride or channel count changes.
func (mb *ModelBuilder) AddBasicBlock(outputChannels, stride int, name string) *ModelBuilder {
	return mb.AddLayer(LayerSpec{
		Type: BasicBlock,
		Name: name,
		Parameters: map[string]interface{}{
			"output_channels": outputChannels,
			"stride":          stride,
			"init":            InitKaimingFanOut,
		},
	})
}

// Compile compiles the model and computes shapes and parameter counts
func (mb *ModelBuilder) Compile() (*ModelSpec, error) {
	if len(mb.layers) == 0 {
		return nil, errors.New("cannot compile empty model")
	}
	if len(mb.inputShape) < 2 {
		return nil, errors.Errorf("input shape %v must include a batch dimension", mb.inputShape)
	}
	for _, d := range mb.inputShape {
		if d <= 0 {
			return nil, errors.Errorf("invalid input shape %v", mb.inputShape)
		}
	}

	model := &ModelSpec{
		Layers:     make([]LayerSpec, len(mb.layers)),
		InputShape: copyInts(mb.inputShape),
	}

	seen := make(map[string]bool, len(mb.layers))
	for i, layer := range mb.layers {
		if layer.Name == "" {
			return nil, errors.Errorf("layer %d (%s) has no name", i, layer.Type)
		}
		if seen[layer.Name] {
			return nil, errors.Errorf("duplicate layer name %q", layer.Name)
		}
		seen[layer.Name] = true
		model.Layers[i] = copyLayerSpec(layer)
	}

	currentShape := model.InputShape
	var allParameterShapes [][]int
	totalParams := int64(0)

	for i := range model.Layers {
		layer := &model.Layers[i]
		layer.InputShape = copyInts(currentShape)

		outputShape, err := computeLayerInfo(layer, currentShape)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compute layer %d (%s) info", i, layer.Name)
		}
		layer.OutputShape = outputShape

		for _, p := range layer.Params {
			allParameterShapes = append(allParameterShapes, p.Shape)
		}
		totalParams += layer.ParameterCount
		currentShape = outputShape
	}

	model.OutputShape = copyInts(currentShape)
	model.ParameterShapes = allParameterShapes
	model.TotalParameters = totalParams
	model.Compiled = true

	return model, nil
}

// Layer returns the compiled layer with the given name.
func (ms *ModelSpec) Layer(name string) (*LayerSpec, int, bool) {
	for i := range ms.Layers {
		if ms.Layers[i].Name == name {
			return &ms.Layers[i], i, true
		}
	}
	return nil, -1, false
}

// WithLayer returns a recompiled copy of the model in which the layer called
// name is replaced by replacement. The receiver is not modified.
func (ms *ModelSpec) WithLayer(name string, replacement LayerSpec) (*ModelSpec, error) {
	if _, _, ok := ms.Layer(name); !ok {
		return nil, errors.Errorf("model has no layer named %q", name)
	}
	builder := NewModelBuilder(ms.InputShape)
	for _, layer := range ms.Layers {
		if layer.Name == name {
			builder.AddLayer(uncompiled(replacement))
			continue
		}
		builder.AddLayer(uncompiled(layer))
	}
	return builder.Compile()
}

// Summary returns a human-readable model summary
func (ms *ModelSpec) Summary() string {
	if !ms.Compiled {
		return "Model not compiled"
	}

	var sb strings.Builder
	sb.WriteString("Model Summary:\n")
	sb.WriteString(fmt.Sprintf("Input Shape: %v\n", ms.InputShape))
	sb.WriteString(fmt.Sprintf("Output Shape: %v\n", ms.OutputShape))
	sb.WriteString(fmt.Sprintf("Total Parameters: %d\n", ms.TotalParameters))
	sb.WriteString(fmt.Sprintf("Layers: %d\n\n", len(ms.Layers)))

	for i, layer := range ms.Layers {
		sb.WriteString(fmt.Sprintf("Layer %d: %s (%s)\n", i+1, layer.Name, layer.Type.String()))
		sb.WriteString(fmt.Sprintf("  Input:  %v\n", layer.InputShape))
		sb.WriteString(fmt.Sprintf("  Output: %v\n", layer.OutputShape))
		sb.WriteString(fmt.Sprintf("  Params: %d\n", layer.ParameterCount))
	}

	return sb.String()
}

// computeLayerInfo computes output shape and parameter information for a layer
func computeLayerInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	layer.Params = nil
	layer.Buffers = nil
	layer.ParameterCount = 0

	switch layer.Type {
	case Dense:
		return computeDenseInfo(layer, inputShape)
	case Conv2D:
		return computeConv2DInfo(layer, inputShape)
	case BatchNorm:
		return computeBatchNormInfo(layer, inputShape)
	case MaxPool2D:
		return computeMaxPoolInfo(layer, inputShape)
	case AdaptiveAvgPool2D:
		return computeAdaptivePoolInfo(layer, inputShape)
	case Flatten:
		if len(inputShape) < 2 {
			return nil, errors.New("flatten requires at least 2D input")
		}
		return []int{inputShape[0], numElements(inputShape[1:])}, nil
	case BasicBlock:
		return computeBasicBlockInfo(layer, inputShape)
	case ReLU, Dropout:
		return copyInts(inputShape), nil
	default:
		return nil, errors.Errorf("unsupported layer type: %s", layer.Type.String())
	}
}

func computeDenseInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	if len(inputShape) != 2 {
		return nil, errors.Errorf("dense layer requires 2D input [batch, features], got %v (add a Flatten layer)", inputShape)
	}
	outputSize := getIntParam(layer.Parameters, "output_size", 0)
	if outputSize <= 0 {
		return nil, errors.Errorf("invalid output_size %d", outputSize)
	}
	inputSize := inputShape[1]
	layer.Parameters["input_size"] = inputSize

	layer.addParam(layer.Name+".weight", []int{outputSize, inputSize})
	if getBoolParam(layer.Parameters, "use_bias", true) {
		layer.addParam(layer.Name+".bias", []int{outputSize})
	}
	return []int{inputShape[0], outputSize}, nil
}

func computeConv2DInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	if len(inputShape) != 4 {
		return nil, errors.Errorf("Conv2D layer requires 4D input [batch, channels, height, width], got %v", inputShape)
	}
	outputChannels := getIntParam(layer.Parameters, "output_channels", 0)
	kernelSize := getIntParam(layer.Parameters, "kernel_size", 0)
	stride := getIntParam(layer.Parameters, "stride", 1)
	padding := getIntParam(layer.Parameters, "padding", 0)
	if outputChannels <= 0 || kernelSize <= 0 || stride <= 0 || padding < 0 {
		return nil, errors.Errorf("invalid conv parameters %v", layer.Parameters)
	}

	inputChannels := inputShape[1]
	layer.Parameters["input_channels"] = inputChannels

	outputHeight := (inputShape[2]+2*padding-kernelSize)/stride + 1
	outputWidth := (inputShape[3]+2*padding-kernelSize)/stride + 1
	if outputHeight <= 0 || outputWidth <= 0 {
		return nil, errors.Errorf("input %v too small for %dx%d kernel", inputShape, kernelSize, kernelSize)
	}

	layer.addParam(layer.Name+".weight", []int{outputChannels, inputChannels, kernelSize, kernelSize})
	if getBoolParam(layer.Parameters, "use_bias", true) {
		layer.addParam(layer.Name+".bias", []int{outputChannels})
	}
	return []int{inputShape[0], outputChannels, outputHeight, outputWidth}, nil
}

func computeBatchNormInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	if len(inputShape) != 4 {
		return nil, errors.Errorf("batch norm layer requires 4D input, got %v", inputShape)
	}
	numFeatures := inputShape[1]
	layer.Parameters["num_features"] = numFeatures

	layer.addParam(layer.Name+".weight", []int{numFeatures})
	layer.addParam(layer.Name+".bias", []int{numFeatures})
	layer.Buffers = append(layer.Buffers,
		TensorInfo{Name: layer.Name + ".running_mean", Shape: []int{numFeatures}},
		TensorInfo{Name: layer.Name + ".running_var", Shape: []int{numFeatures}},
	)
	return copyInts(inputShape), nil
}

func computeMaxPoolInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	if len(inputShape) != 4 {
		return nil, errors.Errorf("max pool requires 4D input, got %v", inputShape)
	}
	kernel := getIntParam(layer.Parameters, "kernel_size", 0)
	stride := getIntParam(layer.Parameters, "stride", kernel)
	padding := getIntParam(layer.Parameters, "padding", 0)
	if kernel <= 0 || stride <= 0 || padding < 0 {
		return nil, errors.Errorf("invalid pool parameters %v", layer.Parameters)
	}
	h := (inputShape[2]+2*padding-kernel)/stride + 1
	w := (inputShape[3]+2*padding-kernel)/stride + 1
	if h <= 0 || w <= 0 {
		return nil, errors.Errorf("input %v too small for %dx%d pool", inputShape, kernel, kernel)
	}
	return []int{inputShape[0], inputShape[1], h, w}, nil
}

func computeAdaptivePoolInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	if len(inputShape) != 4 {
		return nil, errors.Errorf("adaptive pool requires 4D input, got %v", inputShape)
	}
	h := getIntParam(layer.Parameters, "output_height", 0)
	w := getIntParam(layer.Parameters, "output_width", 0)
	if h <= 0 || w <= 0 {
		return nil, errors.Errorf("invalid adaptive pool output %dx%d", h, w)
	}
	return []int{inputShape[0], inputShape[1], h, w}, nil
}

func (layer *LayerSpec) addParam(name string, shape []int) {
	layer.Params = append(layer.Params, TensorInfo{Name: name, Shape: shape})
	layer.ParameterCount += int64(numElements(shape))
}

// Helper functions for parameter extraction
func getIntParam(params map[string]interface{}, key string, defaultValue int) int {
	if val, exists := params[key]; exists {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	return defaultValue
}

func getBoolParam(params map[string]interface{}, key string, defaultValue bool) bool {
	if val, exists := params[key]; exists {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

func getFloatParam(params map[string]interface{}, key string, defaultValue float32) float32 {
	if val, exists := params[key]; exists {
		switch v := val.(type) {
		case float32:
			return v
		case float64:
			return float32(v)
		}
	}
	return defaultValue
}

func getStringParam(params map[string]interface{}, key string, defaultValue string) string {
	if val, exists := params[key]; exists {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultValue
}

// IntParam exposes an integer layer parameter to other packages (the ONNX
// exporter, architecture printers).
func (layer *LayerSpec) IntParam(key string, defaultValue int) int {
	return getIntParam(layer.Parameters, key, defaultValue)
}

// BoolParam exposes a boolean layer parameter.
func (layer *LayerSpec) BoolParam(key string, defaultValue bool) bool {
	return getBoolParam(layer.Parameters, key, defaultValue)
}

// FloatParam exposes a float layer parameter.
func (layer *LayerSpec) FloatParam(key string, defaultValue float32) float32 {
	return getFloatParam(layer.Parameters, key, defaultValue)
}

func copyLayerSpec(layer LayerSpec) LayerSpec {
	params := make(map[string]interface{}, len(layer.Parameters))
	for k, v := range layer.Parameters {
		params[k] = v
	}
	layer.Parameters = params
	return layer
}

// uncompiled strips computed fields so a spec can be fed back to a builder.
func uncompiled(layer LayerSpec) LayerSpec {
	layer = copyLayerSpec(layer)
	layer.InputShape = nil
	layer.OutputShape = nil
	layer.Params = nil
	layer.Buffers = nil
	layer.ParameterCount = 0
	return layer
}

func copyInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
