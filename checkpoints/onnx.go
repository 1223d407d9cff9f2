package checkpoints

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/tensor"
)

const (
	onnxIRVersion = 8
	onnxOpset     = 13

	// Graph value names.
	InputName  = "input"
	OutputName = "output"

	// metadata_props keys.
	MetaBackbone  = "backbone"
	MetaClasses   = "classes"
	MetaRunID     = "run_id"
	MetaImageSize = "image_size"
)

// ExportMetadata is stored in the model's metadata_props.
type ExportMetadata struct {
	Backbone string
	Classes  []string
	RunID    string
}

// ClassesFromMetadata decodes the class list written by the exporter.
func ClassesFromMetadata(meta map[string]string) ([]string, error) {
	raw, ok := meta[MetaClasses]
	if !ok {
		return nil, errors.New("model metadata has no class names")
	}
	var classes []string
	if err := json.Unmarshal([]byte(raw), &classes); err != nil {
		return nil, errors.Wrap(err, "invalid class names in model metadata")
	}
	return classes, nil
}

// ONNXExporter converts trained networks to ONNX models
type ONNXExporter struct {
	ProducerName    string
	ProducerVersion string
	model           *ModelProto
}

// NewONNXExporter creates a new ONNX exporter
func NewONNXExporter() *ONNXExporter {
	return &ONNXExporter{
		ProducerName:    "go-chessnet",
		ProducerVersion: "1.0.0",
	}
}

// Model returns the last exported model.
func (oe *ONNXExporter) Model() *ModelProto {
	return oe.model
}

// Export switches net to eval mode, runs it once on dummy to validate the
// graph, converts it to ONNX and writes it to path, replacing any existing
// file. It returns the in-process output for dummy.
func (oe *ONNXExporter) Export(net *layers.Network, dummy *tensor.Tensor, path string, meta ExportMetadata) (*tensor.Tensor, error) {
	net.SetMode(layers.ModeEval)
	out, err := net.Forward(dummy)
	if err != nil {
		return nil, errors.Wrap(err, "export trace failed")
	}

	model, err := oe.BuildModel(net, dummy.Shape, meta)
	if err != nil {
		return nil, err
	}

	data, err := MarshalModel(model)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to write ONNX file %s", path)
	}
	return out, nil
}

// BuildModel converts net to an ONNX model with a fixed input shape.
func (oe *ONNXExporter) BuildModel(net *layers.Network, inputShape []int, meta ExportMetadata) (*ModelProto, error) {
	graph, err := oe.buildONNXGraph(net, inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build ONNX graph")
	}

	model := &ModelProto{
		IrVersion:       onnxIRVersion,
		OpsetImport:     []*OperatorSetIdProto{{Domain: "", Version: onnxOpset}},
		ProducerName:    oe.ProducerName,
		ProducerVersion: oe.ProducerVersion,
		ModelVersion:    1,
		Graph:           graph,
	}

	classes, err := json.Marshal(meta.Classes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode class names")
	}
	props := []*StringStringEntryProto{
		{Key: MetaBackbone, Value: meta.Backbone},
		{Key: MetaClasses, Value: string(classes)},
		{Key: MetaImageSize, Value: strconv.Itoa(inputShape[len(inputShape)-1])},
	}
	if meta.RunID != "" {
		props = append(props, &StringStringEntryProto{Key: MetaRunID, Value: meta.RunID})
	}
	model.MetadataProps = props
	oe.model = model
	return model, nil
}

// graphBuilder accumulates nodes and initializers while walking the layers.
type graphBuilder struct {
	state       map[string]*tensor.Tensor
	nodes       []*NodeProto
	initializer []*TensorProto
	seen        map[string]bool
}

func (gb *graphBuilder) add(node *NodeProto) string {
	gb.nodes = append(gb.nodes, node)
	return node.Output[0]
}

// weight registers a parameter or buffer as an initializer and returns its name.
func (gb *graphBuilder) weight(name string) (string, error) {
	t, ok := gb.state[name]
	if !ok {
		return "", errors.Errorf("network has no tensor %q", name)
	}
	if !gb.seen[name] {
		gb.seen[name] = true
		gb.initializer = append(gb.initializer, createTensorProto(name, t.Shape, t.Data))
	}
	return name, nil
}

func (oe *ONNXExporter) buildONNXGraph(net *layers.Network, inputShape []int) (*GraphProto, error) {
	spec := net.Spec()
	gb := &graphBuilder{
		state: net.StateDict(),
		seen:  make(map[string]bool),
	}

	current := InputName
	for i := range spec.Layers {
		layer := &spec.Layers[i]
		next, err := gb.convertLayer(layer, current)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %s (%s)", layer.Name, layer.Type)
		}
		current = next
	}
	if len(gb.nodes) == 0 {
		return nil, errors.New("model has no exportable layers")
	}
	// Rename the final value so consumers find it by a stable name.
	last := gb.nodes[len(gb.nodes)-1]
	last.Output[0] = OutputName

	outputShape := append([]int{inputShape[0]}, spec.OutputShape[1:]...)
	return &GraphProto{
		Name:        "go-chessnet",
		Node:        gb.nodes,
		Initializer: gb.initializer,
		Input:       []*ValueInfoProto{createValueInfo(InputName, inputShape)},
		Output:      []*ValueInfoProto{createValueInfo(OutputName, outputShape)},
	}, nil
}

func (gb *graphBuilder) convertLayer(layer *layers.LayerSpec, input string) (string, error) {
	switch layer.Type {
	case layers.Conv2D:
		return gb.createConv2DNode(layer, input)
	case layers.BatchNorm:
		return gb.createBatchNormNode(layer, input)
	case layers.Dense:
		return gb.createDenseNode(layer, input)
	case layers.ReLU:
		return gb.add(&NodeProto{OpType: "Relu", Name: layer.Name, Input: []string{input}, Output: []string{layer.Name + "_output"}}), nil
	case layers.MaxPool2D:
		k := int64(layer.IntParam("kernel_size", 0))
		s := int64(layer.IntParam("stride", 0))
		p := int64(layer.IntParam("padding", 0))
		return gb.add(&NodeProto{
			OpType: "MaxPool",
			Name:   layer.Name,
			Input:  []string{input},
			Output: []string{layer.Name + "_output"},
			Attribute: []*AttributeProto{
				intsAttr("kernel_shape", k, k),
				intsAttr("strides", s, s),
				intsAttr("pads", p, p, p, p),
			},
		}), nil
	case layers.AdaptiveAvgPool2D:
		return gb.createAdaptivePoolNode(layer, input)
	case layers.Dropout:
		// Identity at inference time.
		return input, nil
	case layers.Flatten:
		return gb.add(&NodeProto{
			OpType:    "Flatten",
			Name:      layer.Name,
			Input:     []string{input},
			Output:    []string{layer.Name + "_output"},
			Attribute: []*AttributeProto{intAttr("axis", 1)},
		}), nil
	case layers.BasicBlock:
		return gb.createBasicBlockNodes(layer, input)
	default:
		return "", errors.Errorf("layer type %s cannot be exported to ONNX", layer.Type)
	}
}

// createConv2DNode creates ONNX Conv node
func (gb *graphBuilder) createConv2DNode(layer *layers.LayerSpec, input string) (string, error) {
	k := int64(layer.IntParam("kernel_size", 0))
	s := int64(layer.IntParam("stride", 1))
	p := int64(layer.IntParam("padding", 0))

	inputs := []string{input}
	for _, param := range layer.Params {
		name, err := gb.weight(param.Name)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, name)
	}
	return gb.add(&NodeProto{
		OpType: "Conv",
		Name:   layer.Name,
		Input:  inputs,
		Output: []string{layer.Name + "_output"},
		Attribute: []*AttributeProto{
			intsAttr("dilations", 1, 1),
			intAttr("group", 1),
			intsAttr("kernel_shape", k, k),
			intsAttr("pads", p, p, p, p),
			intsAttr("strides", s, s),
		},
	}), nil
}

// createBatchNormNode creates an inference-mode BatchNormalization node
func (gb *graphBuilder) createBatchNormNode(layer *layers.LayerSpec, input string) (string, error) {
	inputs := []string{input}
	for _, name := range []string{
		layer.Name + ".weight",
		layer.Name + ".bias",
		layer.Name + ".running_mean",
		layer.Name + ".running_var",
	} {
		if _, err := gb.weight(name); err != nil {
			return "", err
		}
		inputs = append(inputs, name)
	}
	return gb.add(&NodeProto{
		OpType: "BatchNormalization",
		Name:   layer.Name,
		Input:  inputs,
		Output: []string{layer.Name + "_output"},
		Attribute: []*AttributeProto{
			floatAttr("epsilon", layer.FloatParam("eps", 1e-5)),
			floatAttr("momentum", 1-layer.FloatParam("momentum", 0.1)),
		},
	}), nil
}

// createDenseNode creates a Gemm node; weights stay [out, in] with transB=1.
func (gb *graphBuilder) createDenseNode(layer *layers.LayerSpec, input string) (string, error) {
	inputs := []string{input}
	for _, param := range layer.Params {
		name, err := gb.weight(param.Name)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, name)
	}
	return gb.add(&NodeProto{
		OpType: "Gemm",
		Name:   layer.Name,
		Input:  inputs,
		Output: []string{layer.Name + "_output"},
		Attribute: []*AttributeProto{
			floatAttr("alpha", 1),
			floatAttr("beta", 1),
			intAttr("transB", 1),
		},
	}), nil
}

// createAdaptivePoolNode maps adaptive average pooling onto the fixed-window
// ONNX operators.
func (gb *graphBuilder) createAdaptivePoolNode(layer *layers.LayerSpec, input string) (string, error) {
	kh, kw, global, err := adaptivePoolWindow(layer)
	if err != nil {
		return "", err
	}
	if global {
		return gb.add(&NodeProto{
			OpType: "GlobalAveragePool",
			Name:   layer.Name,
			Input:  []string{input},
			Output: []string{layer.Name + "_output"},
		}), nil
	}
	return gb.add(&NodeProto{
		OpType: "AveragePool",
		Name:   layer.Name,
		Input:  []string{input},
		Output: []string{layer.Name + "_output"},
		Attribute: []*AttributeProto{
			intsAttr("kernel_shape", kh, kw),
			intsAttr("strides", kh, kw),
		},
	}), nil
}

// adaptivePoolWindow returns the fixed pooling window equivalent to an
// adaptive pool. This needs the input size to divide evenly into the output
// size, unless the output is 1x1.
func adaptivePoolWindow(layer *layers.LayerSpec) (kh, kw int64, global bool, err error) {
	if len(layer.InputShape) != 4 {
		return 0, 0, false, errors.Errorf("adaptive pooling needs a 4D input, got %v", layer.InputShape)
	}
	h, w := layer.InputShape[2], layer.InputShape[3]
	outH := layer.IntParam("output_height", 0)
	outW := layer.IntParam("output_width", 0)
	if outH <= 0 || outW <= 0 {
		return 0, 0, false, errors.Errorf("invalid adaptive pooling output %dx%d", outH, outW)
	}
	if outH == 1 && outW == 1 {
		return 0, 0, true, nil
	}
	if h%outH != 0 || w%outW != 0 {
		return 0, 0, false, errors.Errorf("adaptive pooling from %dx%d to %dx%d is not expressible in ONNX", h, w, outH, outW)
	}
	return int64(h / outH), int64(w / outW), false, nil
}

// CheckExportable reports whether every layer of a compiled spec can be
// lowered to ONNX. Only shapes are inspected, so it runs before any weights
// exist.
func CheckExportable(spec *layers.ModelSpec) error {
	for i := range spec.Layers {
		layer := &spec.Layers[i]
		var err error
		switch layer.Type {
		case layers.Conv2D, layers.BatchNorm, layers.Dense, layers.ReLU, layers.MaxPool2D,
			layers.Dropout, layers.Flatten, layers.BasicBlock:
		case layers.AdaptiveAvgPool2D:
			_, _, _, err = adaptivePoolWindow(layer)
		default:
			err = errors.Errorf("layer type %s cannot be exported to ONNX", layer.Type)
		}
		if err != nil {
			return errors.Wrapf(err, "layer %s (%s)", layer.Name, layer.Type)
		}
	}
	return nil
}

func (gb *graphBuilder) createBasicBlockNodes(layer *layers.LayerSpec, input string) (string, error) {
	parts, err := layer.BlockParts()
	if err != nil {
		return "", err
	}

	out, err := gb.createConv2DNode(&parts.Conv1, input)
	if err != nil {
		return "", err
	}
	if out, err = gb.createBatchNormNode(&parts.BN1, out); err != nil {
		return "", err
	}
	out = gb.add(&NodeProto{OpType: "Relu", Name: layer.Name + ".relu1", Input: []string{out}, Output: []string{layer.Name + ".relu1_output"}})
	if out, err = gb.createConv2DNode(&parts.Conv2, out); err != nil {
		return "", err
	}
	if out, err = gb.createBatchNormNode(&parts.BN2, out); err != nil {
		return "", err
	}

	identity := input
	if len(parts.Downsample) == 2 {
		if identity, err = gb.createConv2DNode(&parts.Downsample[0], input); err != nil {
			return "", err
		}
		if identity, err = gb.createBatchNormNode(&parts.Downsample[1], identity); err != nil {
			return "", err
		}
	}

	sum := gb.add(&NodeProto{OpType: "Add", Name: layer.Name + ".add", Input: []string{out, identity}, Output: []string{layer.Name + ".add_output"}})
	return gb.add(&NodeProto{OpType: "Relu", Name: layer.Name + ".relu2", Input: []string{sum}, Output: []string{layer.Name + "_output"}}), nil
}

func createValueInfo(name string, shape []int) *ValueInfoProto {
	return &ValueInfoProto{
		Name: name,
		Type: &TypeProto{
			Value: &TypeProto_TensorType{
				TensorType: &TypeProto_Tensor{
					ElemType: int32(TensorProto_FLOAT),
					Shape:    &TensorShapeProto{Dim: createDimensions(shape)},
				},
			},
		},
	}
}

// createDimensions converts shape to ONNX dimensions
func createDimensions(shape []int) []*TensorShapeProto_Dimension {
	dims := make([]*TensorShapeProto_Dimension, len(shape))
	for i, d := range shape {
		dims[i] = &TensorShapeProto_Dimension{
			Value: &TensorShapeProto_Dimension_DimValue{DimValue: int64(d)},
		}
	}
	return dims
}

// createTensorProto creates a float initializer stored as little-endian raw data
func createTensorProto(name string, shape []int, data []float32) *TensorProto {
	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return &TensorProto{
		Name:     name,
		Dims:     dims,
		DataType: int32(TensorProto_FLOAT),
		RawData:  raw,
	}
}

// TensorFromProto decodes a float tensor from raw or typed data.
func TensorFromProto(t *TensorProto) (*tensor.Tensor, error) {
	shape := make([]int, len(t.Dims))
	for i, d := range t.Dims {
		shape[i] = int(d)
	}
	if len(shape) == 0 {
		shape = []int{1}
	}

	var data []float32
	switch dt := TensorProto_DataType(t.DataType); {
	case dt == TensorProto_FLOAT && len(t.RawData) > 0:
		if len(t.RawData)%4 != 0 {
			return nil, errors.Errorf("tensor %s: raw data length %d is not a multiple of 4", t.Name, len(t.RawData))
		}
		data = make([]float32, len(t.RawData)/4)
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.RawData[4*i:]))
		}
	case dt == TensorProto_FLOAT:
		data = append([]float32(nil), t.FloatData...)
	case dt == TensorProto_INT64 && len(t.RawData) > 0:
		data = make([]float32, len(t.RawData)/8)
		for i := range data {
			data[i] = float32(int64(binary.LittleEndian.Uint64(t.RawData[8*i:])))
		}
	case dt == TensorProto_INT64:
		data = make([]float32, len(t.Int64Data))
		for i, v := range t.Int64Data {
			data[i] = float32(v)
		}
	default:
		return nil, errors.Errorf("tensor %s: unsupported data type %d", t.Name, t.DataType)
	}

	out, err := tensor.New(shape, data)
	if err != nil {
		return nil, errors.Wrapf(err, "tensor %s", t.Name)
	}
	return out, nil
}
