package checkpoints

import (
	"encoding/binary"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/tensor"
)

func TestModelWireRoundTrip(t *testing.T) {
	model := &ModelProto{
		IrVersion:       8,
		ProducerName:    "test",
		ProducerVersion: "0.1",
		ModelVersion:    3,
		OpsetImport:     []*OperatorSetIdProto{{Version: 13}},
		MetadataProps:   []*StringStringEntryProto{{Key: "k", Value: "v"}},
		Graph: &GraphProto{
			Name: "g",
			Node: []*NodeProto{{
				OpType: "Conv",
				Name:   "conv",
				Input:  []string{"x", "w", ""},
				Output: []string{"y"},
				Attribute: []*AttributeProto{
					intsAttr("pads", 1, 1, 1, 1),
					intAttr("group", 1),
					floatAttr("epsilon", 1e-5),
					{Name: "mode", Type: AttributeProto_STRING, S: []byte("constant")},
					{Name: "scales", Type: AttributeProto_FLOATS, Floats: []float32{0.5, 2}},
				},
			}},
			Initializer: []*TensorProto{
				createTensorProto("w", []int{2, 1, 1, 1}, []float32{1.5, -2}),
				{Name: "f", Dims: []int64{2}, DataType: int32(TensorProto_FLOAT), FloatData: []float32{3, 4}},
				{Name: "shape", Dims: []int64{2}, DataType: int32(TensorProto_INT64), Int64Data: []int64{-1, 7}},
			},
			Input:  []*ValueInfoProto{createValueInfo("x", []int{1, 1, 4, 4})},
			Output: []*ValueInfoProto{createValueInfo("y", []int{1, 2, 4, 4})},
		},
	}

	data, err := MarshalModel(model)
	require.NoError(t, err)
	decoded, err := UnmarshalModel(data)
	require.NoError(t, err)

	assert.Equal(t, int64(8), decoded.IrVersion)
	assert.Equal(t, "test", decoded.ProducerName)
	assert.Equal(t, int64(3), decoded.ModelVersion)
	require.Len(t, decoded.OpsetImport, 1)
	assert.Equal(t, int64(13), decoded.OpsetImport[0].Version)
	assert.Equal(t, map[string]string{"k": "v"}, decoded.Metadata())

	node := decoded.Graph.Node[0]
	assert.Equal(t, []string{"x", "w", ""}, node.Input)
	assert.Equal(t, []int64{1, 1, 1, 1}, node.IntsAttr("pads"))
	assert.Equal(t, int64(1), node.IntAttr("group", 0))
	assert.InDelta(t, 1e-5, node.FloatAttr("epsilon", 0), 1e-12)
	mode, ok := node.Attr("mode")
	require.True(t, ok)
	assert.Equal(t, "constant", string(mode.S))
	scales, _ := node.Attr("scales")
	assert.Equal(t, []float32{0.5, 2}, scales.Floats)
	assert.Equal(t, int64(7), node.IntAttr("missing", 7))

	require.Len(t, decoded.Graph.Initializer, 3)
	w, err := TensorFromProto(decoded.Graph.Initializer[0])
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 1, 1}, w.Shape)
	assert.Equal(t, []float32{1.5, -2}, w.Data)
	f, err := TensorFromProto(decoded.Graph.Initializer[1])
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, f.Data)
	shape, err := TensorFromProto(decoded.Graph.Initializer[2])
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 7}, shape.Data)

	in := decoded.Graph.Input[0].GetType().GetTensorType()
	require.NotNil(t, in)
	assert.Equal(t, int32(TensorProto_FLOAT), in.GetElemType())
	assert.Equal(t, []int{1, 1, 4, 4}, decoded.Graph.Input[0].Dims())
	assert.Equal(t, AttributeProto_STRING, mode.GetType())
}

func TestDecodeAcceptsPackedDimsAndSkipsUnknownFields(t *testing.T) {
	// TensorProto with packed dims (field 1) and an unknown field 99.
	var packed []byte
	packed = protowire.AppendVarint(packed, 2)
	packed = protowire.AppendVarint(packed, 3)
	var tb []byte
	tb = protowire.AppendTag(tb, 1, protowire.BytesType)
	tb = protowire.AppendBytes(tb, packed)
	tb = protowire.AppendTag(tb, 99, protowire.VarintType)
	tb = protowire.AppendVarint(tb, 42)
	tb = protowire.AppendTag(tb, 2, protowire.VarintType)
	tb = protowire.AppendVarint(tb, uint64(TensorProto_FLOAT))

	var gb []byte
	gb = protowire.AppendTag(gb, 5, protowire.BytesType)
	gb = protowire.AppendBytes(gb, tb)
	var mb []byte
	mb = protowire.AppendTag(mb, 7, protowire.BytesType)
	mb = protowire.AppendBytes(mb, gb)

	model, err := UnmarshalModel(mb)
	require.NoError(t, err)
	require.Len(t, model.Graph.Initializer, 1)
	assert.Equal(t, []int64{2, 3}, model.Graph.Initializer[0].Dims)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	data, err := MarshalModel(&ModelProto{IrVersion: 8, ProducerName: "truncate me"})
	require.NoError(t, err)
	_, err = UnmarshalModel(data[:len(data)-3])
	assert.Error(t, err)
}

func TestSafetensorsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.safetensors")
	in := map[string]*tensor.Tensor{
		"a.weight": tensor.MustNew([]int{2, 2}, []float32{1, 2, 3, 4}),
		"a.bias":   tensor.MustNew([]int{2}, []float32{-0.5, 0.25}),
	}
	require.NoError(t, SaveSafetensors(path, in, map[string]string{"format": "pt"}))

	out, err := LoadSafetensors(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in["a.weight"].Data, out["a.weight"].Data)
	assert.Equal(t, []int{2}, out["a.bias"].Shape)
	assert.Equal(t, in["a.bias"].Data, out["a.bias"].Data)
}

func writeRawSafetensors(t *testing.T, header string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.safetensors")
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(len(header)))
	buf = append(buf, header...)
	buf = append(buf, data...)
	require.NoError(t, os.WriteFile(path, buf, 0644))
	return path
}

func TestSafetensorsDTypes(t *testing.T) {
	var data []byte
	// F16: 1.0, -2.0
	data = binary.LittleEndian.AppendUint16(data, 0x3c00)
	data = binary.LittleEndian.AppendUint16(data, 0xc000)
	// BF16: 1.0
	data = binary.LittleEndian.AppendUint16(data, 0x3f80)
	// F64: 0.5
	data = binary.LittleEndian.AppendUint64(data, math.Float64bits(0.5))
	// I64: 7
	data = binary.LittleEndian.AppendUint64(data, 7)

	header := `{"h":{"dtype":"F16","shape":[2],"data_offsets":[0,4]},` +
		`"b":{"dtype":"BF16","shape":[1],"data_offsets":[4,6]},` +
		`"d":{"dtype":"F64","shape":[1],"data_offsets":[6,14]},` +
		`"n":{"dtype":"I64","shape":[],"data_offsets":[14,22]}}`
	out, err := LoadSafetensors(writeRawSafetensors(t, header, data))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2}, out["h"].Data)
	assert.Equal(t, []float32{1}, out["b"].Data)
	assert.Equal(t, []float32{0.5}, out["d"].Data)
	assert.Equal(t, []float32{7}, out["n"].Data)
}

func TestSafetensorsErrors(t *testing.T) {
	_, err := LoadSafetensors(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)

	_, err = LoadSafetensors(writeRawSafetensors(t, `{"x":{"dtype":"U8","shape":[1],"data_offsets":[0,1]}}`, []byte{1}))
	assert.Error(t, err, "unsupported dtype")

	_, err = LoadSafetensors(writeRawSafetensors(t, `{"x":{"dtype":"F32","shape":[4],"data_offsets":[0,16]}}`, make([]byte, 8)))
	assert.Error(t, err, "offsets past the end")

	_, err = LoadSafetensors(writeRawSafetensors(t, `{"x":{"dtype":"F32","shape":[3],"data_offsets":[0,8]}}`, make([]byte, 8)))
	assert.Error(t, err, "shape does not match data")
}

func exportableNetwork(t *testing.T) *layers.Network {
	t.Helper()
	spec, err := layers.NewModelBuilder([]int{2, 3, 8, 8}).
		AddConv2D(4, 3, 1, 1, false, "", "conv1").
		AddBatchNorm(1e-5, 0.1, "bn1").
		AddReLU("relu").
		AddMaxPool2D(2, 2, 0, "pool").
		AddBasicBlock(8, 2, "layer1.0").
		AddAdaptiveAvgPool2D(1, 1, "avgpool").
		AddFlatten("flatten").
		AddDropout(0.5, "drop").
		AddDense(3, true, "fc").
		Compile()
	require.NoError(t, err)
	net, err := layers.NewNetwork(spec, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return net
}

func TestExportWritesGraph(t *testing.T) {
	net := exportableNetwork(t)
	dummy, err := tensor.RandN([]int{1, 3, 8, 8}, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	exporter := NewONNXExporter()
	out, err := exporter.Export(net, dummy, path, ExportMetadata{
		Backbone: "test",
		Classes:  []string{"knight", "pawn", "rook"},
		RunID:    "run-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, out.Shape)
	assert.Equal(t, layers.ModeEval, net.Mode())

	model, err := ReadModel(path)
	require.NoError(t, err)
	assert.Equal(t, int64(onnxIRVersion), model.IrVersion)
	assert.Equal(t, int64(onnxOpset), model.OpsetImport[0].Version)

	var ops []string
	for _, n := range model.Graph.Node {
		ops = append(ops, n.OpType)
	}
	assert.Equal(t, []string{
		"Conv", "BatchNormalization", "Relu", "MaxPool",
		"Conv", "BatchNormalization", "Relu", "Conv", "BatchNormalization",
		"Conv", "BatchNormalization", "Add", "Relu",
		"GlobalAveragePool", "Flatten", "Gemm",
	}, ops)
	assert.NotContains(t, ops, "Dropout")

	last := model.Graph.Node[len(model.Graph.Node)-1]
	assert.Equal(t, OutputName, last.Output[0])
	assert.Equal(t, int64(1), last.IntAttr("transB", 0))

	// Every parameter and buffer becomes exactly one initializer.
	assert.Len(t, model.Graph.Initializer, len(net.Parameters())+len(net.Buffers()))

	meta := model.Metadata()
	assert.Equal(t, "test", meta[MetaBackbone])
	assert.Equal(t, "run-1", meta[MetaRunID])
	assert.Equal(t, "8", meta[MetaImageSize])
	classes, err := ClassesFromMetadata(meta)
	require.NoError(t, err)
	assert.Equal(t, []string{"knight", "pawn", "rook"}, classes)
}

func TestExportRejectsInexpressibleAdaptivePool(t *testing.T) {
	spec, err := layers.NewModelBuilder([]int{1, 1, 5, 5}).
		AddAdaptiveAvgPool2D(2, 2, "avgpool").
		AddFlatten("flatten").
		AddDense(2, true, "fc").
		Compile()
	require.NoError(t, err)
	net, err := layers.NewNetwork(spec, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = NewONNXExporter().Export(net, tensor.MustNew([]int{1, 1, 5, 5}, nil), filepath.Join(t.TempDir(), "x.onnx"), ExportMetadata{})
	assert.Error(t, err)

	err = CheckExportable(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avgpool")
}

func TestCheckExportableAcceptsSupportedLayers(t *testing.T) {
	assert.NoError(t, CheckExportable(exportableNetwork(t).Spec()))

	spec, err := layers.NewModelBuilder([]int{1, 1, 6, 6}).
		AddAdaptiveAvgPool2D(3, 3, "avgpool").
		Compile()
	require.NoError(t, err)
	assert.NoError(t, CheckExportable(spec))
}

func TestExportFailsOnBadDummyInput(t *testing.T) {
	net := exportableNetwork(t)
	_, err := NewONNXExporter().Export(net, tensor.MustNew([]int{1, 1, 8, 8}, nil), filepath.Join(t.TempDir(), "x.onnx"), ExportMetadata{})
	assert.Error(t, err)
}

func TestClassesFromMetadataErrors(t *testing.T) {
	_, err := ClassesFromMetadata(map[string]string{})
	assert.Error(t, err)
	_, err = ClassesFromMetadata(map[string]string{MetaClasses: "not json"})
	assert.Error(t, err)
}

func TestDescriptorUsesONNXFieldNumbers(t *testing.T) {
	fieldNumber := func(m proto.Message, name string) protoreflect.FieldNumber {
		fd := m.ProtoReflect().Descriptor().Fields().ByName(protoreflect.Name(name))
		require.NotNil(t, fd, name)
		return fd.Number()
	}
	assert.Equal(t, protoreflect.FullName("onnx.ModelProto"), (&ModelProto{}).ProtoReflect().Descriptor().FullName())
	assert.Equal(t, protoreflect.FieldNumber(7), fieldNumber(&ModelProto{}, "graph"))
	assert.Equal(t, protoreflect.FieldNumber(8), fieldNumber(&ModelProto{}, "opset_import"))
	assert.Equal(t, protoreflect.FieldNumber(14), fieldNumber(&ModelProto{}, "metadata_props"))
	assert.Equal(t, protoreflect.FieldNumber(5), fieldNumber(&GraphProto{}, "initializer"))
	assert.Equal(t, protoreflect.FieldNumber(11), fieldNumber(&GraphProto{}, "input"))
	assert.Equal(t, protoreflect.FieldNumber(20), fieldNumber(&AttributeProto{}, "type"))
	assert.Equal(t, protoreflect.FieldNumber(9), fieldNumber(&TensorProto{}, "raw_data"))
	assert.Equal(t, protoreflect.FieldNumber(1), fieldNumber(&TypeProto{}, "tensor_type"))
	assert.Equal(t, "INTS", AttributeProto_INTS.String())
	assert.Equal(t, protoreflect.EnumNumber(7), TensorProto_INT64.Number())
}

func floatsFromRaw(t *testing.T, tp *TensorProto) []float32 {
	t.Helper()
	require.Equal(t, int32(TensorProto_FLOAT), tp.GetDataType(), tp.GetName())
	raw := tp.GetRawData()
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}

func TestExportedFileDecodesWithONNXSemantics(t *testing.T) {
	spec, err := layers.NewModelBuilder([]int{1, 2, 2, 2}).
		AddFlatten("flatten").
		AddDense(3, true, "fc").
		Compile()
	require.NoError(t, err)
	net, err := layers.NewNetwork(spec, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	x := tensor.MustNew([]int{1, 2, 2, 2}, []float32{0.5, -1, 2, 0, 1.5, -0.25, 3, 1})
	path := filepath.Join(t.TempDir(), "dense.onnx")
	want, err := NewONNXExporter().Export(net, x, path, ExportMetadata{Backbone: "dense", Classes: []string{"a", "b", "c"}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var model ModelProto
	require.NoError(t, proto.Unmarshal(raw, &model))

	graph := model.GetGraph()
	require.NotNil(t, graph)
	assert.Equal(t, []int{1, 2, 2, 2}, graph.GetInput()[0].Dims())
	assert.Equal(t, []int{1, 3}, graph.GetOutput()[0].Dims())

	inits := make(map[string]*TensorProto)
	for _, ini := range graph.GetInitializer() {
		inits[ini.GetName()] = ini
	}

	var gemm *NodeProto
	for _, n := range graph.GetNode() {
		if n.GetOpType() == "Gemm" {
			gemm = n
		}
	}
	require.NotNil(t, gemm)
	assert.Equal(t, int64(1), gemm.IntAttr("transB", 0))
	require.Len(t, gemm.GetInput(), 3)

	// Gemm with transB=1 stores the weight as [out, in].
	w := inits[gemm.GetInput()[1]]
	b := inits[gemm.GetInput()[2]]
	require.NotNil(t, w)
	require.NotNil(t, b)
	assert.Equal(t, []int64{3, 8}, w.GetDims())
	wd, bd := floatsFromRaw(t, w), floatsFromRaw(t, b)

	for o := 0; o < 3; o++ {
		sum := bd[o]
		for i := 0; i < 8; i++ {
			sum += x.Data[i] * wd[o*8+i]
		}
		assert.InDelta(t, want.Data[o], sum, 1e-5, "output %d", o)
	}
}

func TestExportedConvAndBatchNormFollowONNXInputOrder(t *testing.T) {
	net := exportableNetwork(t)
	path := filepath.Join(t.TempDir(), "model.onnx")
	_, err := NewONNXExporter().Export(net, tensor.MustNew([]int{1, 3, 8, 8}, make([]float32, 3*64)), path, ExportMetadata{})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var model ModelProto
	require.NoError(t, proto.Unmarshal(raw, &model))

	var conv, bn *NodeProto
	for _, n := range model.GetGraph().GetNode() {
		switch {
		case n.GetName() == "conv1" && conv == nil:
			conv = n
		case n.GetName() == "bn1" && bn == nil:
			bn = n
		}
	}
	require.NotNil(t, conv)
	require.NotNil(t, bn)

	assert.Equal(t, []int64{1, 1, 1, 1}, conv.IntsAttr("pads"))
	assert.Equal(t, []int64{3, 3}, conv.IntsAttr("kernel_shape"))
	pads, ok := conv.Attr("pads")
	require.True(t, ok)
	assert.Equal(t, AttributeProto_INTS, pads.GetType())

	// X, scale, B, mean, var.
	require.Len(t, bn.GetInput(), 5)
	assert.Equal(t, conv.GetOutput()[0], bn.GetInput()[0])
	assert.Equal(t, []string{"bn1.weight", "bn1.bias", "bn1.running_mean", "bn1.running_var"}, bn.GetInput()[1:])
}
