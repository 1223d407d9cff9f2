package checkpoints

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
)

//go:generate protoc --go_out=. --go_opt=paths=source_relative onnx.proto

// MarshalModel encodes a model in the protobuf wire format.
func MarshalModel(m *ModelProto) ([]byte, error) {
	data, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal ONNX model")
	}
	return data, nil
}

// UnmarshalModel decodes a protobuf-encoded ONNX model.
func UnmarshalModel(data []byte) (*ModelProto, error) {
	m := &ModelProto{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, "failed to decode ONNX model")
	}
	return m, nil
}

// ReadModel loads and decodes an ONNX file.
func ReadModel(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ONNX file %s", path)
	}
	m, err := UnmarshalModel(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ONNX file %s", path)
	}
	return m, nil
}

// Metadata returns metadata_props as a map.
func (x *ModelProto) Metadata() map[string]string {
	out := make(map[string]string, len(x.GetMetadataProps()))
	for _, e := range x.GetMetadataProps() {
		out[e.GetKey()] = e.GetValue()
	}
	return out
}

// Attr looks up an attribute by name.
func (x *NodeProto) Attr(name string) (*AttributeProto, bool) {
	for _, a := range x.GetAttribute() {
		if a.GetName() == name {
			return a, true
		}
	}
	return nil, false
}

// IntAttr returns an INT attribute or def.
func (x *NodeProto) IntAttr(name string, def int64) int64 {
	if a, ok := x.Attr(name); ok {
		return a.GetI()
	}
	return def
}

// FloatAttr returns a FLOAT attribute or def.
func (x *NodeProto) FloatAttr(name string, def float32) float32 {
	if a, ok := x.Attr(name); ok {
		return a.GetF()
	}
	return def
}

// IntsAttr returns an INTS attribute or nil.
func (x *NodeProto) IntsAttr(name string) []int64 {
	if a, ok := x.Attr(name); ok {
		return a.GetInts()
	}
	return nil
}

// Dims returns the fixed dimensions of a tensor-typed value. Symbolic
// dimensions come back as 0.
func (x *ValueInfoProto) Dims() []int {
	var dims []int
	for _, d := range x.GetType().GetTensorType().GetShape().GetDim() {
		dims = append(dims, int(d.GetDimValue()))
	}
	return dims
}

func intAttr(name string, v int64) *AttributeProto {
	return &AttributeProto{Name: name, Type: AttributeProto_INT, I: v}
}

func floatAttr(name string, v float32) *AttributeProto {
	return &AttributeProto{Name: name, Type: AttributeProto_FLOAT, F: v}
}

func intsAttr(name string, v ...int64) *AttributeProto {
	return &AttributeProto{Name: name, Type: AttributeProto_INTS, Ints: v}
}
