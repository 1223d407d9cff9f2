package engine

import (
	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/tensor"
)

type lookupFunc func(name string) (*tensor.Tensor, bool)

type opFunc func(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error)

// operators maps an ONNX op type to its kernel and its required input count.
var operators = map[string]struct {
	run       opFunc
	minInputs int
}{
	"Conv":               {runConv, 2},
	"Relu":               {runRelu, 1},
	"MaxPool":            {runMaxPool, 1},
	"AveragePool":        {runAveragePool, 1},
	"GlobalAveragePool":  {runGlobalAveragePool, 1},
	"BatchNormalization": {runBatchNorm, 5},
	"Add":                {runAdd, 2},
	"Flatten":            {runFlatten, 1},
	"Gemm":               {runGemm, 2},
	"MatMul":             {runMatMul, 2},
	"Softmax":            {runSoftmax, 1},
	"Identity":           {runIdentity, 1},
	"Dropout":            {runIdentity, 1},
}

func runNode(node *checkpoints.NodeProto, lookup lookupFunc) (*tensor.Tensor, error) {
	op, ok := operators[node.OpType]
	if !ok {
		return nil, errors.Errorf("unsupported operator %s", node.OpType)
	}
	if node.Domain != "" && node.Domain != "ai.onnx" {
		return nil, errors.Errorf("unsupported operator domain %q", node.Domain)
	}

	inputs := make([]*tensor.Tensor, len(node.Input))
	for i, name := range node.Input {
		if name == "" {
			continue
		}
		t, ok := lookup(name)
		if !ok {
			return nil, errors.Errorf("input %q is not available", name)
		}
		inputs[i] = t
	}
	if len(inputs) < op.minInputs {
		return nil, errors.Errorf("%s needs %d inputs, got %d", node.OpType, op.minInputs, len(inputs))
	}
	for i := 0; i < op.minInputs; i++ {
		if inputs[i] == nil {
			return nil, errors.Errorf("%s input %d is missing", node.OpType, i)
		}
	}
	return op.run(node, inputs)
}

func optional(inputs []*tensor.Tensor, i int) *tensor.Tensor {
	if i < len(inputs) {
		return inputs[i]
	}
	return nil
}

// squarePair returns v[0] when v holds two equal values (or is empty).
func squarePair(name string, v []int64, def int) (int, error) {
	switch {
	case len(v) == 0:
		return def, nil
	case len(v) == 2 && v[0] == v[1]:
		return int(v[0]), nil
	default:
		return 0, errors.Errorf("%s %v: only square 2D values are supported", name, v)
	}
}

// symmetricPads accepts [p, p, p, p].
func symmetricPads(v []int64) (int, error) {
	if len(v) == 0 {
		return 0, nil
	}
	if len(v) != 4 || v[0] != v[1] || v[0] != v[2] || v[0] != v[3] {
		return 0, errors.Errorf("pads %v: only symmetric padding is supported", v)
	}
	return int(v[0]), nil
}

func runConv(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	if g := node.IntAttr("group", 1); g != 1 {
		return nil, errors.Errorf("group %d is not supported", g)
	}
	if d, err := squarePair("dilations", node.IntsAttr("dilations"), 1); err != nil || d != 1 {
		return nil, errors.New("dilated convolution is not supported")
	}
	stride, err := squarePair("strides", node.IntsAttr("strides"), 1)
	if err != nil {
		return nil, err
	}
	pad, err := symmetricPads(node.IntsAttr("pads"))
	if err != nil {
		return nil, err
	}
	return tensor.Conv2D(inputs[0], inputs[1], optional(inputs, 2), stride, pad)
}

func runRelu(_ *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.ReLU(inputs[0]), nil
}

func runMaxPool(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	if node.IntAttr("ceil_mode", 0) != 0 {
		return nil, errors.New("ceil_mode is not supported")
	}
	kernel, err := squarePair("kernel_shape", node.IntsAttr("kernel_shape"), 0)
	if err != nil {
		return nil, err
	}
	stride, err := squarePair("strides", node.IntsAttr("strides"), 1)
	if err != nil {
		return nil, err
	}
	pad, err := symmetricPads(node.IntsAttr("pads"))
	if err != nil {
		return nil, err
	}
	return tensor.MaxPool2D(inputs[0], kernel, stride, pad)
}

func runAveragePool(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	kernel := node.IntsAttr("kernel_shape")
	if len(kernel) != 2 {
		return nil, errors.Errorf("kernel_shape %v must be 2D", kernel)
	}
	strides := node.IntsAttr("strides")
	if len(strides) == 0 {
		strides = []int64{1, 1}
	}
	if len(strides) != 2 {
		return nil, errors.Errorf("strides %v must be 2D", strides)
	}
	if pad, err := symmetricPads(node.IntsAttr("pads")); err != nil || pad != 0 {
		return nil, errors.New("padded average pooling is not supported")
	}
	return tensor.AvgPool2D(inputs[0], int(kernel[0]), int(kernel[1]), int(strides[0]), int(strides[1]))
}

func runGlobalAveragePool(_ *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.AdaptiveAvgPool2D(inputs[0], 1, 1)
}

func runBatchNorm(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	eps := node.FloatAttr("epsilon", 1e-5)
	return tensor.BatchNorm2D(inputs[0], inputs[3].Data, inputs[4].Data, inputs[1].Data, inputs[2].Data, eps)
}

// runAdd supports equal shapes and a trailing-dimension bias broadcast.
func runAdd(_ *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	a, b := inputs[0], inputs[1]
	if tensor.SameShape(a.Shape, b.Shape) {
		return tensor.Add(a, b)
	}
	last := a.Shape[len(a.Shape)-1]
	if b.NumElems != last {
		return nil, errors.Errorf("cannot broadcast %v onto %v", b.Shape, a.Shape)
	}
	out := a.Clone()
	for i := range out.Data {
		out.Data[i] += b.Data[i%last]
	}
	return out, nil
}

func runFlatten(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	x := inputs[0]
	axis := int(node.IntAttr("axis", 1))
	if axis < 0 {
		axis += len(x.Shape)
	}
	if axis < 0 || axis > len(x.Shape) {
		return nil, errors.Errorf("flatten axis %d out of range for %v", axis, x.Shape)
	}
	outer := 1
	for _, d := range x.Shape[:axis] {
		outer *= d
	}
	return x.Reshape(outer, x.NumElems/outer)
}

func runGemm(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	if node.IntAttr("transA", 0) != 0 {
		return nil, errors.New("transA is not supported")
	}
	a, b, c := inputs[0], inputs[1], optional(inputs, 2)
	alpha := node.FloatAttr("alpha", 1)
	beta := node.FloatAttr("beta", 1)

	var out *tensor.Tensor
	var err error
	if node.IntAttr("transB", 0) != 0 {
		out, err = tensor.Linear(a, b, nil)
	} else {
		out, err = tensor.MatMul(a, b)
	}
	if err != nil {
		return nil, err
	}
	if alpha != 1 {
		for i := range out.Data {
			out.Data[i] *= alpha
		}
	}
	if c == nil || beta == 0 {
		return out, nil
	}

	m := out.Shape[1]
	switch c.NumElems {
	case m:
		for i := range out.Data {
			out.Data[i] += beta * c.Data[i%m]
		}
	case out.NumElems:
		for i := range out.Data {
			out.Data[i] += beta * c.Data[i]
		}
	default:
		return nil, errors.Errorf("cannot broadcast C %v onto %v", c.Shape, out.Shape)
	}
	return out, nil
}

func runMatMul(_ *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.MatMul(inputs[0], inputs[1])
}

func runSoftmax(node *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	x := inputs[0]
	axis := node.IntAttr("axis", -1)
	if len(x.Shape) != 2 || (axis != -1 && axis != 1) {
		return nil, errors.Errorf("softmax over axis %d of %v is not supported", axis, x.Shape)
	}
	return tensor.Softmax(x)
}

func runIdentity(_ *checkpoints.NodeProto, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	return inputs[0], nil
}
