package layers

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/tensor"
)

// BlockParts are the compiled sub-layers of a BasicBlock, named
// <block>.conv1, <block>.bn1, <block>.conv2, <block>.bn2 and, when the block
// changes resolution or width, <block>.downsample.0 / <block>.downsample.1.
type BlockParts struct {
	Conv1, BN1, Conv2, BN2 LayerSpec
	Downsample             []LayerSpec
}

// BlockParts expands a compiled BasicBlock layer into its sub-layers.
func (layer *LayerSpec) BlockParts() (*BlockParts, error) {
	if layer.Type != BasicBlock {
		return nil, errors.Errorf("layer %s is a %s, not a BasicBlock", layer.Name, layer.Type)
	}
	if layer.InputShape == nil {
		return nil, errors.Errorf("layer %s is not compiled", layer.Name)
	}
	return expandBasicBlock(layer, layer.InputShape)
}

func expandBasicBlock(layer *LayerSpec, inputShape []int) (*BlockParts, error) {
	if len(inputShape) != 4 {
		return nil, errors.Errorf("basic block requires 4D input, got %v", inputShape)
	}
	outC := getIntParam(layer.Parameters, "output_channels", 0)
	stride := getIntParam(layer.Parameters, "stride", 1)
	if outC <= 0 || stride <= 0 {
		return nil, errors.Errorf("invalid basic block parameters %v", layer.Parameters)
	}
	scheme := getStringParam(layer.Parameters, "init", InitKaimingFanOut)

	b := NewModelBuilder(inputShape).
		AddConv2D(outC, 3, stride, 1, false, scheme, layer.Name+".conv1").
		AddBatchNorm(1e-5, 0.1, layer.Name+".bn1").
		AddConv2D(outC, 3, 1, 1, false, scheme, layer.Name+".conv2").
		AddBatchNorm(1e-5, 0.1, layer.Name+".bn2")
	main, err := b.Compile()
	if err != nil {
		return nil, err
	}
	parts := &BlockParts{
		Conv1: main.Layers[0],
		BN1:   main.Layers[1],
		Conv2: main.Layers[2],
		BN2:   main.Layers[3],
	}

	if stride != 1 || inputShape[1] != outC {
		down, err := NewModelBuilder(inputShape).
			AddConv2D(outC, 1, stride, 0, false, scheme, layer.Name+".downsample.0").
			AddBatchNorm(1e-5, 0.1, layer.Name+".downsample.1").
			Compile()
		if err != nil {
			return nil, err
		}
		if !tensor.SameShape(down.OutputShape, main.OutputShape) {
			return nil, errors.Errorf("downsample output %v does not match block output %v", down.OutputShape, main.OutputShape)
		}
		parts.Downsample = down.Layers
	}
	return parts, nil
}

func (p *BlockParts) all() []*LayerSpec {
	list := []*LayerSpec{&p.Conv1, &p.BN1, &p.Conv2, &p.BN2}
	for i := range p.Downsample {
		list = append(list, &p.Downsample[i])
	}
	return list
}

func computeBasicBlockInfo(layer *LayerSpec, inputShape []int) ([]int, error) {
	parts, err := expandBasicBlock(layer, inputShape)
	if err != nil {
		return nil, err
	}
	for _, sub := range parts.all() {
		layer.Params = append(layer.Params, sub.Params...)
		layer.Buffers = append(layer.Buffers, sub.Buffers...)
		layer.ParameterCount += sub.ParameterCount
	}
	return copyInts(parts.BN2.OutputShape), nil
}

// blockModule runs relu(bn2(conv2(relu(bn1(conv1(x))))) + shortcut(x)).
type blockModule struct {
	conv1, conv2 *convModule
	bn1, bn2     *batchNormModule
	downConv     *convModule
	downBN       *batchNormModule
}

func newBlockModule(spec *LayerSpec, rng *rand.Rand) (*blockModule, error) {
	parts, err := spec.BlockParts()
	if err != nil {
		return nil, err
	}
	m := &blockModule{
		conv1: newConvModule(&parts.Conv1, rng),
		bn1:   newBatchNormModule(&parts.BN1),
		conv2: newConvModule(&parts.Conv2, rng),
		bn2:   newBatchNormModule(&parts.BN2),
	}
	if len(parts.Downsample) == 2 {
		m.downConv = newConvModule(&parts.Downsample[0], rng)
		m.downBN = newBatchNormModule(&parts.Downsample[1])
	}
	return m, nil
}

func (m *blockModule) forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error) {
	out, err := m.conv1.forward(x, ctx)
	if err != nil {
		return nil, err
	}
	if out, err = m.bn1.forward(out, ctx); err != nil {
		return nil, err
	}
	tensor.ReLUInPlace(out)
	if out, err = m.conv2.forward(out, ctx); err != nil {
		return nil, err
	}
	if out, err = m.bn2.forward(out, ctx); err != nil {
		return nil, err
	}

	identity := x
	if m.downConv != nil {
		if identity, err = m.downConv.forward(x, ctx); err != nil {
			return nil, err
		}
		if identity, err = m.downBN.forward(identity, ctx); err != nil {
			return nil, err
		}
	}
	sum, err := tensor.Add(out, identity)
	if err != nil {
		return nil, err
	}
	tensor.ReLUInPlace(sum)
	return sum, nil
}

func (m *blockModule) backward(*tensor.Tensor, bool) (*tensor.Tensor, error) {
	return nil, unsupportedBackward("BasicBlock")
}

func (m *blockModule) parameters() []*Parameter {
	params := append(m.conv1.parameters(), m.bn1.parameters()...)
	params = append(params, m.conv2.parameters()...)
	params = append(params, m.bn2.parameters()...)
	if m.downConv != nil {
		params = append(params, m.downConv.parameters()...)
		params = append(params, m.downBN.parameters()...)
	}
	return params
}

func (m *blockModule) buffers() []*Buffer {
	bufs := append(m.bn1.buffers(), m.bn2.buffers()...)
	if m.downBN != nil {
		bufs = append(bufs, m.downBN.buffers()...)
	}
	return bufs
}
