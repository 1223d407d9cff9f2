package layers

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/parallel"
	"github.com/tsawler/go-chessnet/tensor"
)

func newParameter(info TensorInfo) *Parameter {
	return &Parameter{
		Name:      info.Name,
		Shape:     copyInts(info.Shape),
		Data:      make([]float32, numElements(info.Shape)),
		Trainable: true,
	}
}

// initWeights applies the layer's "init" scheme to a weight and optional bias.
func initWeights(spec *LayerSpec, weight, bias *Parameter, fanIn, fanOut int, rng *rand.Rand) {
	switch getStringParam(spec.Parameters, "init", InitDefault) {
	case InitKaimingFanOut:
		tensor.FillNormal(weight.Data, tensor.KaimingNormalStd(fanOut), rng)
	case InitNormal:
		tensor.FillNormal(weight.Data, float64(spec.FloatParam("init_std", 0.01)), rng)
	default:
		bound := tensor.DefaultUniformBound(fanIn)
		tensor.FillUniform(weight.Data, bound, rng)
		if bias != nil {
			tensor.FillUniform(bias.Data, bound, rng)
		}
	}
}

func unsupportedBackward(kind string) error {
	return errors.Errorf("backward is not implemented for %s layers; only the trailing fully connected layers can be trained", kind)
}

// denseModule is a fully connected layer, weight [out, in].
type denseModule struct {
	weight *Parameter
	bias   *Parameter
	input  *tensor.Tensor
}

func newDenseModule(spec *LayerSpec, rng *rand.Rand) *denseModule {
	m := &denseModule{weight: newParameter(spec.Params[0])}
	if len(spec.Params) > 1 {
		m.bias = newParameter(spec.Params[1])
	}
	in := m.weight.Shape[1]
	initWeights(spec, m.weight, m.bias, in, m.weight.Shape[0], rng)
	return m
}

func (m *denseModule) forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error) {
	w := tensor.MustNew(m.weight.Shape, m.weight.Data)
	var b *tensor.Tensor
	if m.bias != nil {
		b = tensor.MustNew(m.bias.Shape, m.bias.Data)
	}
	out, err := tensor.Linear(x, w, b)
	if err != nil {
		return nil, err
	}
	if ctx.record {
		m.input = x
	} else {
		m.input = nil
	}
	return out, nil
}

func (m *denseModule) backward(gradOut *tensor.Tensor, needInputGrad bool) (*tensor.Tensor, error) {
	if m.input == nil {
		return nil, errors.New("dense backward called without a recorded forward pass")
	}
	x := m.input
	n, in := x.Shape[0], x.Shape[1]
	outF := m.weight.Shape[0]
	if !tensor.SameShape(gradOut.Shape, []int{n, outF}) {
		return nil, errors.Errorf("dense backward: gradient shape %v, want [%d %d]", gradOut.Shape, n, outF)
	}
	g := gradOut.Data

	if m.weight.Trainable {
		gw := m.weight.accumulate()
		parallel.Range(outF, 0, func(start, end int) {
			for o := start; o < end; o++ {
				row := gw[o*in : (o+1)*in]
				for i := 0; i < n; i++ {
					gv := g[i*outF+o]
					if gv == 0 {
						continue
					}
					for j, v := range x.Data[i*in : (i+1)*in] {
						row[j] += gv * v
					}
				}
			}
		})
	}
	if m.bias != nil && m.bias.Trainable {
		gb := m.bias.accumulate()
		for i := 0; i < n; i++ {
			for o := 0; o < outF; o++ {
				gb[o] += g[i*outF+o]
			}
		}
	}
	if !needInputGrad {
		return nil, nil
	}

	gradIn, err := tensor.New([]int{n, in}, nil)
	if err != nil {
		return nil, err
	}
	parallel.Range(n, 0, func(start, end int) {
		for i := start; i < end; i++ {
			dst := gradIn.Data[i*in : (i+1)*in]
			for o := 0; o < outF; o++ {
				gv := g[i*outF+o]
				if gv == 0 {
					continue
				}
				for j, w := range m.weight.Data[o*in : (o+1)*in] {
					dst[j] += gv * w
				}
			}
		}
	})
	return gradIn, nil
}

func (m *denseModule) parameters() []*Parameter {
	if m.bias == nil {
		return []*Parameter{m.weight}
	}
	return []*Parameter{m.weight, m.bias}
}

func (m *denseModule) buffers() []*Buffer { return nil }

// convModule is a 2D convolution, weight [out, in, k, k].
type convModule struct {
	weight  *Parameter
	bias    *Parameter
	stride  int
	padding int
}

func newConvModule(spec *LayerSpec, rng *rand.Rand) *convModule {
	m := &convModule{
		weight:  newParameter(spec.Params[0]),
		stride:  spec.IntParam("stride", 1),
		padding: spec.IntParam("padding", 0),
	}
	if len(spec.Params) > 1 {
		m.bias = newParameter(spec.Params[1])
	}
	s := m.weight.Shape
	area := s[2] * s[3]
	initWeights(spec, m.weight, m.bias, s[1]*area, s[0]*area, rng)
	return m
}

func (m *convModule) forward(x *tensor.Tensor, _ forwardContext) (*tensor.Tensor, error) {
	w := tensor.MustNew(m.weight.Shape, m.weight.Data)
	var b *tensor.Tensor
	if m.bias != nil {
		b = tensor.MustNew(m.bias.Shape, m.bias.Data)
	}
	return tensor.Conv2D(x, w, b, m.stride, m.padding)
}

func (m *convModule) backward(*tensor.Tensor, bool) (*tensor.Tensor, error) {
	return nil, unsupportedBackward("Conv2D")
}

func (m *convModule) parameters() []*Parameter {
	if m.bias == nil {
		return []*Parameter{m.weight}
	}
	return []*Parameter{m.weight, m.bias}
}

func (m *convModule) buffers() []*Buffer { return nil }

// batchNormModule normalizes over channels with learnable affine weights.
type batchNormModule struct {
	weight      *Parameter
	bias        *Parameter
	runningMean *Buffer
	runningVar  *Buffer
	eps         float32
	momentum    float32
}

func newBatchNormModule(spec *LayerSpec) *batchNormModule {
	m := &batchNormModule{
		weight:   newParameter(spec.Params[0]),
		bias:     newParameter(spec.Params[1]),
		eps:      spec.FloatParam("eps", 1e-5),
		momentum: spec.FloatParam("momentum", 0.1),
	}
	m.runningMean = &Buffer{Name: spec.Buffers[0].Name, Shape: copyInts(spec.Buffers[0].Shape), Data: make([]float32, spec.Buffers[0].Shape[0])}
	m.runningVar = &Buffer{Name: spec.Buffers[1].Name, Shape: copyInts(spec.Buffers[1].Shape), Data: make([]float32, spec.Buffers[1].Shape[0])}
	for i := range m.weight.Data {
		m.weight.Data[i] = 1
		m.runningVar.Data[i] = 1
	}
	return m
}

func (m *batchNormModule) forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error) {
	if ctx.mode == ModeEval {
		return tensor.BatchNorm2D(x, m.runningMean.Data, m.runningVar.Data, m.weight.Data, m.bias.Data, m.eps)
	}

	mean, variance, err := tensor.ChannelStats(x)
	if err != nil {
		return nil, err
	}
	count := x.Shape[0] * x.Shape[2] * x.Shape[3]
	correction := float32(1)
	if count > 1 {
		correction = float32(count) / float32(count-1)
	}
	for c := range mean {
		m.runningMean.Data[c] = (1-m.momentum)*m.runningMean.Data[c] + m.momentum*mean[c]
		m.runningVar.Data[c] = (1-m.momentum)*m.runningVar.Data[c] + m.momentum*variance[c]*correction
	}
	return tensor.BatchNorm2D(x, mean, variance, m.weight.Data, m.bias.Data, m.eps)
}

func (m *batchNormModule) backward(*tensor.Tensor, bool) (*tensor.Tensor, error) {
	return nil, unsupportedBackward("BatchNorm")
}

func (m *batchNormModule) parameters() []*Parameter {
	return []*Parameter{m.weight, m.bias}
}

func (m *batchNormModule) buffers() []*Buffer {
	return []*Buffer{m.runningMean, m.runningVar}
}

type reluModule struct {
	output *tensor.Tensor
}

func (m *reluModule) forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error) {
	out := tensor.ReLU(x)
	if ctx.record {
		m.output = out
	} else {
		m.output = nil
	}
	return out, nil
}

func (m *reluModule) backward(gradOut *tensor.Tensor, needInputGrad bool) (*tensor.Tensor, error) {
	if !needInputGrad {
		return nil, nil
	}
	if m.output == nil {
		return nil, errors.New("relu backward called without a recorded forward pass")
	}
	if !tensor.SameShape(gradOut.Shape, m.output.Shape) {
		return nil, errors.Errorf("relu backward: gradient shape %v, want %v", gradOut.Shape, m.output.Shape)
	}
	grad := gradOut.Clone()
	for i, v := range m.output.Data {
		if v <= 0 {
			grad.Data[i] = 0
		}
	}
	return grad, nil
}

func (m *reluModule) parameters() []*Parameter { return nil }
func (m *reluModule) buffers() []*Buffer       { return nil }

type maxPoolModule struct {
	kernel, stride, padding int
}

func (m *maxPoolModule) forward(x *tensor.Tensor, _ forwardContext) (*tensor.Tensor, error) {
	return tensor.MaxPool2D(x, m.kernel, m.stride, m.padding)
}

func (m *maxPoolModule) backward(*tensor.Tensor, bool) (*tensor.Tensor, error) {
	return nil, unsupportedBackward("MaxPool2D")
}

func (m *maxPoolModule) parameters() []*Parameter { return nil }
func (m *maxPoolModule) buffers() []*Buffer       { return nil }

type adaptivePoolModule struct {
	outH, outW int
}

func (m *adaptivePoolModule) forward(x *tensor.Tensor, _ forwardContext) (*tensor.Tensor, error) {
	return tensor.AdaptiveAvgPool2D(x, m.outH, m.outW)
}

func (m *adaptivePoolModule) backward(*tensor.Tensor, bool) (*tensor.Tensor, error) {
	return nil, unsupportedBackward("AdaptiveAvgPool2D")
}

func (m *adaptivePoolModule) parameters() []*Parameter { return nil }
func (m *adaptivePoolModule) buffers() []*Buffer       { return nil }

// dropoutModule zeroes elements with probability rate in training mode and
// scales the survivors by 1/(1-rate). It is the identity in eval mode.
type dropoutModule struct {
	rate float32
	mask []float32
}

func (m *dropoutModule) forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error) {
	m.mask = nil
	if ctx.mode == ModeEval || m.rate == 0 {
		return x, nil
	}

	out := x.Clone()
	mask := make([]float32, len(out.Data))
	scale := float32(0)
	if m.rate < 1 {
		scale = 1 / (1 - m.rate)
	}
	for i := range out.Data {
		if ctx.rng.Float32() >= m.rate {
			mask[i] = scale
		}
		out.Data[i] *= mask[i]
	}
	if ctx.record {
		m.mask = mask
	}
	return out, nil
}

func (m *dropoutModule) backward(gradOut *tensor.Tensor, needInputGrad bool) (*tensor.Tensor, error) {
	if !needInputGrad {
		return nil, nil
	}
	grad := gradOut.Clone()
	if m.mask == nil {
		// rate 0: forward was the identity
		if m.rate == 0 {
			return grad, nil
		}
		return nil, errors.New("dropout backward called without a recorded forward pass")
	}
	if len(m.mask) != len(grad.Data) {
		return nil, errors.Errorf("dropout backward: gradient has %d elements, mask has %d", len(grad.Data), len(m.mask))
	}
	for i := range grad.Data {
		grad.Data[i] *= m.mask[i]
	}
	return grad, nil
}

func (m *dropoutModule) parameters() []*Parameter { return nil }
func (m *dropoutModule) buffers() []*Buffer       { return nil }

type flattenModule struct {
	inputShape []int
}

func (m *flattenModule) forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error) {
	if ctx.record {
		m.inputShape = copyInts(x.Shape)
	}
	return x.Flatten()
}

func (m *flattenModule) backward(gradOut *tensor.Tensor, needInputGrad bool) (*tensor.Tensor, error) {
	if !needInputGrad {
		return nil, nil
	}
	if m.inputShape == nil {
		return nil, errors.New("flatten backward called without a recorded forward pass")
	}
	return gradOut.Reshape(m.inputShape...)
}

func (m *flattenModule) parameters() []*Parameter { return nil }
func (m *flattenModule) buffers() []*Buffer       { return nil }
