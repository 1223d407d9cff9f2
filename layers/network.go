package layers

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/tensor"
)

// Mode selects the behaviour of mode-dependent layers (Dropout, BatchNorm).
type Mode int

const (
	ModeTrain Mode = iota
	ModeEval
)

func (m Mode) String() string {
	switch m {
	case ModeTrain:
		return "train"
	case ModeEval:
		return "eval"
	default:
		return "unknown"
	}
}

// Parameter is a named learnable tensor. Grad is allocated lazily by the
// first backward pass that reaches the parameter, and only while Trainable.
type Parameter struct {
	Name      string
	Shape     []int
	Data      []float32
	Grad      []float32
	Trainable bool
}

// NumElements returns the number of scalars in the parameter.
func (p *Parameter) NumElements() int {
	return len(p.Data)
}

func (p *Parameter) accumulate() []float32 {
	if p.Grad == nil {
		p.Grad = make([]float32, len(p.Data))
	}
	return p.Grad
}

// Buffer is named non-learnable state, such as BatchNorm running statistics.
type Buffer struct {
	Name  string
	Shape []int
	Data  []float32
}

// forwardContext carries per-call state into modules.
type forwardContext struct {
	mode   Mode
	rng    *rand.Rand
	record bool // keep what Backward needs
}

// module is the runtime counterpart of a compiled LayerSpec.
type module interface {
	forward(x *tensor.Tensor, ctx forwardContext) (*tensor.Tensor, error)
	backward(gradOut *tensor.Tensor, needInputGrad bool) (*tensor.Tensor, error)
	parameters() []*Parameter
	buffers() []*Buffer
}

// Network executes a compiled ModelSpec on the CPU.
type Network struct {
	spec    *ModelSpec
	modules []module
	mode    Mode
	rng     *rand.Rand
}

// NewNetwork allocates and initializes every layer of a compiled model.
// rng drives weight initialization and dropout masks.
func NewNetwork(spec *ModelSpec, rng *rand.Rand) (*Network, error) {
	if spec == nil || !spec.Compiled {
		return nil, errors.New("model spec must be compiled before building a network")
	}
	if rng == nil {
		return nil, errors.New("network requires a random source")
	}

	net := &Network{
		spec:    spec,
		modules: make([]module, len(spec.Layers)),
		mode:    ModeTrain,
		rng:     rng,
	}
	for i := range spec.Layers {
		m, err := newModule(&spec.Layers[i], rng)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build layer %s", spec.Layers[i].Name)
		}
		net.modules[i] = m
	}
	return net, nil
}

func newModule(spec *LayerSpec, rng *rand.Rand) (module, error) {
	switch spec.Type {
	case Dense:
		return newDenseModule(spec, rng), nil
	case Conv2D:
		return newConvModule(spec, rng), nil
	case BatchNorm:
		return newBatchNormModule(spec), nil
	case ReLU:
		return &reluModule{}, nil
	case MaxPool2D:
		return &maxPoolModule{
			kernel:  spec.IntParam("kernel_size", 0),
			stride:  spec.IntParam("stride", 0),
			padding: spec.IntParam("padding", 0),
		}, nil
	case AdaptiveAvgPool2D:
		return &adaptivePoolModule{
			outH: spec.IntParam("output_height", 0),
			outW: spec.IntParam("output_width", 0),
		}, nil
	case Dropout:
		return &dropoutModule{rate: spec.FloatParam("rate", 0.5)}, nil
	case Flatten:
		return &flattenModule{}, nil
	case BasicBlock:
		return newBlockModule(spec, rng)
	default:
		return nil, errors.Errorf("unsupported layer type: %s", spec.Type)
	}
}

// Spec returns the compiled model the network executes.
func (n *Network) Spec() *ModelSpec {
	return n.spec
}

// SetMode switches every layer between training and inference behaviour.
func (n *Network) SetMode(mode Mode) {
	n.mode = mode
}

// Mode returns the current mode.
func (n *Network) Mode() Mode {
	return n.mode
}

// Forward runs the network on x, which must match the compiled input shape
// apart from the batch dimension. In training mode the layers from the first
// trainable one onwards keep the activations Backward needs.
func (n *Network) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := n.validateInput(x); err != nil {
		return nil, err
	}

	start := n.firstTrainable()
	out := x
	for i, m := range n.modules {
		ctx := forwardContext{
			mode:   n.mode,
			rng:    n.rng,
			record: n.mode == ModeTrain && start >= 0 && i >= start,
		}
		next, err := m.forward(out, ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "forward through layer %s", n.spec.Layers[i].Name)
		}
		out = next
	}
	return out, nil
}

// Backward propagates gradOut (the loss gradient w.r.t. the network output)
// back to the earliest trainable parameter, accumulating into Parameter.Grad.
// Layers before that point are never differentiated.
func (n *Network) Backward(gradOut *tensor.Tensor) error {
	start := n.firstTrainable()
	if start < 0 {
		return errors.New("network has no trainable parameters")
	}
	if n.mode != ModeTrain {
		return errors.New("backward requires training mode")
	}

	grad := gradOut
	for i := len(n.modules) - 1; i >= start; i-- {
		g, err := n.modules[i].backward(grad, i > start)
		if err != nil {
			return errors.Wrapf(err, "backward through layer %s", n.spec.Layers[i].Name)
		}
		grad = g
	}
	return nil
}

// firstTrainable returns the index of the first layer holding a trainable
// parameter, or -1.
func (n *Network) firstTrainable() int {
	for i, m := range n.modules {
		for _, p := range m.parameters() {
			if p.Trainable {
				return i
			}
		}
	}
	return -1
}

func (n *Network) validateInput(x *tensor.Tensor) error {
	if x == nil {
		return errors.New("nil input")
	}
	want := n.spec.InputShape
	if len(x.Shape) != len(want) {
		return errors.Errorf("input shape %v does not match model input %v", x.Shape, want)
	}
	if x.Shape[0] <= 0 {
		return errors.New("empty batch")
	}
	for i := 1; i < len(want); i++ {
		if x.Shape[i] != want[i] {
			return errors.Errorf("input shape %v does not match model input %v", x.Shape, want)
		}
	}
	return nil
}

// Parameters returns every parameter in layer order.
func (n *Network) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range n.modules {
		params = append(params, m.parameters()...)
	}
	return params
}

// TrainableParameters returns the parameters the optimizer may update.
func (n *Network) TrainableParameters() []*Parameter {
	var params []*Parameter
	for _, p := range n.Parameters() {
		if p.Trainable {
			params = append(params, p)
		}
	}
	return params
}

// LayerParameters returns the parameters of layer i.
func (n *Network) LayerParameters(i int) []*Parameter {
	return n.modules[i].parameters()
}

// NumParameters returns the total number of scalar parameters.
func (n *Network) NumParameters() int64 {
	var total int64
	for _, p := range n.Parameters() {
		total += int64(p.NumElements())
	}
	return total
}

// NumTrainable returns the number of scalar trainable parameters.
func (n *Network) NumTrainable() int64 {
	var total int64
	for _, p := range n.TrainableParameters() {
		total += int64(p.NumElements())
	}
	return total
}

// Buffers returns every buffer in layer order.
func (n *Network) Buffers() []*Buffer {
	var bufs []*Buffer
	for _, m := range n.modules {
		bufs = append(bufs, m.buffers()...)
	}
	return bufs
}

// Freeze marks every parameter as not trainable and drops its gradient.
func (n *Network) Freeze() {
	for _, p := range n.Parameters() {
		p.Trainable = false
		p.Grad = nil
	}
}

// ZeroGrad clears accumulated gradients.
func (n *Network) ZeroGrad() {
	for _, p := range n.Parameters() {
		for i := range p.Grad {
			p.Grad[i] = 0
		}
	}
}

// ParameterByName looks a parameter up by its fully qualified name,
// e.g. "features.0.weight".
func (n *Network) ParameterByName(name string) (*Parameter, bool) {
	for _, p := range n.Parameters() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// BufferByName looks a buffer up by name, e.g. "bn1.running_mean".
func (n *Network) BufferByName(name string) (*Buffer, bool) {
	for _, b := range n.Buffers() {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// ReplaceLayer swaps the layer called name for a freshly initialized layer
// built from replacement. Its parameters are trainable. Every other layer
// keeps its parameters, so the replacement must not change their shapes.
func (n *Network) ReplaceLayer(name string, replacement LayerSpec) error {
	newSpec, err := n.spec.WithLayer(name, replacement)
	if err != nil {
		return errors.Wrapf(err, "failed to replace layer %s", name)
	}

	idx := -1
	for i, layer := range newSpec.Layers {
		if layer.Name == name {
			idx = i
			continue
		}
		if !sameTensorInfo(layer.Params, n.spec.Layers[i].Params) {
			return errors.Errorf("replacing %s changes the parameters of layer %s", name, layer.Name)
		}
	}

	m, err := newModule(&newSpec.Layers[idx], n.rng)
	if err != nil {
		return errors.Wrapf(err, "failed to build replacement layer %s", name)
	}
	n.modules[idx] = m
	n.spec = newSpec
	return nil
}

// StateDict returns every parameter and buffer keyed by name. The tensors
// share memory with the network.
func (n *Network) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	for _, p := range n.Parameters() {
		state[p.Name] = tensor.MustNew(p.Shape, p.Data)
	}
	for _, b := range n.Buffers() {
		state[b.Name] = tensor.MustNew(b.Shape, b.Data)
	}
	return state
}

// LoadState copies tensors into the parameters and buffers with matching
// names. Shapes must match exactly. When strict is set, every parameter and
// buffer must be present and no unknown names are allowed.
func (n *Network) LoadState(state map[string]*tensor.Tensor, strict bool) error {
	used := make(map[string]bool, len(state))
	load := func(name string, shape []int, dst []float32) error {
		src, ok := state[name]
		if !ok {
			if strict {
				return errors.Errorf("missing tensor %q", name)
			}
			return nil
		}
		if !tensor.SameShape(src.Shape, shape) {
			return errors.Errorf("tensor %q has shape %v, model expects %v", name, src.Shape, shape)
		}
		copy(dst, src.Data)
		used[name] = true
		return nil
	}

	for _, p := range n.Parameters() {
		if err := load(p.Name, p.Shape, p.Data); err != nil {
			return err
		}
	}
	for _, b := range n.Buffers() {
		if err := load(b.Name, b.Shape, b.Data); err != nil {
			return err
		}
	}
	if strict {
		for name := range state {
			if !used[name] {
				return errors.Errorf("unexpected tensor %q", name)
			}
		}
	}
	return nil
}

func sameTensorInfo(a, b []TensorInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !tensor.SameShape(a[i].Shape, b[i].Shape) {
			return false
		}
	}
	return true
}
