// Package engine runs exported ONNX models on the CPU. It is used to verify
// exports and to classify images with a trained model.
package engine

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"
	pkgerrors "github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/tensor"
)

// InferenceEngine executes the graph of a decoded ONNX model.
type InferenceEngine struct {
	model        *checkpoints.ModelProto
	initializers map[string]*tensor.Tensor
	order        []*checkpoints.NodeProto
	inputName    string
	inputShape   []int
	outputName   string
}

// Load reads an ONNX file and prepares it for inference.
func Load(path string) (*InferenceEngine, error) {
	model, err := checkpoints.ReadModel(path)
	if err != nil {
		return nil, err
	}
	return NewInferenceEngine(model)
}

// NewInferenceEngine resolves initializers and orders the graph nodes so
// every node runs after the nodes producing its inputs.
func NewInferenceEngine(model *checkpoints.ModelProto) (*InferenceEngine, error) {
	g := model.Graph
	if g == nil {
		return nil, pkgerrors.New("model has no graph")
	}
	if len(g.Output) == 0 {
		return nil, pkgerrors.New("graph has no outputs")
	}

	ie := &InferenceEngine{
		model:        model,
		initializers: make(map[string]*tensor.Tensor, len(g.Initializer)),
		outputName:   g.Output[0].Name,
	}
	for _, ini := range g.Initializer {
		t, err := checkpoints.TensorFromProto(ini)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid initializer")
		}
		ie.initializers[ini.Name] = t
	}

	// The data input is the first graph input that is not an initializer.
	for _, in := range g.Input {
		if _, isWeight := ie.initializers[in.Name]; isWeight {
			continue
		}
		ie.inputName = in.Name
		ie.inputShape = in.Dims()
		break
	}
	if ie.inputName == "" {
		return nil, pkgerrors.New("graph has no data input")
	}

	order, err := ie.sortNodes()
	if err != nil {
		return nil, err
	}
	ie.order = order
	return ie, nil
}

// sortNodes orders nodes topologically. Ties keep file order.
func (ie *InferenceEngine) sortNodes() ([]*checkpoints.NodeProto, error) {
	nodes := ie.model.Graph.Node
	producer := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if len(n.Output) == 0 || n.Output[0] == "" {
			return nil, pkgerrors.Errorf("node %d (%s) has no output", i, n.OpType)
		}
		for _, out := range n.Output {
			if out == "" {
				continue
			}
			if prev, dup := producer[out]; dup {
				return nil, pkgerrors.Errorf("value %q is produced by both node %d and node %d", out, prev, i)
			}
			producer[out] = i
		}
	}

	g := graph.New(graph.IntHash, graph.Directed(), graph.PreventCycles())
	for i := range nodes {
		if err := g.AddVertex(i); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to build node graph")
		}
	}
	for i, n := range nodes {
		for _, in := range n.Input {
			if in == "" || in == ie.inputName {
				continue
			}
			if _, isWeight := ie.initializers[in]; isWeight {
				continue
			}
			src, ok := producer[in]
			if !ok {
				return nil, pkgerrors.Errorf("node %s (%s) reads %q, which nothing produces", n.Name, n.OpType, in)
			}
			if err := g.AddEdge(src, i); err != nil {
				if errors.Is(err, graph.ErrEdgeAlreadyExists) {
					continue
				}
				return nil, pkgerrors.Wrapf(err, "graph is not acyclic at node %s", n.Name)
			}
		}
	}

	sorted, err := graph.StableTopologicalSort(g, func(a, b int) bool { return a < b })
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to order graph nodes")
	}
	order := make([]*checkpoints.NodeProto, len(sorted))
	for i, idx := range sorted {
		order[i] = nodes[idx]
	}
	return order, nil
}

// Predict runs the model on input. Only the batch dimension may differ from
// the declared input shape.
func (ie *InferenceEngine) Predict(input *tensor.Tensor) (*tensor.Tensor, error) {
	if input == nil {
		return nil, pkgerrors.New("nil input")
	}
	if len(ie.inputShape) > 0 {
		if len(input.Shape) != len(ie.inputShape) {
			return nil, pkgerrors.Errorf("input shape %v does not match model input %v", input.Shape, ie.inputShape)
		}
		for i := 1; i < len(ie.inputShape); i++ {
			if ie.inputShape[i] > 0 && input.Shape[i] != ie.inputShape[i] {
				return nil, pkgerrors.Errorf("input shape %v does not match model input %v", input.Shape, ie.inputShape)
			}
		}
	}

	values := make(map[string]*tensor.Tensor, len(ie.order)+1)
	values[ie.inputName] = input
	lookup := func(name string) (*tensor.Tensor, bool) {
		if t, ok := values[name]; ok {
			return t, true
		}
		t, ok := ie.initializers[name]
		return t, ok
	}

	for _, node := range ie.order {
		out, err := runNode(node, lookup)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "node %s (%s)", node.Name, node.OpType)
		}
		values[node.Output[0]] = out
	}

	out, ok := values[ie.outputName]
	if !ok {
		return nil, pkgerrors.Errorf("graph never produced output %q", ie.outputName)
	}
	return out, nil
}

// Metadata returns the model's metadata_props.
func (ie *InferenceEngine) Metadata() map[string]string {
	return ie.model.Metadata()
}

// Classes returns the class names recorded at export time.
func (ie *InferenceEngine) Classes() ([]string, error) {
	return checkpoints.ClassesFromMetadata(ie.Metadata())
}

// InputShape returns the declared input shape.
func (ie *InferenceEngine) InputShape() []int {
	return append([]int(nil), ie.inputShape...)
}

// OpTypes lists the distinct operators in the graph, sorted.
func (ie *InferenceEngine) OpTypes() []string {
	seen := make(map[string]bool)
	var ops []string
	for _, n := range ie.order {
		if !seen[n.OpType] {
			seen[n.OpType] = true
			ops = append(ops, n.OpType)
		}
	}
	sort.Strings(ops)
	return ops
}
