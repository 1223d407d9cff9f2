// Package tensor implements the dense float32 tensors and CPU kernels used by
// the layers, the trainer and the ONNX inference engine.
//
// Tensors are row-major. Image tensors use the NCHW layout.
package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tensor is a dense, row-major float32 tensor.
type Tensor struct {
	Shape    []int
	Strides  []int
	Data     []float32
	NumElems int
}

// New wraps data in a tensor of the given shape. A nil data slice allocates
// a zero-filled buffer.
func New(shape []int, data []float32) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	numElems := calculateNumElements(shape)
	if data == nil {
		data = make([]float32, numElems)
	} else if len(data) != numElems {
		return nil, errors.Errorf("data length %d does not match shape %v (%d elements)", len(data), shape, numElems)
	}

	return &Tensor{
		Shape:    copyShape(shape),
		Strides:  calculateStrides(shape),
		Data:     data,
		NumElems: numElems,
	}, nil
}

// Zeros allocates a zero-filled tensor.
func Zeros(shape ...int) (*Tensor, error) {
	return New(shape, nil)
}

// MustNew is New for shapes known to be valid; it panics on error.
func MustNew(shape []int, data []float32) *Tensor {
	t, err := New(shape, data)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, elements=%d)", t.Shape, t.NumElems)
}

// Dims returns the number of dimensions.
func (t *Tensor) Dims() int {
	return len(t.Shape)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.Data))
	copy(data, t.Data)
	return &Tensor{
		Shape:    copyShape(t.Shape),
		Strides:  copyShape(t.Strides),
		Data:     data,
		NumElems: t.NumElems,
	}
}

// Reshape returns a tensor sharing t's data with a new shape.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	if n := calculateNumElements(shape); n != t.NumElems {
		return nil, errors.Errorf("cannot reshape %v (%d elements) to %v (%d elements)", t.Shape, t.NumElems, shape, n)
	}
	return &Tensor{
		Shape:    copyShape(shape),
		Strides:  calculateStrides(shape),
		Data:     t.Data,
		NumElems: t.NumElems,
	}, nil
}

// Flatten collapses every dimension after the first, matching
// torch.flatten(x, 1).
func (t *Tensor) Flatten() (*Tensor, error) {
	if len(t.Shape) < 2 {
		return nil, errors.Errorf("flatten needs at least 2 dimensions, got %v", t.Shape)
	}
	return t.Reshape(t.Shape[0], t.NumElems/t.Shape[0])
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func calculateStrides(shape []int) []int {
	if len(shape) == 0 {
		return []int{}
	}

	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

func calculateNumElements(shape []int) int {
	if len(shape) == 0 {
		return 0
	}

	elements := 1
	for _, dim := range shape {
		elements *= dim
	}
	return elements
}

func validateShape(shape []int) error {
	if len(shape) == 0 {
		return errors.New("invalid shape: no dimensions")
	}
	for i, dim := range shape {
		if dim <= 0 {
			return errors.Errorf("invalid shape %v: dimension %d has size %d, must be positive", shape, i, dim)
		}
	}
	return nil
}

func copyShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}

func expectDims(name string, t *Tensor, dims int) error {
	if t == nil {
		return errors.Errorf("%s: nil tensor", name)
	}
	if len(t.Shape) != dims {
		return errors.Errorf("%s: expected %dD tensor, got shape %v", name, dims, t.Shape)
	}
	return nil
}
