package training

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/tensor"
)

// ConfusionMatrix counts predictions per true class.
type ConfusionMatrix struct {
	NumClasses   int
	Matrix       [][]int // [true_class][predicted_class]
	TotalSamples int
}

// NewConfusionMatrix creates a new confusion matrix
func NewConfusionMatrix(numClasses int) *ConfusionMatrix {
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}
	return &ConfusionMatrix{
		NumClasses: numClasses,
		Matrix:     matrix,
	}
}

// Reset clears the confusion matrix
func (cm *ConfusionMatrix) Reset() {
	for i := range cm.Matrix {
		for j := range cm.Matrix[i] {
			cm.Matrix[i][j] = 0
		}
	}
	cm.TotalSamples = 0
}

// UpdateFromLogits records the argmax prediction of every row of a
// [batch, classes] score tensor.
func (cm *ConfusionMatrix) UpdateFromLogits(logits *tensor.Tensor, trueLabels []int) error {
	if len(logits.Shape) != 2 || logits.Shape[1] != cm.NumClasses {
		return errors.Errorf("expected [batch, %d] scores, got %v", cm.NumClasses, logits.Shape)
	}
	if len(trueLabels) != logits.Shape[0] {
		return errors.Errorf("labels length mismatch: expected %d, got %d", logits.Shape[0], len(trueLabels))
	}

	predictions, err := tensor.ArgMax(logits)
	if err != nil {
		return err
	}
	for i, trueClass := range trueLabels {
		if trueClass < 0 || trueClass >= cm.NumClasses {
			return errors.Errorf("label %d out of range for %d classes", trueClass, cm.NumClasses)
		}
		cm.Matrix[trueClass][predictions[i]]++
		cm.TotalSamples++
	}
	return nil
}

// Correct returns the number of samples on the diagonal.
func (cm *ConfusionMatrix) Correct() int {
	correct := 0
	for i := 0; i < cm.NumClasses; i++ {
		correct += cm.Matrix[i][i]
	}
	return correct
}

// GetAccuracy returns the overall accuracy in [0, 1].
func (cm *ConfusionMatrix) GetAccuracy() float64 {
	if cm.TotalSamples == 0 {
		return 0
	}
	return float64(cm.Correct()) / float64(cm.TotalSamples)
}

// ClassSupport returns how many samples of class c were seen.
func (cm *ConfusionMatrix) ClassSupport(c int) int {
	n := 0
	for _, v := range cm.Matrix[c] {
		n += v
	}
	return n
}

// Recall returns the fraction of class c samples predicted as c.
func (cm *ConfusionMatrix) Recall(c int) float64 {
	support := cm.ClassSupport(c)
	if support == 0 {
		return 0
	}
	return float64(cm.Matrix[c][c]) / float64(support)
}

// Precision returns the fraction of class c predictions that were correct.
func (cm *ConfusionMatrix) Precision(c int) float64 {
	predicted := 0
	for i := 0; i < cm.NumClasses; i++ {
		predicted += cm.Matrix[i][c]
	}
	if predicted == 0 {
		return 0
	}
	return float64(cm.Matrix[c][c]) / float64(predicted)
}

// MacroF1 averages the per-class F1 scores of classes that have samples.
func (cm *ConfusionMatrix) MacroF1() float64 {
	var sum float64
	n := 0
	for c := 0; c < cm.NumClasses; c++ {
		if cm.ClassSupport(c) == 0 {
			continue
		}
		p, r := cm.Precision(c), cm.Recall(c)
		if p+r > 0 {
			sum += 2 * p * r / (p + r)
		}
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// EvalResult summarizes one pass over a test set.
type EvalResult struct {
	Total     int
	Correct   int
	Confusion *ConfusionMatrix
}

// Accuracy returns the percentage of correct predictions in [0, 100].
func (r *EvalResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return 100 * float64(r.Correct) / float64(r.Total)
}

// Report writes overall and per-class accuracy.
func (r *EvalResult) Report(w io.Writer, classes []string) {
	fmt.Fprintf(w, "Accuracy of the network on the %d test images: %.2f%%\n", r.Total, r.Accuracy())
	for c := 0; c < r.Confusion.NumClasses; c++ {
		name := fmt.Sprintf("class %d", c)
		if c < len(classes) {
			name = classes[c]
		}
		fmt.Fprintf(w, "  %-12s %6.2f%% (%d/%d)\n", name, 100*r.Confusion.Recall(c), r.Confusion.Matrix[c][c], r.Confusion.ClassSupport(c))
	}
	fmt.Fprintf(w, "  macro F1: %.4f\n", r.Confusion.MacroF1())
}

// Evaluate runs every batch of loader through net once in eval mode and
// scores the argmax predictions.
func Evaluate(net *layers.Network, loader BatchLoader, numClasses int) (*EvalResult, error) {
	net.SetMode(layers.ModeEval)
	loader.Reset()

	cm := NewConfusionMatrix(numClasses)
	for {
		batch, err := loader.NextBatch()
		if err != nil {
			return nil, errors.Wrap(err, "evaluation")
		}
		if batch == nil {
			break
		}
		logits, err := net.Forward(batch.Images)
		if err != nil {
			return nil, errors.Wrap(err, "evaluation forward pass")
		}
		if err := cm.UpdateFromLogits(logits, batch.Labels); err != nil {
			return nil, err
		}
	}

	return &EvalResult{
		Total:     cm.TotalSamples,
		Correct:   cm.Correct(),
		Confusion: cm,
	}, nil
}
