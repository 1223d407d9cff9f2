package training

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/tensor"
)

// Loss interface defines methods that all loss functions must implement
type Loss interface {
	// Forward returns the scalar loss for a batch of logits and the gradient
	// of that loss with respect to the logits.
	Forward(logits *tensor.Tensor, labels []int) (float64, *tensor.Tensor, error)
}

// CrossEntropyLoss is softmax cross-entropy over raw class scores, averaged
// over the batch.
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a new cross-entropy loss function
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes L = mean(logsumexp(z) - z[y]). The gradient is
// (softmax(z) - onehot(y)) / n.
func (ce *CrossEntropyLoss) Forward(logits *tensor.Tensor, labels []int) (float64, *tensor.Tensor, error) {
	if len(logits.Shape) != 2 {
		return 0, nil, errors.Errorf("cross entropy expects [batch, classes] logits, got %v", logits.Shape)
	}
	n, k := logits.Shape[0], logits.Shape[1]
	if len(labels) != n {
		return 0, nil, errors.Errorf("got %d labels for a batch of %d", len(labels), n)
	}

	grad, err := tensor.Zeros(n, k)
	if err != nil {
		return 0, nil, err
	}

	var total float64
	for i := 0; i < n; i++ {
		y := labels[i]
		if y < 0 || y >= k {
			return 0, nil, errors.Errorf("label %d out of range for %d classes", y, k)
		}
		row := logits.Data[i*k : (i+1)*k]

		maxVal := float64(row[0])
		for _, v := range row[1:] {
			maxVal = math.Max(maxVal, float64(v))
		}
		var sum float64
		for _, v := range row {
			sum += math.Exp(float64(v) - maxVal)
		}
		logSumExp := maxVal + math.Log(sum)
		total += logSumExp - float64(row[y])

		g := grad.Data[i*k : (i+1)*k]
		for j, v := range row {
			g[j] = float32(math.Exp(float64(v)-logSumExp) / float64(n))
		}
		g[y] -= float32(1 / float64(n))
	}

	return total / float64(n), grad, nil
}
