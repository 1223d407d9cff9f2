// Package training fine-tunes an adapted network: configuration, the
// train and evaluation loops, and the per-backbone pipeline that ties data
// loading, adaptation, training, evaluation and export together.
package training

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/optimizer"
	"github.com/tsawler/go-chessnet/vision/dataloader"
)

// BatchLoader yields the batches of one epoch. NextBatch returns nil, nil
// when the epoch is exhausted.
type BatchLoader interface {
	Reset()
	NextBatch() (*dataloader.Batch, error)
	NumBatches() int
}

// TrainingMetrics holds metrics for a single epoch
type TrainingMetrics struct {
	Epoch         int
	TrainLoss     float64
	EpochDuration time.Duration
	BatchCount    int
}

// Trainer manages the training process
type Trainer struct {
	model        *layers.Network
	optimizer    optimizer.Optimizer
	criterion    Loss
	out          io.Writer
	showProgress bool
	metrics      []TrainingMetrics
}

// NewTrainer creates a new Trainer
func NewTrainer(model *layers.Network, opt optimizer.Optimizer, criterion Loss, out io.Writer) *Trainer {
	return &Trainer{
		model:     model,
		optimizer: opt,
		criterion: criterion,
		out:       out,
		metrics:   make([]TrainingMetrics, 0),
	}
}

// ShowProgress enables a per-epoch progress bar.
func (t *Trainer) ShowProgress(show bool) *Trainer {
	t.showProgress = show
	return t
}

// Train runs exactly epochs passes over loader and returns the average
// loss of each epoch. Every epoch prints "Epoch k, Loss: <avg>".
func (t *Trainer) Train(loader BatchLoader, epochs int) ([]float64, error) {
	if epochs <= 0 {
		return nil, errors.Errorf("epochs must be positive, got %d", epochs)
	}

	losses := make([]float64, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		start := time.Now()
		t.model.SetMode(layers.ModeTrain)
		loss, batches, err := t.trainEpoch(loader, epoch, epochs)
		if err != nil {
			return losses, errors.Wrapf(err, "training epoch %d failed", epoch)
		}

		t.metrics = append(t.metrics, TrainingMetrics{
			Epoch:         epoch,
			TrainLoss:     loss,
			EpochDuration: time.Since(start),
			BatchCount:    batches,
		})
		losses = append(losses, loss)

		fmt.Fprintf(t.out, "Epoch %d, Loss: %.4f\n", epoch, loss)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			fmt.Fprintf(t.out, "warning: epoch %d loss is not finite\n", epoch)
		}
	}
	return losses, nil
}

func (t *Trainer) trainEpoch(loader BatchLoader, epoch, epochs int) (float64, int, error) {
	loader.Reset()

	var bar *ProgressBar
	if t.showProgress {
		bar = NewProgressBar(t.out, fmt.Sprintf("Epoch %d/%d", epoch, epochs), loader.NumBatches())
	}

	var runningLoss float64
	batches := 0
	for {
		batch, err := loader.NextBatch()
		if err != nil {
			return 0, batches, err
		}
		if batch == nil {
			break
		}

		t.optimizer.ZeroGrad()
		logits, err := t.model.Forward(batch.Images)
		if err != nil {
			return 0, batches, errors.Wrap(err, "forward pass")
		}
		loss, grad, err := t.criterion.Forward(logits, batch.Labels)
		if err != nil {
			return 0, batches, errors.Wrap(err, "loss")
		}
		if err := t.model.Backward(grad); err != nil {
			return 0, batches, errors.Wrap(err, "backward pass")
		}
		if err := t.optimizer.Step(); err != nil {
			return 0, batches, errors.Wrap(err, "optimizer step")
		}

		runningLoss += loss
		batches++
		if bar != nil {
			bar.Update(batches, map[string]float64{"loss": runningLoss / float64(batches)})
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if batches == 0 {
		return 0, 0, errors.New("loader produced no batches")
	}
	return runningLoss / float64(batches), batches, nil
}

// GetMetrics returns per-epoch metrics collected so far.
func (t *Trainer) GetMetrics() []TrainingMetrics {
	return t.metrics
}
