package optimizer

import (
	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/layers"
)

// SGDOptimizerState is stochastic gradient descent with optional momentum,
// weight decay and Nesterov momentum.
//
// With momentum m the update is buf = m*buf + g, p -= lr*buf, where the
// buffer starts as the first gradient seen.
type SGDOptimizerState struct {
	LearningRate float32
	Momentum     float32 // 0 for vanilla SGD
	WeightDecay  float32 // L2 regularization coefficient
	Nesterov     bool

	params          []*layers.Parameter
	MomentumBuffers [][]float32 // indexed like params, nil until first use

	StepCount uint64
}

// SGDConfig holds configuration for SGD optimizer
type SGDConfig struct {
	LearningRate float32 `yaml:"learning_rate" json:"learning_rate"`
	Momentum     float32 `yaml:"momentum" json:"momentum"`
	WeightDecay  float32 `yaml:"weight_decay" json:"weight_decay"`
	Nesterov     bool    `yaml:"nesterov" json:"nesterov"`
}

// DefaultSGDConfig returns default SGD optimizer configuration
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{
		LearningRate: 0.01,
		Momentum:     0.0,
		WeightDecay:  0.0,
		Nesterov:     false,
	}
}

// Validate checks the hyperparameters.
func (c SGDConfig) Validate() error {
	if c.LearningRate < 0 {
		return errors.Errorf("learning rate cannot be negative: %f", c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1): %f", c.Momentum)
	}
	if c.WeightDecay < 0 {
		return errors.Errorf("weight decay cannot be negative: %f", c.WeightDecay)
	}
	if c.Nesterov && c.Momentum == 0 {
		return errors.New("nesterov momentum requires a non-zero momentum")
	}
	return nil
}

// NewSGDOptimizer creates an optimizer over params. Frozen parameters may be
// passed; they are skipped at every step.
func NewSGDOptimizer(config SGDConfig, params []*layers.Parameter) (*SGDOptimizerState, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, errors.New("no parameters to optimize")
	}

	return &SGDOptimizerState{
		LearningRate:    config.LearningRate,
		Momentum:        config.Momentum,
		WeightDecay:     config.WeightDecay,
		Nesterov:        config.Nesterov,
		params:          params,
		MomentumBuffers: make([][]float32, len(params)),
	}, nil
}

// Step performs a single SGD optimization step
func (sgd *SGDOptimizerState) Step() error {
	sgd.StepCount++

	for i, p := range sgd.params {
		if !p.Trainable || p.Grad == nil {
			continue
		}
		if len(p.Grad) != len(p.Data) {
			return errors.Errorf("parameter %s: gradient has %d elements, weights %d", p.Name, len(p.Grad), len(p.Data))
		}

		grad := p.Grad
		if sgd.WeightDecay != 0 {
			grad = make([]float32, len(p.Grad))
			for j, g := range p.Grad {
				grad[j] = g + sgd.WeightDecay*p.Data[j]
			}
		}

		if sgd.Momentum != 0 {
			buf := sgd.MomentumBuffers[i]
			if buf == nil {
				buf = append([]float32(nil), grad...)
				sgd.MomentumBuffers[i] = buf
			} else {
				for j, g := range grad {
					buf[j] = sgd.Momentum*buf[j] + g
				}
			}
			if sgd.Nesterov {
				for j := range p.Data {
					p.Data[j] -= sgd.LearningRate * (grad[j] + sgd.Momentum*buf[j])
				}
				continue
			}
			grad = buf
		}

		for j, g := range grad {
			p.Data[j] -= sgd.LearningRate * g
		}
	}
	return nil
}

// ZeroGrad clears gradients of the optimized parameters.
func (sgd *SGDOptimizerState) ZeroGrad() {
	for _, p := range sgd.params {
		for j := range p.Grad {
			p.Grad[j] = 0
		}
	}
}

// GetStepCount returns the current step count
func (sgd *SGDOptimizerState) GetStepCount() uint64 {
	return sgd.StepCount
}

var _ Optimizer = (*SGDOptimizerState)(nil)
