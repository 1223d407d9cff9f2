package tensor

import (
	"math"
	"math/rand"
)

// Full returns a tensor with every element set to value.
func Full(shape []int, value float32) (*Tensor, error) {
	t, err := New(shape, nil)
	if err != nil {
		return nil, err
	}
	for i := range t.Data {
		t.Data[i] = value
	}
	return t, nil
}

// RandN fills a new tensor with samples from N(0, 1).
func RandN(shape []int, rng *rand.Rand) (*Tensor, error) {
	t, err := New(shape, nil)
	if err != nil {
		return nil, err
	}
	for i := range t.Data {
		t.Data[i] = float32(rng.NormFloat64())
	}
	return t, nil
}

// FillUniform fills data with samples from U(-bound, bound).
func FillUniform(data []float32, bound float64, rng *rand.Rand) {
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
}

// FillNormal fills data with samples from N(0, std^2).
func FillNormal(data []float32, std float64, rng *rand.Rand) {
	for i := range data {
		data[i] = float32(rng.NormFloat64() * std)
	}
}

// KaimingNormalStd returns the standard deviation of He initialization for a
// ReLU network computed over fanOut, as torchvision uses for its conv layers.
func KaimingNormalStd(fanOut int) float64 {
	return math.Sqrt(2.0 / float64(fanOut))
}

// DefaultUniformBound is the bound PyTorch's default Linear/Conv2d
// initialization uses for both weight and bias: 1/sqrt(fanIn).
func DefaultUniformBound(fanIn int) float64 {
	if fanIn <= 0 {
		return 0
	}
	return 1.0 / math.Sqrt(float64(fanIn))
}
