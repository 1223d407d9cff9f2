package training

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/go-chessnet/optimizer"
	"github.com/tsawler/go-chessnet/vision/preprocessing"
)

const (
	// DefaultTrainDir and DefaultTestDir hold one subdirectory per class.
	DefaultTrainDir = "Data/output_train"
	DefaultTestDir  = "Data/output_test"

	// ConfigEnvVar names an optional YAML run configuration.
	ConfigEnvVar = "CHESS_TRAINER_CONFIG"
)

// DefaultPipelines run when no configuration file is given.
var DefaultPipelines = []string{"vgg16", "alexnet"}

// Config holds every constant of one fine-tuning pipeline.
type Config struct {
	Backbone  string `yaml:"backbone" json:"backbone"`
	TrainDir  string `yaml:"train_dir" json:"train_dir"`
	TestDir   string `yaml:"test_dir" json:"test_dir"`
	ImageSize int    `yaml:"image_size" json:"image_size"`
	BatchSize int    `yaml:"batch_size" json:"batch_size"`
	Epochs    int    `yaml:"epochs" json:"epochs"`

	LearningRate float32 `yaml:"learning_rate" json:"learning_rate"`
	Momentum     float32 `yaml:"momentum" json:"momentum"`

	HorizontalFlipP float64   `yaml:"horizontal_flip_p" json:"horizontal_flip_p"`
	VerticalFlipP   float64   `yaml:"vertical_flip_p" json:"vertical_flip_p"`
	Mean            []float32 `yaml:"mean" json:"mean"`
	Std             []float32 `yaml:"std" json:"std"`

	Pretrained  bool   `yaml:"pretrained" json:"pretrained"`
	WeightsPath string `yaml:"weights_path" json:"weights_path"`
	ExportPath  string `yaml:"export_path" json:"export_path"`

	NumWorkers    int   `yaml:"num_workers" json:"num_workers"`
	CacheSize     int   `yaml:"cache_size" json:"cache_size"`
	PrefetchDepth int   `yaml:"prefetch_depth" json:"prefetch_depth"` // 0 loads batches inline
	Seed          int64 `yaml:"seed" json:"seed"`                     // 0 seeds from the clock

	ShowProgress     bool `yaml:"show_progress" json:"show_progress"`
	ShowArchitecture bool `yaml:"show_architecture" json:"show_architecture"`
	VerifyExport     bool `yaml:"verify_export" json:"verify_export"`
}

// DefaultConfig returns the constants for a backbone.
func DefaultConfig(backbone string) (Config, error) {
	cfg := Config{
		Backbone:         strings.ToLower(backbone),
		TrainDir:         DefaultTrainDir,
		TestDir:          DefaultTestDir,
		ImageSize:        224,
		BatchSize:        32,
		Epochs:           10,
		Mean:             preprocessing.ImageNetNormalization.Mean[:],
		Std:              preprocessing.ImageNetNormalization.Std[:],
		CacheSize:        512,
		PrefetchDepth:    2,
		ShowProgress:     true,
		ShowArchitecture: false,
		VerifyExport:     true,
	}
	// Mean and Std must not alias the package-level normalization.
	cfg.Mean = append([]float32(nil), cfg.Mean...)
	cfg.Std = append([]float32(nil), cfg.Std...)

	switch cfg.Backbone {
	case "vgg16":
		cfg.LearningRate, cfg.Momentum = 0.001, 0.9
		cfg.HorizontalFlipP, cfg.VerticalFlipP = 0.3, 0.3
		cfg.Pretrained = true
		cfg.WeightsPath = "weights/vgg16.safetensors"
		cfg.ExportPath = "chess_piece_classifier_vgg16.onnx"
	case "resnet18":
		cfg.LearningRate, cfg.Momentum = 0.001, 0.9
		cfg.HorizontalFlipP, cfg.VerticalFlipP = 0.3, 0.3
		cfg.ExportPath = "chess_piece_classifier_res3.onnx"
	case "alexnet":
		cfg.LearningRate, cfg.Momentum = 0.01, 0.5
		cfg.HorizontalFlipP, cfg.VerticalFlipP = 0.5, 0.5
		cfg.ExportPath = "chess_piece_classifier_alex.onnx"
	default:
		return Config{}, errors.Errorf("no default configuration for backbone %q", backbone)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run.
func (c Config) Validate() error {
	switch {
	case c.Backbone == "":
		return errors.New("backbone is required")
	case c.TrainDir == "" || c.TestDir == "":
		return errors.New("train_dir and test_dir are required")
	case c.ExportPath == "":
		return errors.New("export_path is required")
	case c.ImageSize <= 0:
		return errors.Errorf("image_size must be positive, got %d", c.ImageSize)
	case c.BatchSize <= 0:
		return errors.Errorf("batch_size must be positive, got %d", c.BatchSize)
	case c.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.HorizontalFlipP < 0 || c.HorizontalFlipP > 1:
		return errors.Errorf("horizontal_flip_p %g is not a probability", c.HorizontalFlipP)
	case c.VerticalFlipP < 0 || c.VerticalFlipP > 1:
		return errors.Errorf("vertical_flip_p %g is not a probability", c.VerticalFlipP)
	case c.NumWorkers < 0:
		return errors.Errorf("num_workers cannot be negative, got %d", c.NumWorkers)
	case c.PrefetchDepth < 0:
		return errors.Errorf("prefetch_depth cannot be negative, got %d", c.PrefetchDepth)
	case c.Pretrained && c.WeightsPath == "":
		return errors.New("pretrained requires weights_path")
	}
	if err := c.SGD().Validate(); err != nil {
		return err
	}
	if _, err := c.Normalization(); err != nil {
		return err
	}
	return nil
}

// SGD returns the optimizer settings.
func (c Config) SGD() optimizer.SGDConfig {
	return optimizer.SGDConfig{
		LearningRate: c.LearningRate,
		Momentum:     c.Momentum,
	}
}

// Normalization returns the per-channel statistics.
func (c Config) Normalization() (preprocessing.Normalization, error) {
	return preprocessing.NewNormalization(c.Mean, c.Std)
}

// Transforms returns the training augmentations: a horizontal flip then a
// vertical flip.
func (c Config) Transforms() []preprocessing.Transform {
	return []preprocessing.Transform{
		preprocessing.RandomHorizontalFlip{P: c.HorizontalFlipP},
		preprocessing.RandomVerticalFlip{P: c.VerticalFlipP},
	}
}

// InputShape is the [batch, 3, size, size] shape the network is built for.
func (c Config) InputShape() []int {
	return []int{c.BatchSize, 3, c.ImageSize, c.ImageSize}
}

// RunConfig lists the pipelines to run, in order.
type RunConfig struct {
	Pipelines []Config `yaml:"pipelines"`
}

// DefaultRunConfig runs VGG16 then AlexNet.
func DefaultRunConfig() (*RunConfig, error) {
	rc := &RunConfig{}
	for _, name := range DefaultPipelines {
		cfg, err := DefaultConfig(name)
		if err != nil {
			return nil, err
		}
		rc.Pipelines = append(rc.Pipelines, cfg)
	}
	return rc, nil
}

// LoadRunConfig reads a YAML run configuration. Each pipeline entry needs a
// backbone; every other key overrides that backbone's defaults. Unknown keys
// are rejected.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read run config")
	}
	return ParseRunConfig(data)
}

// ParseRunConfig is LoadRunConfig for in-memory YAML.
func ParseRunConfig(data []byte) (*RunConfig, error) {
	// Strict pass: rejects unknown keys and type errors.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var strict RunConfig
	if err := dec.Decode(&strict); err != nil {
		return nil, errors.Wrap(err, "invalid run config")
	}

	// Merge pass: decode each entry over its backbone defaults.
	var raw struct {
		Pipelines []yaml.Node `yaml:"pipelines"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid run config")
	}
	if len(raw.Pipelines) == 0 {
		return nil, errors.New("run config lists no pipelines")
	}

	rc := &RunConfig{}
	for i, node := range raw.Pipelines {
		var head struct {
			Backbone string `yaml:"backbone"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, errors.Wrapf(err, "pipeline %d", i)
		}
		if head.Backbone == "" {
			return nil, errors.Errorf("pipeline %d has no backbone", i)
		}
		cfg, err := DefaultConfig(head.Backbone)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline %d", i)
		}
		if err := node.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "pipeline %d", i)
		}
		cfg.Backbone = strings.ToLower(cfg.Backbone)
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "pipeline %d (%s)", i, cfg.Backbone)
		}
		rc.Pipelines = append(rc.Pipelines, cfg)
	}
	return rc, nil
}
