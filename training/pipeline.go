package training

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/async"
	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/engine"
	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/models"
	"github.com/tsawler/go-chessnet/optimizer"
	"github.com/tsawler/go-chessnet/parallel"
	"github.com/tsawler/go-chessnet/tensor"
	"github.com/tsawler/go-chessnet/vision/dataloader"
	"github.com/tsawler/go-chessnet/vision/dataset"
	"github.com/tsawler/go-chessnet/vision/preprocessing"
)

// Stage is a pipeline state. Stages only move forward.
type Stage int

const (
	StageInit Stage = iota
	StageDataLoaded
	StageModelAdapted
	StageTraining
	StageEvaluated
	StageExported
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageDataLoaded:
		return "DataLoaded"
	case StageModelAdapted:
		return "ModelAdapted"
	case StageTraining:
		return "Training"
	case StageEvaluated:
		return "Evaluated"
	case StageExported:
		return "Exported"
	case StageDone:
		return "Done"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Data is the output of BuildData.
type Data struct {
	TrainSet *dataset.ImageFolderDataset
	TestSet  *dataset.ImageFolderDataset
	Train    *dataloader.DataLoader
	Test     *dataloader.DataLoader
	Classes  []string
}

// BuildData scans the train and test trees and builds their loaders. The
// test tree must contain exactly the train classes.
func BuildData(cfg Config, rng *rand.Rand) (*Data, error) {
	trainSet, err := dataset.NewImageFolderDataset(cfg.TrainDir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "train dataset")
	}
	testSet, err := dataset.NewImageFolderDataset(cfg.TestDir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "test dataset")
	}
	classes := trainSet.ClassNames()
	if !slices.Equal(classes, testSet.ClassNames()) {
		return nil, errors.Errorf("test classes %v do not match train classes %v", testSet.ClassNames(), classes)
	}

	norm, err := cfg.Normalization()
	if err != nil {
		return nil, err
	}
	workers := cfg.NumWorkers
	if workers == 0 {
		workers = parallel.Workers()
	}
	processor := preprocessing.NewImageProcessor(cfg.ImageSize, norm)
	train, test, err := dataloader.CreateSharedDataLoaders(trainSet, testSet, processor, dataloader.Config{
		BatchSize:    cfg.BatchSize,
		Shuffle:      true,
		MaxCacheSize: cfg.CacheSize,
		NumWorkers:   workers,
		Transforms:   cfg.Transforms(),
		Rng:          rng,
	})
	if err != nil {
		return nil, err
	}

	return &Data{
		TrainSet: trainSet,
		TestSet:  testSet,
		Train:    train,
		Test:     test,
		Classes:  classes,
	}, nil
}

// Result describes a finished pipeline.
type Result struct {
	Backbone    string
	Classes     []string
	EpochLosses []float64
	Eval        *EvalResult
	ExportPath  string
	// ExportOutput is the in-process output on the export dummy input.
	ExportOutput *tensor.Tensor
}

// Pipeline fine-tunes one backbone: load data, adapt, train, evaluate and
// export, strictly in that order. Any failure aborts the run.
type Pipeline struct {
	cfg      Config
	out      io.Writer
	backbone models.Backbone
	runID    string
	stage    Stage
}

// NewPipeline validates cfg, resolves its backbone and checks that the
// adapted model compiles at cfg.ImageSize and can be exported.
func NewPipeline(cfg Config, out io.Writer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline config")
	}
	b, err := models.ByName(cfg.Backbone)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, out: out, backbone: b}
	if err := p.checkModel(); err != nil {
		return nil, err
	}
	return p, nil
}

// checkModel compiles the adapted backbone without allocating weights, so
// shape and export problems surface before any data is loaded. The class
// count does not change any shape ahead of the head.
func (p *Pipeline) checkModel() error {
	spec, err := models.AdaptSpec(p.backbone, 1, p.cfg.InputShape())
	if err != nil {
		return errors.Wrapf(err, "%s does not compile at image_size %d", p.backbone.Name(), p.cfg.ImageSize)
	}
	if err := checkpoints.CheckExportable(spec); err != nil {
		return errors.Wrapf(err, "%s at image_size %d cannot be exported to ONNX", p.backbone.Name(), p.cfg.ImageSize)
	}
	return nil
}

// WithBackbone substitutes the backbone, e.g. a small network in tests.
func (p *Pipeline) WithBackbone(b models.Backbone) *Pipeline {
	p.backbone = b
	return p
}

// WithRunID records id in the exported model's metadata.
func (p *Pipeline) WithRunID(id string) *Pipeline {
	p.runID = id
	return p
}

// Stage returns the last stage reached.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// Run executes the pipeline once.
func (p *Pipeline) Run() (*Result, error) {
	if p.stage != StageInit {
		return nil, errors.Errorf("pipeline already ran (stage %s)", p.stage)
	}
	res, err := p.run()
	if err != nil {
		return nil, errors.Wrapf(err, "%s pipeline failed after stage %s", p.backbone.Name(), p.stage)
	}
	return res, nil
}

func (p *Pipeline) run() (*Result, error) {
	cfg := p.cfg
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// The loader draws shuffles and flips on the prefetch goroutine while
	// the network draws dropout masks on this one, so each owns a source.
	dataRng := rand.New(rand.NewSource(seed))
	netRng := rand.New(rand.NewSource(seed + 1))
	res := &Result{Backbone: p.backbone.Name(), ExportPath: cfg.ExportPath}

	if err := p.checkModel(); err != nil {
		return nil, err
	}
	data, err := BuildData(cfg, dataRng)
	if err != nil {
		return nil, err
	}
	res.Classes = data.Classes
	p.stage = StageDataLoaded
	fmt.Fprintf(p.out, "Classes: %v\n", data.Classes)
	fmt.Fprintf(p.out, "Train: %d images, %d batches. Test: %d images.\n",
		data.TrainSet.Len(), data.Train.NumBatches(), data.TestSet.Len())

	net, err := models.Adapt(p.backbone, len(data.Classes), models.AdaptOptions{
		InputShape:  cfg.InputShape(),
		Pretrained:  cfg.Pretrained,
		WeightsPath: cfg.WeightsPath,
		Rng:         netRng,
	})
	if err != nil {
		return nil, err
	}
	p.stage = StageModelAdapted
	if cfg.ShowArchitecture {
		NewModelArchitecturePrinter(p.backbone.Name()).PrintArchitecture(p.out, net)
	}
	fmt.Fprintf(p.out, "Trainable parameters: %d of %d\n", net.NumTrainable(), net.NumParameters())

	sgd, err := optimizer.NewSGDOptimizer(cfg.SGD(), net.Parameters())
	if err != nil {
		return nil, err
	}
	p.stage = StageTraining
	var trainLoader BatchLoader = data.Train
	var pf *async.Prefetcher
	if cfg.PrefetchDepth > 0 {
		if pf, err = async.NewPrefetcher(data.Train, cfg.PrefetchDepth); err != nil {
			return nil, err
		}
		defer pf.Close()
		trainLoader = pf
	}
	trainer := NewTrainer(net, sgd, NewCrossEntropyLoss(), p.out).ShowProgress(cfg.ShowProgress)
	res.EpochLosses, err = trainer.Train(trainLoader, cfg.Epochs)
	if err != nil {
		return nil, err
	}
	if pf != nil {
		pf.Close()
	}
	fmt.Fprintln(p.out, "Finished Training")

	res.Eval, err = Evaluate(net, data.Test, len(data.Classes))
	if err != nil {
		return nil, err
	}
	p.stage = StageEvaluated
	res.Eval.Report(p.out, data.Classes)
	fmt.Fprintln(p.out, "Image", data.Train.Stats())

	res.ExportOutput, err = p.export(net, data.Classes, netRng)
	if err != nil {
		return nil, err
	}
	p.stage = StageExported
	fmt.Fprintf(p.out, "Model exported to %s\n", cfg.ExportPath)

	p.stage = StageDone
	return res, nil
}

// export writes the ONNX file and, when configured, reloads it and checks
// it reproduces the in-process output.
func (p *Pipeline) export(net *layers.Network, classes []string, rng *rand.Rand) (*tensor.Tensor, error) {
	dummy, err := tensor.RandN([]int{1, 3, p.cfg.ImageSize, p.cfg.ImageSize}, rng)
	if err != nil {
		return nil, err
	}
	want, err := checkpoints.NewONNXExporter().Export(net, dummy, p.cfg.ExportPath, checkpoints.ExportMetadata{
		Backbone: p.backbone.Name(),
		Classes:  classes,
		RunID:    p.runID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "export")
	}
	if !p.cfg.VerifyExport {
		return want, nil
	}

	ie, err := engine.Load(p.cfg.ExportPath)
	if err != nil {
		return nil, errors.Wrap(err, "reload export")
	}
	got, err := ie.Predict(dummy)
	if err != nil {
		return nil, errors.Wrap(err, "run export")
	}
	if !tensor.AllClose(got, want, 1e-3, 1e-4) {
		return nil, errors.Errorf("exported model output %v differs from in-process output %v", got.Data, want.Data)
	}
	fmt.Fprintln(p.out, "Export verified: reloaded model matches in-process output")
	return want, nil
}
