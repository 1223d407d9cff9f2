// Command chess-trainer fine-tunes ImageNet backbones on chess piece images
// and exports each trained model to ONNX.
//
// By default it runs the VGG16 pipeline then the AlexNet pipeline on
// Data/output_train and Data/output_test. Set CHESS_TRAINER_CONFIG to a YAML
// file to choose pipelines or override their settings:
//
//	pipelines:
//	  - backbone: resnet18
//	    epochs: 5
//
// The VGG16 pipeline starts from ImageNet weights read from
// weights/vgg16.safetensors (weights_path in the YAML). The file is not
// shipped; export it once from torchvision with:
//
//	python -c "import torchvision; from safetensors.torch import save_file; save_file(torchvision.models.vgg16(weights='DEFAULT').state_dict(), 'weights/vgg16.safetensors')"
//
// ResNet18 and AlexNet train from a torchvision-style random initialization
// unless pretrained is set.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/parallel"
	"github.com/tsawler/go-chessnet/training"
)

func main() {
	if err := run(os.Stdout, os.Getenv(training.ConfigEnvVar)); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

var displayNames = map[string]string{
	"vgg16":    "VGG16",
	"resnet18": "ResNet18",
	"alexnet":  "AlexNet",
}

func displayName(backbone string) string {
	if name, ok := displayNames[backbone]; ok {
		return name
	}
	return backbone
}

func run(out io.Writer, configPath string) error {
	runID := uuid.NewString()
	fmt.Fprintln(out, "=== Chess Piece Classifier Training ===")
	fmt.Fprintf(out, "CPU: %s\n", parallel.Describe())
	fmt.Fprintf(out, "Run ID: %s\n", runID)

	var rc *training.RunConfig
	var err error
	if configPath != "" {
		fmt.Fprintf(out, "Config: %s\n", configPath)
		rc, err = training.LoadRunConfig(configPath)
	} else {
		rc, err = training.DefaultRunConfig()
	}
	if err != nil {
		return err
	}

	for i, cfg := range rc.Pipelines {
		if i == 0 {
			fmt.Fprintf(out, "\nTRAINING %s...\n\n", displayName(cfg.Backbone))
		} else {
			fmt.Fprintf(out, "\nNOW ON TO %s...\n\n", displayName(cfg.Backbone))
		}

		p, err := training.NewPipeline(cfg, out)
		if err != nil {
			return errors.Wrapf(err, "pipeline %d", i+1)
		}
		res, err := p.WithRunID(runID).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s finished: %.2f%% test accuracy, model saved to %s\n",
			displayName(res.Backbone), res.Eval.Accuracy(), res.ExportPath)
	}
	return nil
}
