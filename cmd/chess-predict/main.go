// Command chess-predict classifies chess piece images with a model exported
// by chess-trainer.
//
//	chess-predict -model chess_piece_classifier_vgg16.onnx square.png ...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/engine"
	"github.com/tsawler/go-chessnet/parallel"
	"github.com/tsawler/go-chessnet/tensor"
	"github.com/tsawler/go-chessnet/vision/preprocessing"
)

func main() {
	modelPath := flag.String("model", "chess_piece_classifier_vgg16.onnx", "exported ONNX model")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-model file.onnx] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(os.Stdout, *modelPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, modelPath string, images []string) error {
	ie, err := engine.Load(modelPath)
	if err != nil {
		return err
	}
	classes, err := ie.Classes()
	if err != nil {
		return err
	}

	size, err := imageSize(ie)
	if err != nil {
		return err
	}
	processor := preprocessing.NewImageProcessor(size, preprocessing.ImageNetNormalization)
	processed, err := preprocessing.PreprocessBatch(context.Background(), processor, images, parallel.Workers())
	if err != nil {
		return err
	}

	for i, img := range processed {
		input, err := preprocessing.Stack([]*preprocessing.ProcessedImage{img})
		if err != nil {
			return err
		}
		scores, err := ie.Predict(input)
		if err != nil {
			return errors.Wrapf(err, "classify %s", images[i])
		}
		probs, err := tensor.Softmax(scores)
		if err != nil {
			return err
		}
		pred, err := tensor.ArgMax(scores)
		if err != nil {
			return err
		}
		k := pred[0]
		if k >= len(classes) {
			return errors.Errorf("model predicted class %d but lists %d class names", k, len(classes))
		}

		if len(images) > 1 {
			fmt.Fprintf(out, "%s\n", images[i])
		}
		fmt.Fprintf(out, "class ID: %d\n", k)
		fmt.Fprintf(out, "label name: %s\n", classes[k])
		fmt.Fprintf(out, "confidence: %.2f%%\n", 100*probs.Data[k])
	}
	return nil
}

// imageSize reads the square input size from the model metadata, falling
// back to the declared input shape.
func imageSize(ie *engine.InferenceEngine) (int, error) {
	if v, ok := ie.Metadata()[checkpoints.MetaImageSize]; ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid %s metadata %q", checkpoints.MetaImageSize, v)
		}
		return size, nil
	}
	shape := ie.InputShape()
	if len(shape) != 4 || shape[2] != shape[3] || shape[2] <= 0 {
		return 0, errors.Errorf("cannot infer image size from input shape %v", shape)
	}
	return shape[3], nil
}
