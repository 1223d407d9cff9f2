package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-chessnet/checkpoints"
	"github.com/tsawler/go-chessnet/layers"
	"github.com/tsawler/go-chessnet/tensor"
)

func exportTinyModel(t *testing.T, dir string) string {
	t.Helper()
	spec, err := layers.NewModelBuilder([]int{1, 3, 8, 8}).
		AddConv2D(4, 3, 1, 1, true, "", "features.0").
		AddReLU("features.1").
		AddAdaptiveAvgPool2D(1, 1, "avgpool").
		AddFlatten("flatten").
		AddDense(2, true, "fc").
		Compile()
	require.NoError(t, err)
	net, err := layers.NewNetwork(spec, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	dummy, err := tensor.RandN([]int{1, 3, 8, 8}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	path := filepath.Join(dir, "tiny.onnx")
	_, err = checkpoints.NewONNXExporter().Export(net, dummy, path, checkpoints.ExportMetadata{
		Backbone: "tiny",
		Classes:  []string{"knight", "pawn"},
	})
	require.NoError(t, err)
	return path
}

func writeSquare(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestPredictPrintsClassAndLabel(t *testing.T) {
	dir := t.TempDir()
	model := exportTinyModel(t, dir)
	img := filepath.Join(dir, "square.png")
	writeSquare(t, img, color.RGBA{200, 40, 40, 255})

	var out bytes.Buffer
	require.NoError(t, run(&out, model, []string{img}))
	assert.Regexp(t, `class ID: [01]\nlabel name: (knight|pawn)\nconfidence: `, out.String())
}

func TestPredictNamesEachImage(t *testing.T) {
	dir := t.TempDir()
	model := exportTinyModel(t, dir)
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeSquare(t, a, color.RGBA{0, 0, 0, 255})
	writeSquare(t, b, color.RGBA{255, 255, 255, 255})

	var out bytes.Buffer
	require.NoError(t, run(&out, model, []string{a, b}))
	assert.Contains(t, out.String(), a+"\n")
	assert.Contains(t, out.String(), b+"\n")
}

func TestPredictErrors(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	assert.Error(t, run(&out, filepath.Join(dir, "missing.onnx"), []string{"x.png"}))

	model := exportTinyModel(t, dir)
	assert.Error(t, run(&out, model, []string{filepath.Join(dir, "missing.png")}))
}
