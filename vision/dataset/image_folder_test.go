package dataset

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// createTestDataset lays out root/<class>/image_<i>.png.
func createTestDataset(t *testing.T, counts map[string]int) string {
	t.Helper()
	root := t.TempDir()
	for className, n := range counts {
		dir := filepath.Join(root, className)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i := 0; i < n; i++ {
			writePNG(t, filepath.Join(dir, fmt.Sprintf("image_%d.png", i)))
		}
	}
	return root
}

func TestNewImageFolderDataset(t *testing.T) {
	root := createTestDataset(t, map[string]int{"pawn": 5, "knight": 5})

	ds, err := NewImageFolderDataset(root, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, ds.Len())
	assert.Equal(t, 2, ds.NumClasses())
	assert.Equal(t, []string{"knight", "pawn"}, ds.ClassNames())
	assert.Equal(t, map[string]int{"knight": 5, "pawn": 5}, ds.ClassDistribution())
	assert.Equal(t, root, ds.Root())

	idx, ok := ds.ClassIndex("pawn")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	path, label, err := ds.GetItem(0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "knight", "image_0.png"), path)
	assert.Equal(t, 0, label)

	_, _, err = ds.GetItem(10)
	assert.Error(t, err)
	_, _, err = ds.GetItem(-1)
	assert.Error(t, err)

	assert.Contains(t, ds.String(), "10 samples, 2 classes")
	assert.Contains(t, ds.String(), "knight: 5 samples")
}

func TestClassOrderIsStable(t *testing.T) {
	root := createTestDataset(t, map[string]int{"rook": 1, "bishop": 2, "queen": 1, "king": 1})

	first, err := NewImageFolderDataset(root, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := NewImageFolderDataset(root, nil)
		require.NoError(t, err)
		assert.Equal(t, first.ClassNames(), again.ClassNames())
	}
	assert.Equal(t, []string{"bishop", "king", "queen", "rook"}, first.ClassNames())
}

func TestExtensionFiltering(t *testing.T) {
	root := createTestDataset(t, map[string]int{"pawn": 2})
	dir := filepath.Join(root, "pawn")
	writePNG(t, filepath.Join(dir, "UPPER.PNG"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache"), 0o755))

	ds, err := NewImageFolderDataset(root, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"pawn"}, ds.ClassNames())

	only, err := NewImageFolderDataset(root, []string{".jpg", ".png"})
	require.NoError(t, err)
	assert.Equal(t, 3, only.Len())
}

func TestNewImageFolderDatasetErrors(t *testing.T) {
	t.Run("MissingRoot", func(t *testing.T) {
		_, err := NewImageFolderDataset(filepath.Join(t.TempDir(), "nope"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("RootIsFile", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.png")
		writePNG(t, file)
		_, err := NewImageFolderDataset(file, nil)
		assert.Error(t, err)
	})

	t.Run("NoClasses", func(t *testing.T) {
		_, err := NewImageFolderDataset(t.TempDir(), nil)
		assert.Error(t, err)
	})

	t.Run("EmptyClass", func(t *testing.T) {
		root := createTestDataset(t, map[string]int{"pawn": 3})
		require.NoError(t, os.MkdirAll(filepath.Join(root, "queen"), 0o755))
		_, err := NewImageFolderDataset(root, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queen")
	})

	t.Run("NoRecognizedImages", func(t *testing.T) {
		root := createTestDataset(t, map[string]int{"pawn": 2})
		_, err := NewImageFolderDataset(root, []string{".webp"})
		assert.Error(t, err)
	})
}
