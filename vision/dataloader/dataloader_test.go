package dataloader

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-chessnet/vision/dataset"
	"github.com/tsawler/go-chessnet/vision/preprocessing"
)

var identity = preprocessing.Normalization{Std: [3]float32{1, 1, 1}}

// writeTree lays out root/<class>/<i>.png where image i of every class is a
// solid gray of value 10*i+1 so samples can be told apart after loading.
func writeTree(t *testing.T, counts map[string]int) string {
	t.Helper()
	root := t.TempDir()
	for className, n := range counts {
		dir := filepath.Join(root, className)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i := 0; i < n; i++ {
			img := image.NewGray(image.Rect(0, 0, 6, 6))
			for p := range img.Pix {
				img.Pix[p] = uint8(10*i + 1)
			}
			f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%d.png", i)))
			require.NoError(t, err)
			require.NoError(t, png.Encode(f, img))
			require.NoError(t, f.Close())
		}
	}
	return root
}

func newLoader(t *testing.T, root string, cfg Config) *DataLoader {
	t.Helper()
	ds, err := dataset.NewImageFolderDataset(root, nil)
	require.NoError(t, err)
	dl, err := NewDataLoader(ds, preprocessing.NewImageProcessor(4, identity), cfg)
	require.NoError(t, err)
	return dl
}

func drain(t *testing.T, dl *DataLoader) []*Batch {
	t.Helper()
	var batches []*Batch
	for {
		b, err := dl.NextBatch()
		require.NoError(t, err)
		if b == nil {
			return batches
		}
		batches = append(batches, b)
	}
}

func TestKnightPawnScenario(t *testing.T) {
	train := writeTree(t, map[string]int{"pawn": 5, "knight": 5})
	dl := newLoader(t, train, Config{BatchSize: 32, Shuffle: true, NumWorkers: 4, Rng: rand.New(rand.NewSource(1))})

	assert.Equal(t, 1, dl.NumBatches())
	assert.Equal(t, 10, dl.Len())
	batches := drain(t, dl)
	require.Len(t, batches, 1)
	assert.Equal(t, 10, batches[0].Size())
	assert.Equal(t, []int{10, 3, 4, 4}, batches[0].Images.Shape)

	labels := append([]int(nil), batches[0].Labels...)
	sort.Ints(labels)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, labels)
}

func TestBatchingInOrder(t *testing.T) {
	root := writeTree(t, map[string]int{"a": 3, "b": 4})
	dl := newLoader(t, root, Config{BatchSize: 3, NumWorkers: 2})

	assert.Equal(t, 3, dl.NumBatches())
	batches := drain(t, dl)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 0, 0}, batches[0].Labels)
	assert.Equal(t, []int{1, 1, 1}, batches[1].Labels)
	assert.Equal(t, []int{1}, batches[2].Labels)
	assert.Equal(t, []int{1, 3, 4, 4}, batches[2].Images.Shape)

	// Scan order: a/0, a/1, a/2 have gray levels 1, 11, 21.
	plane := 3 * 16
	for i, level := range []float32{1, 11, 21} {
		assert.InDelta(t, level/255, batches[0].Images.Data[i*plane], 1e-6)
	}

	dl.Reset()
	assert.Len(t, drain(t, dl), 3)
	assert.Contains(t, dl.Stats(), "Hits: 7")
}

func TestShuffleChangesOrderAcrossEpochs(t *testing.T) {
	root := writeTree(t, map[string]int{"a": 10, "b": 10})
	dl := newLoader(t, root, Config{BatchSize: 20, Shuffle: true, Rng: rand.New(rand.NewSource(7))})

	first := drain(t, dl)[0].Labels
	differs := false
	for epoch := 0; epoch < 5 && !differs; epoch++ {
		dl.Reset()
		next := drain(t, dl)[0].Labels
		differs = fmt.Sprint(next) != fmt.Sprint(first)
	}
	assert.True(t, differs, "shuffled loader repeated the same order every epoch")
}

type constantTransform struct{ value float32 }

func (c constantTransform) Apply(img *preprocessing.ProcessedImage, _ *rand.Rand) {
	for i := range img.Data {
		img.Data[i] = c.value
	}
}

func (c constantTransform) String() string { return "constant" }

func TestTransformsDoNotTouchCache(t *testing.T) {
	root := writeTree(t, map[string]int{"a": 2})
	dl := newLoader(t, root, Config{BatchSize: 2, Transforms: []preprocessing.Transform{constantTransform{value: -5}}})

	b := drain(t, dl)[0]
	for _, v := range b.Images.Data {
		assert.Equal(t, float32(-5), v)
	}

	// The cached copy still holds the preprocessed pixels.
	path := filepath.Join(root, "a", "0.png")
	data, ok := dl.GetCacheManager().Get(path)
	require.True(t, ok)
	assert.InDelta(t, 1.0/255, data[0], 1e-6)
}

func TestCorruptImageFailsBatch(t *testing.T) {
	root := writeTree(t, map[string]int{"a": 2})
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "broken.png"), []byte("garbage"), 0o644))
	dl := newLoader(t, root, Config{BatchSize: 8})

	_, err := dl.NextBatch()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.png")
}

func TestNewDataLoaderValidation(t *testing.T) {
	root := writeTree(t, map[string]int{"a": 1})
	ds, err := dataset.NewImageFolderDataset(root, nil)
	require.NoError(t, err)
	p := preprocessing.NewImageProcessor(4, identity)

	_, err = NewDataLoader(ds, p, Config{BatchSize: 0})
	assert.Error(t, err)
	_, err = NewDataLoader(ds, nil, Config{BatchSize: 1})
	assert.Error(t, err)
	_, err = NewDataLoader(nil, p, Config{BatchSize: 1})
	assert.Error(t, err)
}

func TestCreateSharedDataLoaders(t *testing.T) {
	train := writeTree(t, map[string]int{"pawn": 5, "knight": 5})
	test := writeTree(t, map[string]int{"pawn": 2, "knight": 2})
	trainDS, err := dataset.NewImageFolderDataset(train, nil)
	require.NoError(t, err)
	testDS, err := dataset.NewImageFolderDataset(test, nil)
	require.NoError(t, err)

	trainLoader, testLoader, err := CreateSharedDataLoaders(trainDS, testDS, preprocessing.NewImageProcessor(4, identity), Config{
		BatchSize:  32,
		Shuffle:    true,
		Transforms: []preprocessing.Transform{preprocessing.RandomHorizontalFlip{P: 0.5}},
		Rng:        rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	assert.Same(t, trainLoader.GetCacheManager(), testLoader.GetCacheManager())
	assert.Equal(t, 14, trainLoader.GetCacheManager().Stats().MaxSize)

	assert.Equal(t, 1, trainLoader.NumBatches())
	testBatches := drain(t, testLoader)
	require.Len(t, testBatches, 1)
	assert.Equal(t, []int{0, 0, 1, 1}, testBatches[0].Labels)

	drain(t, trainLoader)
	assert.Equal(t, 14, trainLoader.GetCacheManager().Stats().Size)
}

func TestSolidColorSurvivesPipeline(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "red")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "x.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	dl := newLoader(t, root, Config{BatchSize: 1})
	b := drain(t, dl)[0]
	assert.InDelta(t, 1.0, b.Images.Data[0], 1e-6)
	assert.InDelta(t, 0.0, b.Images.Data[16], 1e-6)
}
