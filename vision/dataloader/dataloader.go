// Package dataloader batches preprocessed images for training and
// evaluation.
package dataloader

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/go-chessnet/tensor"
	"github.com/tsawler/go-chessnet/vision/preprocessing"
)

// Dataset interface defines the contract for datasets
type Dataset interface {
	Len() int
	GetItem(index int) (imagePath string, label int, err error)
}

// Batch is one group of images with their labels. The last batch of an
// epoch may hold fewer than BatchSize samples.
type Batch struct {
	Images *tensor.Tensor // [n, 3, S, S]
	Labels []int
}

// Size returns the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Labels)
}

// DataLoader walks a dataset in batches, decoding images in parallel and
// caching the preprocessed results.
type DataLoader struct {
	dataset    Dataset
	batchSize  int
	shuffle    bool
	numWorkers int
	indices    []int
	position   int
	mu         sync.Mutex
	rng        *rand.Rand

	cacheManager *CacheManager

	processor  *preprocessing.ImageProcessor
	transforms []preprocessing.Transform
}

// Config holds configuration for DataLoader
type Config struct {
	BatchSize    int
	Shuffle      bool
	MaxCacheSize int           // images to cache; 0 means 1000, negative disables
	NumWorkers   int           // parallel decoders per batch
	CacheManager *CacheManager // optional shared cache manager
	// Transforms run in order on a copy of each preprocessed image.
	Transforms []preprocessing.Transform
	// Rng drives shuffling and augmentation. Nil seeds from the clock.
	Rng *rand.Rand
}

// NewDataLoader creates a new data loader
func NewDataLoader(dataset Dataset, processor *preprocessing.ImageProcessor, config Config) (*DataLoader, error) {
	if dataset == nil || dataset.Len() == 0 {
		return nil, errors.New("dataloader needs a non-empty dataset")
	}
	if processor == nil {
		return nil, errors.New("dataloader needs an image processor")
	}
	if config.BatchSize <= 0 {
		return nil, errors.Errorf("batch size must be positive, got %d", config.BatchSize)
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = 1
	}
	if config.MaxCacheSize == 0 {
		config.MaxCacheSize = 1000
	}
	if config.Rng == nil {
		config.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cacheManager := config.CacheManager
	if cacheManager == nil {
		size := processor.TargetSize()
		cacheManager = NewCacheManager(config.MaxCacheSize, 3*size*size)
	}

	dl := &DataLoader{
		dataset:      dataset,
		batchSize:    config.BatchSize,
		shuffle:      config.Shuffle,
		numWorkers:   config.NumWorkers,
		indices:      make([]int, dataset.Len()),
		rng:          config.Rng,
		cacheManager: cacheManager,
		processor:    processor,
		transforms:   config.Transforms,
	}
	for i := range dl.indices {
		dl.indices[i] = i
	}
	dl.Reset()
	return dl, nil
}

// Reset starts a new epoch, reshuffling when the loader shuffles.
func (dl *DataLoader) Reset() {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.position = 0
	if dl.shuffle {
		dl.rng.Shuffle(len(dl.indices), func(i, j int) {
			dl.indices[i], dl.indices[j] = dl.indices[j], dl.indices[i]
		})
	}
}

// NextBatch loads the next batch. It returns nil, nil once the epoch is
// exhausted. Any sample that fails to load fails the whole batch.
func (dl *DataLoader) NextBatch() (*Batch, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	remaining := len(dl.indices) - dl.position
	if remaining <= 0 {
		return nil, nil
	}
	n := min(dl.batchSize, remaining)
	batchIdx := dl.indices[dl.position : dl.position+n]
	dl.position += n

	images := make([]*preprocessing.ProcessedImage, n)
	labels := make([]int, n)

	var g errgroup.Group
	g.SetLimit(dl.numWorkers)
	for i, idx := range batchIdx {
		g.Go(func() error {
			imagePath, label, err := dl.dataset.GetItem(idx)
			if err != nil {
				return err
			}
			img, err := dl.loadImageWithCache(imagePath)
			if err != nil {
				return err
			}
			images[i] = img
			labels[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to load batch")
	}

	// Augmentation draws from the shared rng, so it stays sequential.
	if len(dl.transforms) > 0 {
		for i, img := range images {
			img = img.Clone()
			for _, t := range dl.transforms {
				t.Apply(img, dl.rng)
			}
			images[i] = img
		}
	}

	batch, err := preprocessing.Stack(images)
	if err != nil {
		return nil, err
	}
	return &Batch{Images: batch, Labels: labels}, nil
}

// loadImageWithCache returns the preprocessed image for a path. The result
// may be shared with the cache.
func (dl *DataLoader) loadImageWithCache(imagePath string) (*preprocessing.ProcessedImage, error) {
	size := dl.processor.TargetSize()
	if data, ok := dl.cacheManager.Get(imagePath); ok {
		return &preprocessing.ProcessedImage{Data: data, Width: size, Height: size, Channels: 3}, nil
	}

	img, err := dl.processor.ProcessFile(imagePath)
	if err != nil {
		return nil, err
	}
	dl.cacheManager.Put(imagePath, img.Data)
	return img, nil
}

// Len returns the dataset size.
func (dl *DataLoader) Len() int {
	return len(dl.indices)
}

// NumBatches returns the number of batches per epoch.
func (dl *DataLoader) NumBatches() int {
	return (len(dl.indices) + dl.batchSize - 1) / dl.batchSize
}

// BatchSize returns the configured batch size.
func (dl *DataLoader) BatchSize() int {
	return dl.batchSize
}

// Stats returns cache statistics
func (dl *DataLoader) Stats() string {
	return dl.cacheManager.Stats().String()
}

// GetCacheManager returns the cache manager for sharing between DataLoaders
func (dl *DataLoader) GetCacheManager() *CacheManager {
	return dl.cacheManager
}
