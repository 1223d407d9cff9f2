package dataloader

import (
	"github.com/tsawler/go-chessnet/vision/preprocessing"
)

// CreateSharedDataLoaders creates a shuffled, augmented train loader and an
// in-order, unaugmented test loader backed by one cache. config.Shuffle and
// config.Transforms describe the train loader; the test loader ignores them.
func CreateSharedDataLoaders(trainDataset, testDataset Dataset, processor *preprocessing.ImageProcessor, config Config) (*DataLoader, *DataLoader, error) {
	size := processor.TargetSize()
	cacheSize := config.MaxCacheSize
	if cacheSize == 0 {
		cacheSize = trainDataset.Len() + testDataset.Len()
	}
	sharedCache := NewCacheManager(cacheSize, 3*size*size)

	trainConfig := config
	trainConfig.CacheManager = sharedCache
	trainLoader, err := NewDataLoader(trainDataset, processor, trainConfig)
	if err != nil {
		return nil, nil, err
	}

	testConfig := config
	testConfig.CacheManager = sharedCache
	testConfig.Shuffle = false
	testConfig.Transforms = nil
	testLoader, err := NewDataLoader(testDataset, processor, testConfig)
	if err != nil {
		return nil, nil, err
	}

	return trainLoader, testLoader, nil
}
