// Package dataset discovers labeled images laid out one directory per class.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultExtensions are the image file extensions recognized when none are
// given. Matching is case-insensitive.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// ImageFolderDataset represents a dataset loaded from a directory structure
// where each subdirectory represents a class
type ImageFolderDataset struct {
	root       string
	imagePaths []string
	labels     []int
	classNames []string
	classToIdx map[string]int
}

// NewImageFolderDataset scans root/<class>/<image>. Classes are sorted by
// name and labeled by their position. Every class directory must hold at
// least one recognized image.
func NewImageFolderDataset(root string, extensions []string) (*ImageFolderDataset, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("dataset root %s is not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list classes in %s", root)
	}

	dataset := &ImageFolderDataset{
		root:       root,
		classToIdx: make(map[string]int),
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dataset.classNames = append(dataset.classNames, e.Name())
		}
	}
	if len(dataset.classNames) == 0 {
		return nil, errors.Errorf("no class directories found in %s", root)
	}
	sort.Strings(dataset.classNames)

	var empty []string
	for classIdx, className := range dataset.classNames {
		dataset.classToIdx[className] = classIdx

		files, err := os.ReadDir(filepath.Join(root, className))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list class %s", className)
		}
		found := 0
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || strings.HasPrefix(name, ".") || !allowed[strings.ToLower(filepath.Ext(name))] {
				continue
			}
			dataset.imagePaths = append(dataset.imagePaths, filepath.Join(root, className, name))
			dataset.labels = append(dataset.labels, classIdx)
			found++
		}
		if found == 0 {
			empty = append(empty, className)
		}
	}

	if len(empty) > 0 {
		return nil, errors.Errorf("found no valid image files in class directories %v of %s (supported extensions: %s)",
			empty, root, strings.Join(extensions, ", "))
	}

	return dataset, nil
}

// Root returns the scanned directory.
func (d *ImageFolderDataset) Root() string {
	return d.root
}

// Len returns the number of items in the dataset
func (d *ImageFolderDataset) Len() int {
	return len(d.imagePaths)
}

// GetItem returns the image path and label at the given index
func (d *ImageFolderDataset) GetItem(index int) (string, int, error) {
	if index < 0 || index >= len(d.imagePaths) {
		return "", 0, errors.Errorf("index %d out of range [0, %d)", index, len(d.imagePaths))
	}
	return d.imagePaths[index], d.labels[index], nil
}

// NumClasses returns the number of classes
func (d *ImageFolderDataset) NumClasses() int {
	return len(d.classNames)
}

// ClassNames returns a copy of the class names in label order.
func (d *ImageFolderDataset) ClassNames() []string {
	return append([]string(nil), d.classNames...)
}

// ClassIndex returns the label assigned to className.
func (d *ImageFolderDataset) ClassIndex(className string) (int, bool) {
	idx, ok := d.classToIdx[className]
	return idx, ok
}

// ClassDistribution returns the distribution of samples per class
func (d *ImageFolderDataset) ClassDistribution() map[string]int {
	dist := make(map[string]int)
	for _, label := range d.labels {
		dist[d.classNames[label]]++
	}
	return dist
}

// String returns a string representation of the dataset
func (d *ImageFolderDataset) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ImageFolderDataset(%s): %d samples, %d classes\n", d.root, len(d.imagePaths), len(d.classNames)))
	sb.WriteString("Class distribution:\n")

	dist := d.ClassDistribution()
	for _, className := range d.classNames {
		sb.WriteString(fmt.Sprintf("  %s: %d samples\n", className, dist[className]))
	}

	return sb.String()
}
