package parallel

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sync/errgroup"
)

// Workers returns the number of goroutines compute loops should use.
// It prefers the logical core count reported by cpuid and falls back to
// runtime.NumCPU when detection fails.
func Workers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ForEach runs body(i) for i in [0, length) with at most limit goroutines.
// A limit <= 0 uses Workers(). The first error returned by body is returned
// after every started iteration finishes.
func ForEach(length, limit int, body func(i int) error) error {
	if length <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = Workers()
	}
	if limit == 1 || length == 1 {
		for i := 0; i < length; i++ {
			if err := body(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < length; i++ {
		g.Go(func() error {
			return body(i)
		})
	}
	return g.Wait()
}

// Range splits [0, length) into contiguous chunks, one per worker, and calls
// body(start, end) for each chunk concurrently. Use it for tight loops where
// one goroutine per element would dominate the work.
func Range(length, limit int, body func(start, end int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = Workers()
	}
	if limit > length {
		limit = length
	}
	chunk := (length + limit - 1) / limit

	_ = ForEach(limit, limit, func(w int) error {
		start := w * chunk
		end := start + chunk
		if end > length {
			end = length
		}
		if start < end {
			body(start, end)
		}
		return nil
	})
}

// Describe returns a one-line summary of the host CPU.
func Describe() string {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = runtime.GOARCH
	}
	return fmt.Sprintf("%s, %d logical cores, AVX2=%t", brand, Workers(), cpuid.CPU.Supports(cpuid.AVX2))
}
