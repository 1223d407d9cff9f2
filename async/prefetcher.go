// Package async overlaps batch loading with training by decoding the next
// batches on a background goroutine.
package async

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/tsawler/go-chessnet/vision/dataloader"
)

// DefaultPrefetchDepth is the number of batches loaded ahead when the
// configured depth is not positive.
const DefaultPrefetchDepth = 2

// Source produces batches in epochs. *dataloader.DataLoader implements it.
type Source interface {
	Reset()
	NextBatch() (*dataloader.Batch, error)
	NumBatches() int
}

type result struct {
	batch *dataloader.Batch
	err   error
}

// Prefetcher wraps a Source and keeps up to depth batches ready. It is a
// Source itself. Only one goroutine may consume from it.
type Prefetcher struct {
	src    Source
	depth  int
	ch     chan result
	cancel context.CancelFunc

	produced atomic.Int64
	closed   bool
}

// NewPrefetcher returns a prefetcher over src. Loading starts with the first
// call to NextBatch.
func NewPrefetcher(src Source, depth int) (*Prefetcher, error) {
	if src == nil {
		return nil, errors.New("prefetcher source cannot be nil")
	}
	if depth <= 0 {
		depth = DefaultPrefetchDepth
	}
	return &Prefetcher{src: src, depth: depth}, nil
}

func (p *Prefetcher) start() {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan result, p.depth)
	p.ch, p.cancel = ch, cancel

	go func() {
		defer close(ch)
		for ctx.Err() == nil {
			b, err := p.src.NextBatch()
			if b != nil {
				p.produced.Add(1)
			}
			select {
			case ch <- result{batch: b, err: err}:
			case <-ctx.Done():
				return
			}
			if b == nil || err != nil {
				return
			}
		}
	}()
}

// stop cancels the producer and waits for it to exit.
func (p *Prefetcher) stop() {
	if p.ch == nil {
		return
	}
	p.cancel()
	for range p.ch {
	}
	p.ch, p.cancel = nil, nil
}

// NextBatch returns the next prefetched batch, or nil at the end of the
// epoch. A load error ends the epoch.
func (p *Prefetcher) NextBatch() (*dataloader.Batch, error) {
	if p.closed {
		return nil, errors.New("prefetcher is closed")
	}
	if p.ch == nil {
		p.start()
	}
	r, ok := <-p.ch
	if !ok {
		return nil, nil
	}
	return r.batch, r.err
}

// Reset discards prefetched batches and starts a new epoch of the source.
func (p *Prefetcher) Reset() {
	p.stop()
	p.src.Reset()
}

// NumBatches reports the source's batch count.
func (p *Prefetcher) NumBatches() int {
	return p.src.NumBatches()
}

// Depth is the number of batches loaded ahead.
func (p *Prefetcher) Depth() int {
	return p.depth
}

// Produced counts the batches loaded from the source so far, including
// batches discarded by Reset.
func (p *Prefetcher) Produced() int64 {
	return p.produced.Load()
}

// Close stops the background goroutine. Further NextBatch calls fail.
func (p *Prefetcher) Close() {
	p.stop()
	p.closed = true
}
