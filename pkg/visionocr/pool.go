package visionocr

import (
	"context"
	"fmt"

	"github.com/ivlev/visionocr/internal/config"
	"github.com/ivlev/visionocr/internal/system"
	"golang.org/x/sync/errgroup"
)

// handleMemory is the rough resident size of one handle, used to cap the
// default pool size on small hosts.
const handleMemory = 256 << 20

// Pool hands out handles so that each is used by one goroutine at a time.
// It is safe for concurrent use.
type Pool struct {
	free    chan *Handle
	handles []*Handle
}

// DefaultPoolSize is one handle per physical core, bounded by available
// memory.
func DefaultPoolSize() int {
	return system.Probe().RecommendedWorkers(handleMemory)
}

// NewPool creates size handles from opts in parallel. A size of zero or less
// picks DefaultPoolSize. If any handle fails, the ones already created are
// closed and the first error is returned.
func NewPool(ctx context.Context, opts config.Options, size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultPoolSize()
	}

	handles := make([]*Handle, size)
	g, gctx := errgroup.WithContext(ctx)
	for i := range handles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, err := New(opts)
			if err != nil {
				return fmt.Errorf("handle %d: %w", i, err)
			}
			handles[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, h := range handles {
			if h != nil {
				h.Close()
			}
		}
		return nil, err
	}

	p := &Pool{free: make(chan *Handle, size), handles: handles}
	for _, h := range handles {
		p.free <- h
	}
	return p, nil
}

// Size is the number of handles in the pool.
func (p *Pool) Size() int {
	return len(p.handles)
}

// Do runs fn with a handle held exclusively for the duration of the call.
// Waiting for a handle stops when ctx is done; a running fn is never
// interrupted.
func (p *Pool) Do(ctx context.Context, fn func(*Handle) error) error {
	var h *Handle
	select {
	case h = <-p.free:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { p.free <- h }()
	return fn(h)
}

// SystemBatch runs System over images concurrently, one call per handle at a
// time. Results are in input order. The first failure cancels images that
// have not started yet.
func (p *Pool) SystemBatch(ctx context.Context, images [][]byte, useCls bool) ([]Result, error) {
	results := make([]Result, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size())
	for i, img := range images {
		g.Go(func() error {
			return p.Do(gctx, func(h *Handle) error {
				res, err := h.System(img, useCls)
				if err != nil {
					return fmt.Errorf("image %d: %w", i, err)
				}
				results[i] = res
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close waits for every handle to be returned and releases them.
func (p *Pool) Close() error {
	var first error
	for range p.handles {
		h := <-p.free
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
