package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ytget/template-overlay/internal/model"
)

// DefaultMaxParallel bounds concurrent derivations during Preload
const DefaultMaxParallel = 4

// Request names a template and its source for Preload
type Request struct {
	ID     string
	Source string
}

// PreloadResult counts outcomes of a Preload batch
type PreloadResult struct {
	Ready  int
	Failed int
}

// entry is a cached bitmap or a cached failure, never both
type entry struct {
	img image.Image
	err *GenerationError
}

func (e entry) result() (image.Image, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.img, nil
}

// Cache memoizes previews per identity. Failures are cached too and are
// not retried until the identity is invalidated.
type Cache struct {
	decoder     Decoder
	size        int
	maxParallel int

	mu      sync.RWMutex
	entries map[string]entry
	pending map[string]uint64 // id -> flight token of the running derivation
	flights uint64
	epochs  map[string]uint64 // bumped by Invalidate(id)
	epoch   uint64            // bumped by InvalidateAll

	group singleflight.Group
}

// NewCache creates a cache deriving size×size previews with decoder
func NewCache(decoder Decoder, size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{
		decoder:     decoder,
		size:        size,
		maxParallel: DefaultMaxParallel,
		entries:     make(map[string]entry),
		pending:     make(map[string]uint64),
		epochs:      make(map[string]uint64),
	}
}

// SetMaxParallel sets the Preload fan-out limit
func (c *Cache) SetMaxParallel(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	c.maxParallel = n
	c.mu.Unlock()
}

// Size returns the preview edge length
func (c *Cache) Size() int {
	return c.size
}

// Get returns the preview for id, deriving it from source on first use.
// Concurrent callers for the same uncached id share one derivation.
func (c *Cache) Get(ctx context.Context, id, source string) (image.Image, error) {
	if e, ok := c.lookup(id); ok {
		return e.result()
	}

	v, _, _ := c.group.Do(id, func() (any, error) {
		if e, ok := c.lookup(id); ok {
			return e, nil
		}

		f := c.begin(id)
		e, cacheable := c.generate(ctx, id, source)
		c.finish(id, e, cacheable, f)
		return e, nil
	})
	return v.(entry).result()
}

// Invalidate drops the entry for id so the next Get derives again
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.epochs[id]++
	c.mu.Unlock()
	c.group.Forget(id)
}

// InvalidateAll drops every entry
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	c.entries = make(map[string]entry)
	c.epochs = make(map[string]uint64)
	c.epoch++
	c.mu.Unlock()

	for _, id := range ids {
		c.group.Forget(id)
	}
}

// Preload derives previews for a batch concurrently. One failing request
// never aborts the others; Preload returns once all have settled.
func (c *Cache) Preload(ctx context.Context, reqs []Request) PreloadResult {
	c.mu.RLock()
	limit := c.maxParallel
	c.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(limit)

	var ready, failed atomic.Int64
	for _, req := range reqs {
		req := req
		g.Go(func() error {
			if _, err := c.Get(ctx, req.ID, req.Source); err != nil {
				failed.Add(1)
			} else {
				ready.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := PreloadResult{Ready: int(ready.Load()), Failed: int(failed.Load())}
	log.Printf("Thumbnail preload finished: %d ready, %d failed", result.Ready, result.Failed)
	return result
}

// State reports the cache state of id
func (c *Cache) State(id string) model.ThumbnailState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.entries[id]; ok {
		if e.err != nil {
			return model.ThumbnailFailed
		}
		return model.ThumbnailReady
	}
	if _, ok := c.pending[id]; ok {
		return model.ThumbnailPending
	}
	return model.ThumbnailAbsent
}

// Len returns the number of cached entries, failures included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(id string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// flight identifies one derivation and the epochs it started under
type flight struct {
	token       uint64
	globalEpoch uint64
	idEpoch     uint64
}

func (c *Cache) begin(id string) flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights++
	c.pending[id] = c.flights
	return flight{token: c.flights, globalEpoch: c.epoch, idEpoch: c.epochs[id]}
}

// finish stores e unless the id was invalidated while it was derived. A
// newer derivation of the same id keeps its pending mark.
func (c *Cache) finish(id string, e entry, cacheable bool, f flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[id] == f.token {
		delete(c.pending, id)
	}

	if !cacheable {
		return
	}
	if c.epoch != f.globalEpoch || c.epochs[id] != f.idEpoch {
		log.Printf("Thumbnail for %s resolved after invalidation, dropping", id)
		return
	}
	c.entries[id] = e
}

// generate runs decode, validation and draw. Cancellation is reported but
// not cached: it says nothing about the source.
func (c *Cache) generate(ctx context.Context, id, source string) (entry, bool) {
	img, err := c.decode(ctx, source)
	if err != nil {
		return c.fail(id, StageDecode, err), ctx.Err() == nil
	}

	thumb, err := Derive(img, c.size)
	if err != nil {
		stage := StageDraw
		if errors.Is(err, ErrInvalidDimension) {
			stage = StageValidate
		}
		return c.fail(id, stage, err), true
	}
	return entry{img: thumb}, true
}

// decode turns a decoder panic into a cacheable decode failure
func (c *Cache) decode(ctx context.Context, source string) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrDecoderPanic, r)
		}
	}()
	return c.decoder.Decode(ctx, source)
}

func (c *Cache) fail(id string, stage Stage, err error) entry {
	genErr := &GenerationError{ID: id, Stage: stage, Class: Classify(err), Err: err}
	log.Printf("Thumbnail generation failed for %s: stage=%s class=%s: %v", id, stage, genErr.Class, err)
	return entry{err: genErr}
}
