package thumbnail

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/template-overlay/internal/model"
)

// countingDecoder returns img or err and counts calls
type countingDecoder struct {
	calls atomic.Int32
	img   image.Image
	err   error
	gate  chan struct{} // when set, Decode blocks until closed
}

func (d *countingDecoder) Decode(ctx context.Context, source string) (image.Image, error) {
	d.calls.Add(1)
	if d.gate != nil {
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.img, nil
}

func TestCache_GetIsCoherent(t *testing.T) {
	dec := &countingDecoder{img: splitImage(8, 8)}
	cache := NewCache(dec, 16)

	first, err := cache.Get(context.Background(), "1 a", "src")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := cache.Get(context.Background(), "1 a", "src")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if first != second {
		t.Error("repeated Get should return the same bitmap")
	}
	if calls := dec.calls.Load(); calls != 1 {
		t.Errorf("expected 1 decode, got %d", calls)
	}
	if state := cache.State("1 a"); state != model.ThumbnailReady {
		t.Errorf("expected state ready, got %s", state)
	}
}

func TestCache_FailureIsCached(t *testing.T) {
	dec := &countingDecoder{err: image.ErrFormat}
	cache := NewCache(dec, 16)

	img, err := cache.Get(context.Background(), "x", "src")
	if img != nil || err == nil {
		t.Fatalf("expected failure, got img=%v err=%v", img, err)
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if genErr.Stage != StageDecode || genErr.Class != ClassFormat {
		t.Errorf("unexpected stage/class: %s/%s", genErr.Stage, genErr.Class)
	}

	_, err2 := cache.Get(context.Background(), "x", "src")
	if err2 != err {
		t.Error("second Get should return the cached failure sentinel")
	}
	if calls := dec.calls.Load(); calls != 1 {
		t.Errorf("decoder should not be called again, got %d calls", calls)
	}
	if state := cache.State("x"); state != model.ThumbnailFailed {
		t.Errorf("expected state failed, got %s", state)
	}
}

func TestCache_ZeroDimensionsFailValidation(t *testing.T) {
	dec := &countingDecoder{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}
	cache := NewCache(dec, 16)

	_, err := cache.Get(context.Background(), "z", "src")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Stage != StageValidate || genErr.Class != ClassInvalidState {
		t.Errorf("unexpected stage/class: %s/%s", genErr.Stage, genErr.Class)
	}
}

func TestCache_Invalidate(t *testing.T) {
	dec := &countingDecoder{img: splitImage(4, 4)}
	cache := NewCache(dec, 16)
	ctx := context.Background()

	cache.Get(ctx, "a", "src")
	cache.Get(ctx, "b", "src")
	cache.Invalidate("a")

	if state := cache.State("a"); state != model.ThumbnailAbsent {
		t.Errorf("expected absent after invalidate, got %s", state)
	}
	if state := cache.State("b"); state != model.ThumbnailReady {
		t.Errorf("other entries should survive, got %s", state)
	}

	cache.Get(ctx, "a", "src")
	if calls := dec.calls.Load(); calls != 3 {
		t.Errorf("expected re-derivation after invalidate, got %d calls", calls)
	}

	cache.InvalidateAll()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestCache_CancellationIsNotCached(t *testing.T) {
	cache := NewCache(DecoderFunc(func(ctx context.Context, source string) (image.Image, error) {
		return nil, ctx.Err()
	}), 16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.Get(ctx, "c", "src"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if state := cache.State("c"); state != model.ThumbnailAbsent {
		t.Errorf("cancelled derivation should not be cached, got %s", state)
	}
}

func TestCache_ResultAfterInvalidateIsDropped(t *testing.T) {
	dec := &countingDecoder{img: splitImage(4, 4), gate: make(chan struct{})}
	cache := NewCache(dec, 16)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cache.Get(context.Background(), "late", "src")
	}()

	waitFor(t, func() bool { return cache.State("late") == model.ThumbnailPending })
	cache.Invalidate("late")
	close(dec.gate)
	<-done

	if state := cache.State("late"); state != model.ThumbnailAbsent {
		t.Errorf("late result should be dropped, got %s", state)
	}
}

func TestCache_DecoderPanicIsCached(t *testing.T) {
	var calls atomic.Int32
	cache := NewCache(DecoderFunc(func(ctx context.Context, source string) (image.Image, error) {
		calls.Add(1)
		panic("corrupt chunk")
	}), 16)

	_, err := cache.Get(context.Background(), "p", "src")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Stage != StageDecode || genErr.Class != ClassUnknown {
		t.Errorf("unexpected stage/class: %s/%s", genErr.Stage, genErr.Class)
	}
	if !errors.Is(err, ErrDecoderPanic) {
		t.Errorf("expected ErrDecoderPanic, got %v", err)
	}
	if state := cache.State("p"); state != model.ThumbnailFailed {
		t.Errorf("expected state failed, got %s", state)
	}

	if _, err2 := cache.Get(context.Background(), "p", "src"); err2 != err {
		t.Error("second Get should return the cached failure")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("decoder should run once, got %d calls", n)
	}
}

func TestCache_StaleDerivationKeepsNewerPending(t *testing.T) {
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	var calls atomic.Int32
	cache := NewCache(DecoderFunc(func(ctx context.Context, source string) (image.Image, error) {
		n := calls.Add(1)
		<-gates[n-1]
		return splitImage(4, 4), nil
	}), 16)

	first := make(chan struct{})
	go func() {
		defer close(first)
		cache.Get(context.Background(), "r", "old")
	}()
	waitFor(t, func() bool { return calls.Load() == 1 })

	cache.Invalidate("r")
	second := make(chan struct{})
	go func() {
		defer close(second)
		cache.Get(context.Background(), "r", "new")
	}()
	waitFor(t, func() bool { return calls.Load() == 2 })

	close(gates[0])
	<-first
	if state := cache.State("r"); state != model.ThumbnailPending {
		t.Errorf("newer derivation should still be pending, got %s", state)
	}

	close(gates[1])
	<-second
	if state := cache.State("r"); state != model.ThumbnailReady {
		t.Errorf("expected ready after newer derivation, got %s", state)
	}
}

func TestCache_ConcurrentGetsShareDerivation(t *testing.T) {
	dec := &countingDecoder{img: splitImage(4, 4), gate: make(chan struct{})}
	cache := NewCache(dec, 16)

	var wg sync.WaitGroup
	results := make([]image.Image, 5)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = cache.Get(context.Background(), "same", "src")
		}()
	}

	waitFor(t, func() bool { return dec.calls.Load() >= 1 })
	close(dec.gate)
	wg.Wait()

	if calls := dec.calls.Load(); calls != 1 {
		t.Errorf("expected a single derivation, got %d", calls)
	}
	for i, img := range results {
		if img != results[0] {
			t.Errorf("result %d differs from first result", i)
		}
	}
}

func TestCache_PreloadIsolatesFailures(t *testing.T) {
	good := splitImage(4, 4)
	cache := NewCache(DecoderFunc(func(ctx context.Context, source string) (image.Image, error) {
		if source == "bad" {
			return nil, ErrMalformedImage
		}
		return good, nil
	}), 16)

	result := cache.Preload(context.Background(), []Request{
		{ID: "1", Source: "ok"},
		{ID: "2", Source: "bad"},
		{ID: "3", Source: "ok"},
	})

	if result.Ready != 2 || result.Failed != 1 {
		t.Errorf("unexpected preload result %+v", result)
	}
	if cache.State("2") != model.ThumbnailFailed {
		t.Error("failing request should be cached as failed")
	}
	if cache.State("1") != model.ThumbnailReady || cache.State("3") != model.ThumbnailReady {
		t.Error("sibling requests should succeed")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
