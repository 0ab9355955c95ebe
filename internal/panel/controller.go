package panel

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ytget/template-overlay/internal/model"
	"github.com/ytget/template-overlay/internal/reconcile"
	"github.com/ytget/template-overlay/internal/thumbnail"
)

// Controller ties the template store, thumbnail cache, card registry and
// sync scheduler to the panel lifecycle. Cards exist only while open.
type Controller struct {
	store     Store
	cache     *thumbnail.Cache
	presenter Presenter
	registry  *Registry
	scheduler *reconcile.Scheduler

	mu            sync.Mutex
	open          bool
	cancelPreload context.CancelFunc
	preloads      sync.WaitGroup
}

// NewController creates a closed controller
func NewController(store Store, cache *thumbnail.Cache, presenter Presenter, interval time.Duration) *Controller {
	registry := NewRegistry(presenter, cache)
	scheduler := reconcile.NewScheduler(store, registry, interval)
	scheduler.Detach()
	return &Controller{
		store:     store,
		cache:     cache,
		presenter: presenter,
		registry:  registry,
		scheduler: scheduler,
	}
}

// Registry returns the card registry
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Scheduler returns the sync scheduler
func (c *Controller) Scheduler() *reconcile.Scheduler {
	return c.scheduler
}

// Open reconciles the panel with the store, preloads thumbnails and starts
// periodic sync. Opening an open panel only refreshes.
func (c *Controller) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		_, err := c.scheduler.Refresh()
		return err
	}

	c.open = true
	c.scheduler.Attach()
	result, err := c.scheduler.Refresh()
	if err != nil {
		log.Printf("Error: initial reconcile failed: %v", err)
	}
	log.Printf("Template panel opened: %d cards", len(result.Added))

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelPreload = cancel
	entries := reconcile.Collect(c.store)
	c.preloads.Add(1)
	go func() {
		defer c.preloads.Done()
		c.preload(ctx, entries)
	}()

	c.scheduler.Start()
	return err
}

// Close stops sync, removes every card and drops cached thumbnails. A
// refresh still running when Close starts finishes before the cards are
// removed; later refreshes do nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return
	}
	c.open = false

	if c.cancelPreload != nil {
		c.cancelPreload()
		c.cancelPreload = nil
	}
	c.preloads.Wait()
	c.scheduler.Stop()
	c.scheduler.Detach()
	c.registry.Close()
	c.cache.InvalidateAll()
	log.Printf("Template panel closed")
}

// IsOpen reports whether the panel is shown
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Refresh runs a full reconcile immediately. It does nothing while closed.
func (c *Controller) Refresh() (reconcile.Result, error) {
	if !c.IsOpen() {
		return reconcile.Result{}, nil
	}
	return c.scheduler.Refresh()
}

// Preload derives thumbnails for every template in the store
func (c *Controller) Preload(ctx context.Context) thumbnail.PreloadResult {
	return c.preload(ctx, reconcile.Collect(c.store))
}

func (c *Controller) preload(ctx context.Context, entries []model.Entry) thumbnail.PreloadResult {
	reqs := make([]thumbnail.Request, 0, len(entries))
	for _, e := range entries {
		reqs = append(reqs, thumbnail.Request{ID: e.ID, Source: e.Record.Source})
	}
	return c.cache.Preload(ctx, reqs)
}

// RemoveTemplate deletes the template from the store. On rejection the
// registry and cache are left untouched.
func (c *Controller) RemoveTemplate(id string) error {
	if !c.store.RemoveByIdentity(id) {
		err := &StoreOperationError{Op: OpRemove, ID: id}
		log.Printf("Error: %v", err)
		c.presenter.Notify(Notice{Op: OpRemove, ID: id, Err: err})
		return err
	}

	log.Printf("Template %s removed", id)
	c.presenter.Notify(Notice{Op: OpRemove, ID: id})
	c.refreshLogged()
	return nil
}

// ToggleTemplate flips the enabled flag of the template through the store
func (c *Controller) ToggleTemplate(id string) error {
	enabled := !c.store.IsEnabled(id)
	if err := c.store.SetEnabled(id, enabled); err != nil {
		opErr := &StoreOperationError{Op: OpToggle, ID: id, Err: err}
		log.Printf("Error: %v", opErr)
		c.presenter.Notify(Notice{Op: OpToggle, ID: id, Err: opErr})
		return opErr
	}

	log.Printf("Template %s enabled=%t", id, enabled)
	c.presenter.Notify(Notice{Op: OpToggle, ID: id, Enabled: enabled})
	c.refreshLogged()
	return nil
}

// HandleStoreEvent reacts to store hooks. Updated templates whose image
// source changed get a fresh thumbnail; every event reconciles while open.
func (c *Controller) HandleStoreEvent(ev model.StoreEvent) {
	if ev.Kind == model.StoreUpdated && c.registry.ReloadThumbnail(ev.ID, ev.Source) {
		log.Printf("Template %s image changed, reloading preview", ev.ID)
	}
	c.refreshLogged()
}

func (c *Controller) refreshLogged() {
	if _, err := c.Refresh(); err != nil {
		log.Printf("Error: %v", fmt.Errorf("refresh after store change: %w", err))
	}
}
