package panel

import (
	"context"
	"image"

	"github.com/ytget/template-overlay/internal/model"
	"github.com/ytget/template-overlay/internal/reconcile"
)

// Handle is an opaque reference to a rendered card
type Handle any

// Presenter renders cards. The registry calls it; it never calls back into
// the registry.
type Presenter interface {
	RenderNew(id string, fields model.Fields) Handle
	ApplyUpdate(h Handle, changed []model.FieldName, fields model.Fields)
	// SetThumbnail swaps the placeholder for img, or a failure placeholder when err is set
	SetThumbnail(h Handle, img image.Image, err error)
	Remove(h Handle)
	Reorder(handles []Handle)
	Notify(n Notice)
}

// Thumbnailer provides previews; satisfied by *thumbnail.Cache
type Thumbnailer interface {
	Get(ctx context.Context, id, source string) (image.Image, error)
	Invalidate(id string)
}

// Store is the template store as used by the controller
type Store interface {
	reconcile.Source
	IsEnabled(id string) bool
	RemoveByIdentity(id string) bool
	SetEnabled(id string, enabled bool) error
}
