package ui

import (
	"fmt"
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/template-overlay/internal/model"
)

// placeholderEdge is the pixel size of the generated placeholder bitmaps
const placeholderEdge = 32

// TemplateCard is one row of the template panel: preview, name, coords,
// pixel count and the per-template actions.
type TemplateCard struct {
	widget.BaseWidget

	id           string
	fields       model.Fields
	failed       bool
	localization *Localization

	// UI components
	thumb        *canvas.Image
	nameLabel    *widget.Label
	coordsLabel  *widget.Label
	pixelsLabel  *widget.Label
	enabledCheck *widget.Check
	renameBtn    *widget.Button
	removeBtn    *widget.Button

	// set while the check is changed programmatically
	syncing bool

	// Callbacks
	onToggle func(id string)
	onRemove func(id string)
	onRename func(id, current string)
}

// NewTemplateCard creates a card showing fields with a loading placeholder
func NewTemplateCard(id string, fields model.Fields, localization *Localization) *TemplateCard {
	tc := &TemplateCard{
		id:           id,
		fields:       fields,
		localization: localization,
	}
	tc.ExtendBaseWidget(tc)
	tc.createUI()
	tc.updateFromFields()
	return tc
}

// SetCallbacks sets the action callbacks
func (tc *TemplateCard) SetCallbacks(onToggle, onRemove func(id string), onRename func(id, current string)) {
	tc.onToggle = onToggle
	tc.onRemove = onRemove
	tc.onRename = onRename
}

// ID returns the template identity shown by the card
func (tc *TemplateCard) ID() string {
	return tc.id
}

// Fields returns the fields currently shown
func (tc *TemplateCard) Fields() model.Fields {
	return tc.fields
}

// ThumbnailFailed reports whether the failure placeholder is shown
func (tc *TemplateCard) ThumbnailFailed() bool {
	return tc.failed
}

// Thumbnail returns the bitmap currently shown
func (tc *TemplateCard) Thumbnail() image.Image {
	return tc.thumb.Image
}

// ApplyFields updates the named fields only
func (tc *TemplateCard) ApplyFields(changed []model.FieldName, fields model.Fields) {
	tc.fields = tc.fields.Merge(fields, changed)
	for _, name := range changed {
		switch name {
		case model.FieldDisplayName:
			tc.nameLabel.SetText(displayName(tc.fields.Name))
		case model.FieldCoords:
			tc.coordsLabel.SetText(tc.fields.Coords.String())
		case model.FieldPixelCount:
			tc.pixelsLabel.SetText(tc.pixelsText())
		case model.FieldEnabled:
			tc.setChecked(tc.fields.Enabled)
		}
	}
}

// SetThumbnail replaces the placeholder with img, or the failure
// placeholder when err is set
func (tc *TemplateCard) SetThumbnail(img image.Image, err error) {
	if err != nil || img == nil {
		tc.failed = true
		tc.thumb.Image = FailedImage(placeholderEdge)
	} else {
		tc.failed = false
		tc.thumb.Image = img
	}
	tc.thumb.Refresh()
	tc.pixelsLabel.SetText(tc.pixelsText())
}

func (tc *TemplateCard) pixelsText() string {
	text := fmt.Sprintf(tc.localization.GetText(KeyPixels), tc.fields.PixelCount)
	if tc.failed {
		text += " · " + tc.localization.GetText(KeyPreviewFailed)
	}
	return text
}

// RefreshTexts re-applies localized strings
func (tc *TemplateCard) RefreshTexts() {
	tc.enabledCheck.Text = tc.localization.GetText(KeyEnabled)
	tc.enabledCheck.Refresh()
	tc.renameBtn.SetText(tc.localization.GetText(KeyRename))
	tc.removeBtn.SetText(tc.localization.GetText(KeyRemove))
	tc.pixelsLabel.SetText(tc.pixelsText())
}

// createUI creates the UI components
func (tc *TemplateCard) createUI() {
	tc.thumb = canvas.NewImageFromImage(PlaceholderImage(placeholderEdge))
	tc.thumb.FillMode = canvas.ImageFillContain
	tc.thumb.ScaleMode = canvas.ImageScalePixels
	tc.thumb.SetMinSize(fyne.NewSize(ThumbnailEdge, ThumbnailEdge))

	tc.nameLabel = widget.NewLabel("")
	tc.nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	tc.nameLabel.Truncation = fyne.TextTruncateEllipsis

	tc.coordsLabel = widget.NewLabel("")
	tc.coordsLabel.TextStyle = fyne.TextStyle{Monospace: true}

	tc.pixelsLabel = widget.NewLabel("")
	tc.pixelsLabel.Alignment = fyne.TextAlignTrailing

	tc.enabledCheck = widget.NewCheck(tc.localization.GetText(KeyEnabled), func(bool) {
		if tc.syncing {
			return
		}
		// the store decides; revert until the change comes back through sync
		tc.setChecked(tc.fields.Enabled)
		if tc.onToggle != nil {
			tc.onToggle(tc.id)
		} else {
			log.Printf("onToggle callback is nil for template %s", tc.id)
		}
	})

	tc.renameBtn = widget.NewButton(tc.localization.GetText(KeyRename), func() {
		if tc.onRename != nil {
			tc.onRename(tc.id, tc.fields.Name)
		}
	})
	tc.renameBtn.Importance = widget.LowImportance

	tc.removeBtn = widget.NewButton(tc.localization.GetText(KeyRemove), func() {
		if tc.onRemove != nil {
			tc.onRemove(tc.id)
		} else {
			log.Printf("onRemove callback is nil for template %s", tc.id)
		}
	})
	tc.removeBtn.Importance = widget.DangerImportance
}

// updateFromFields writes every field into the labels
func (tc *TemplateCard) updateFromFields() {
	tc.nameLabel.SetText(displayName(tc.fields.Name))
	tc.coordsLabel.SetText(tc.fields.Coords.String())
	tc.pixelsLabel.SetText(tc.pixelsText())
	tc.setChecked(tc.fields.Enabled)
}

func (tc *TemplateCard) setChecked(enabled bool) {
	tc.syncing = true
	tc.enabledCheck.SetChecked(enabled)
	tc.syncing = false
}

// CreateRenderer creates the widget renderer
func (tc *TemplateCard) CreateRenderer() fyne.WidgetRenderer {
	info := container.NewVBox(tc.nameLabel, container.NewHBox(tc.coordsLabel, tc.pixelsLabel))
	actions := container.NewHBox(tc.enabledCheck, tc.renameBtn, tc.removeBtn)
	row := container.NewBorder(nil, nil, tc.thumb, actions, info)
	return widget.NewSimpleRenderer(container.NewVBox(row, widget.NewSeparator()))
}

// MinSize keeps cards readable in a narrow panel
func (tc *TemplateCard) MinSize() fyne.Size {
	min := tc.BaseWidget.MinSize()
	return fyne.NewSize(max(min.Width, CardMinWidth), max(min.Height, CardMinHeight))
}

// displayName shows a dash for templates without a name
func displayName(name string) string {
	if name == "" {
		return DashPlaceholder
	}
	return name
}
