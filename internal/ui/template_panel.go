package ui

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/template-overlay/internal/model"
	"github.com/ytget/template-overlay/internal/panel"
)

// TemplatePanel renders template cards in store order. It implements
// panel.Presenter; every widget change is posted to the UI thread.
type TemplatePanel struct {
	localization *Localization

	// UI components
	container *fyne.Container
	list      *fyne.Container
	empty     *widget.Label

	// cards in display order; touched on the UI thread only
	cards []*TemplateCard

	// Callbacks
	onToggle func(id string)
	onRemove func(id string)
	onRename func(id, current string)
	onNotice func(panel.Notice)
}

var _ panel.Presenter = (*TemplatePanel)(nil)

// NewTemplatePanel creates an empty panel
func NewTemplatePanel(localization *Localization) *TemplatePanel {
	tp := &TemplatePanel{localization: localization}
	tp.createUI()
	return tp
}

// SetCallbacks sets the card action callbacks
func (tp *TemplatePanel) SetCallbacks(onToggle, onRemove func(id string), onRename func(id, current string)) {
	tp.onToggle = onToggle
	tp.onRemove = onRemove
	tp.onRename = onRename
}

// SetNoticeCallback sets where store operation outcomes are reported
func (tp *TemplatePanel) SetNoticeCallback(callback func(panel.Notice)) {
	tp.onNotice = callback
}

// Container returns the panel's root object
func (tp *TemplatePanel) Container() fyne.CanvasObject {
	return tp.container
}

// Cards returns the cards in display order
func (tp *TemplatePanel) Cards() []*TemplateCard {
	return append([]*TemplateCard(nil), tp.cards...)
}

// createUI creates the user interface for the panel
func (tp *TemplatePanel) createUI() {
	tp.list = container.NewVBox()
	tp.empty = widget.NewLabel(tp.localization.GetText(KeyNoTemplates))
	tp.empty.Alignment = fyne.TextAlignCenter

	scroll := container.NewVScroll(tp.list)
	scroll.SetMinSize(fyne.NewSize(CardMinWidth, PanelMinHeight))
	tp.container = container.NewStack(scroll, container.NewCenter(tp.empty))
}

// RenderNew creates a card with a loading placeholder
func (tp *TemplatePanel) RenderNew(id string, fields model.Fields) panel.Handle {
	card := NewTemplateCard(id, fields, tp.localization)
	card.SetCallbacks(tp.toggle, tp.remove, tp.rename)

	fyne.Do(func() {
		tp.cards = append(tp.cards, card)
		tp.list.Add(card)
		tp.updateEmpty()
	})
	return card
}

// ApplyUpdate changes only the named fields of the card
func (tp *TemplatePanel) ApplyUpdate(h panel.Handle, changed []model.FieldName, fields model.Fields) {
	card, ok := h.(*TemplateCard)
	if !ok {
		log.Printf("Warning: expected TemplateCard but got %T", h)
		return
	}
	fyne.Do(func() {
		card.ApplyFields(changed, fields)
	})
}

// SetThumbnail swaps the card placeholder for the preview
func (tp *TemplatePanel) SetThumbnail(h panel.Handle, img image.Image, err error) {
	card, ok := h.(*TemplateCard)
	if !ok {
		log.Printf("Warning: expected TemplateCard but got %T", h)
		return
	}
	fyne.Do(func() {
		card.SetThumbnail(img, err)
	})
}

// Remove detaches the card from the panel
func (tp *TemplatePanel) Remove(h panel.Handle) {
	card, ok := h.(*TemplateCard)
	if !ok {
		log.Printf("Warning: expected TemplateCard but got %T", h)
		return
	}
	fyne.Do(func() {
		for i, c := range tp.cards {
			if c == card {
				tp.cards = append(tp.cards[:i], tp.cards[i+1:]...)
				break
			}
		}
		tp.list.Remove(card)
		tp.updateEmpty()
	})
}

// Reorder arranges existing cards without recreating them
func (tp *TemplatePanel) Reorder(handles []panel.Handle) {
	cards := make([]*TemplateCard, 0, len(handles))
	for _, h := range handles {
		if card, ok := h.(*TemplateCard); ok {
			cards = append(cards, card)
		}
	}
	fyne.Do(func() {
		tp.cards = cards
		objects := make([]fyne.CanvasObject, len(cards))
		for i, c := range cards {
			objects[i] = c
		}
		tp.list.Objects = objects
		tp.list.Refresh()
	})
}

// Notify forwards a store operation outcome
func (tp *TemplatePanel) Notify(n panel.Notice) {
	if tp.onNotice != nil {
		tp.onNotice(n)
	}
}

// RefreshTexts re-applies localized strings to every card
func (tp *TemplatePanel) RefreshTexts() {
	fyne.Do(func() {
		tp.empty.SetText(tp.localization.GetText(KeyNoTemplates))
		for _, c := range tp.cards {
			c.RefreshTexts()
		}
	})
}

func (tp *TemplatePanel) updateEmpty() {
	if len(tp.cards) == 0 {
		tp.empty.Show()
	} else {
		tp.empty.Hide()
	}
}

func (tp *TemplatePanel) toggle(id string) {
	if tp.onToggle != nil {
		tp.onToggle(id)
	}
}

func (tp *TemplatePanel) remove(id string) {
	if tp.onRemove != nil {
		tp.onRemove(id)
	}
}

func (tp *TemplatePanel) rename(id, current string) {
	if tp.onRename != nil {
		tp.onRename(id, current)
	}
}
