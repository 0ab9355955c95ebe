package ui

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/template-overlay/internal/config"
	"github.com/ytget/template-overlay/internal/model"
	"github.com/ytget/template-overlay/internal/panel"
	"github.com/ytget/template-overlay/internal/platform"
	"github.com/ytget/template-overlay/internal/store"
	"github.com/ytget/template-overlay/internal/thumbnail"
)

// LocalAuthorID owns templates added from this app
const LocalAuthorID = "local"

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization

	store      store.TemplateStore
	cache      *thumbnail.Cache
	decoder    thumbnail.Decoder
	controller *panel.Controller
	panel      *TemplatePanel

	// UI components
	panelBtn   *widget.Button
	refreshBtn *widget.Button
	addBtn     *widget.Button
	body       *fyne.Container

	// Notification bar
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationMu        sync.Mutex
	notificationSeq       int
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, settings *config.Settings, st store.TemplateStore, cache *thumbnail.Cache, decoder thumbnail.Decoder) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		settings:     settings,
		localization: localization,
		store:        st,
		cache:        cache,
		decoder:      decoder,
	}

	ui.panel = NewTemplatePanel(localization)
	ui.panel.SetCallbacks(ui.onToggleTemplate, ui.onRemoveTemplate, ui.onRenameTemplate)
	ui.panel.SetNoticeCallback(ui.onNotice)

	ui.controller = panel.NewController(st, cache, ui.panel, settings.GetSyncInterval())
	st.SetUpdateCallback(ui.controller.HandleStoreEvent)
	ui.controller.Scheduler().SetErrorHandler(ui.onSyncError)

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.setupUI()
	return ui
}

// Controller returns the panel controller
func (ui *RootUI) Controller() *panel.Controller {
	return ui.controller
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.panelBtn = widget.NewButton(ui.localization.GetText(KeyShowPanel), ui.onTogglePanel)
	ui.panelBtn.Importance = widget.HighImportance

	ui.refreshBtn = widget.NewButton(IconRefresh+" "+ui.localization.GetText(KeyRefresh), ui.onRefresh)
	ui.refreshBtn.Disable()

	ui.addBtn = widget.NewButton(IconAdd+" "+ui.localization.GetText(KeyAddTemplate), ui.onAddTemplate)

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	topPanel := container.NewBorder(nil, nil,
		container.NewHBox(settingsBtn, ui.panelBtn),
		container.NewHBox(ui.refreshBtn, ui.addBtn),
	)

	// Notification panel under the toolbar (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	closeBtn := widget.NewButton(IconClose, ui.hideNotification)
	closeBtn.Importance = widget.LowImportance
	ui.notificationContainer = container.NewBorder(nil, nil, nil, closeBtn, ui.notificationLabel)
	ui.notificationContainer.Hide()

	ui.body = container.NewStack()

	content := container.NewBorder(
		container.NewVBox(topPanel, ui.notificationContainer),
		nil,
		nil,
		nil,
		ui.body,
	)
	ui.window.SetContent(content)
	log.Printf("UI setup completed successfully")
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)
	revealItem := fyne.NewMenuItem(ui.localization.GetText(KeyReveal), ui.onRevealManifest)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem, revealItem),
		languageMenu,
	))
}

// OpenPanel shows the template panel and starts syncing it with the store
func (ui *RootUI) OpenPanel() {
	if err := ui.controller.Open(); err != nil {
		log.Printf("Error opening template panel: %v", err)
	}
	ui.body.Objects = []fyne.CanvasObject{ui.panel.Container()}
	ui.body.Refresh()
	ui.panelBtn.SetText(ui.localization.GetText(KeyHidePanel))
	ui.refreshBtn.Enable()
}

// ClosePanel hides the panel and releases its cards and previews
func (ui *RootUI) ClosePanel() {
	ui.controller.Close()
	ui.body.Objects = nil
	ui.body.Refresh()
	ui.panelBtn.SetText(ui.localization.GetText(KeyShowPanel))
	ui.refreshBtn.Disable()
}

// Shutdown stops background work; called when the window closes
func (ui *RootUI) Shutdown() {
	ui.controller.Close()
}

func (ui *RootUI) onTogglePanel() {
	if ui.controller.IsOpen() {
		ui.ClosePanel()
	} else {
		ui.OpenPanel()
	}
}

func (ui *RootUI) onRefresh() {
	go func() {
		result, err := ui.controller.Refresh()
		if err != nil {
			log.Printf("Error refreshing templates: %v", err)
			return
		}
		log.Printf("Manual refresh: %d added, %d updated, %d removed", len(result.Added), len(result.Updated), len(result.Removed))
	}()
}

func (ui *RootUI) onToggleTemplate(id string) {
	go func() {
		_ = ui.controller.ToggleTemplate(id) // reported through onNotice
	}()
}

func (ui *RootUI) onRemoveTemplate(id string) {
	go func() {
		_ = ui.controller.RemoveTemplate(id) // reported through onNotice
	}()
}

// onRenameTemplate asks for a display name and stores it
func (ui *RootUI) onRenameTemplate(id, current string) {
	entry := widget.NewEntry()
	entry.SetText(current)
	items := []*widget.FormItem{widget.NewFormItem(ui.localization.GetText(KeyDisplayName), entry)}

	dialog.ShowForm(ui.localization.GetText(KeyRename), ui.localization.GetText(KeySave), ui.localization.GetText(KeyCancel), items, func(ok bool) {
		if !ok {
			return
		}
		name := entry.Text
		go func() {
			if err := ui.store.SetDisplayName(id, name); err != nil {
				log.Printf("Error renaming template %s: %v", id, err)
				ui.showNotification(ui.localization.GetText(KeyRenameFailed) + ": " + err.Error())
			}
		}()
	}, ui.window)
}

// onAddTemplate picks an image file and adds it as a template
func (ui *RootUI) onAddTemplate() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		ui.showAddForm(path)
	}, ui.window)
	fd.SetFilter(storage.NewExtensionFileFilter(TemplateImageExtensions))
	fd.Show()
}

func (ui *RootUI) showAddForm(path string) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	coordsEntry := widget.NewEntry()
	coordsEntry.SetPlaceHolder("0, 0, 0, 0")
	coordsEntry.Validator = func(s string) error {
		_, err := ParseCoords(s)
		return err
	}

	items := []*widget.FormItem{
		widget.NewFormItem(ui.localization.GetText(KeyDisplayName), nameEntry),
		widget.NewFormItem("Coords", coordsEntry),
	}
	dialog.ShowForm(ui.localization.GetText(KeyAddTemplate), ui.localization.GetText(KeySave), ui.localization.GetText(KeyCancel), items, func(ok bool) {
		if !ok {
			return
		}
		coords, _ := ParseCoords(coordsEntry.Text)
		name := nameEntry.Text
		go ui.addTemplate(path, name, coords)
	}, ui.window)
}

func (ui *RootUI) addTemplate(path, name string, coords model.Coords) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	img, err := ui.decoder.Decode(ctx, path)
	if err != nil {
		log.Printf("Error decoding template %s: %v", path, err)
		ui.showNotification(ui.localization.GetText(KeyAddFailed) + ": " + err.Error())
		return
	}

	record := model.TemplateRecord{
		SortID:     model.IntPtr(ui.nextSortID()),
		AuthorID:   LocalAuthorID,
		Name:       name,
		Coords:     coords,
		PixelCount: thumbnail.CountOpaque(img),
		Source:     path,
	}
	if _, err := ui.store.Add(record); err != nil {
		log.Printf("Error adding template %s: %v", path, err)
		ui.showNotification(ui.localization.GetText(KeyAddFailed) + ": " + err.Error())
		return
	}
	ui.showNotification(ui.localization.GetText(KeyTemplateAdded))
}

// nextSortID returns one past the highest local sort id
func (ui *RootUI) nextSortID() int {
	next := 1
	for _, r := range ui.store.Templates() {
		if r.AuthorID == LocalAuthorID && r.SortID != nil && *r.SortID >= next {
			next = *r.SortID + 1
		}
	}
	return next
}

// ParseCoords reads "tileX, tileY, pixelX, pixelY"; empty means all zero
func ParseCoords(s string) (model.Coords, error) {
	var c model.Coords
	s = strings.TrimSpace(s)
	if s == "" {
		return c, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != len(c) {
		return c, fmt.Errorf("expected %d numbers, got %d", len(c), len(parts))
	}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("invalid number %q", p)
		}
		c[i] = v
	}
	return c, nil
}

// onSyncError reports a failed background sync
func (ui *RootUI) onSyncError(err error) {
	ui.showNotification(ui.localization.GetText(KeySyncFailed) + ": " + err.Error())
}

// onNotice shows the outcome of a remove or toggle
func (ui *RootUI) onNotice(n panel.Notice) {
	ui.showNotification(ui.noticeText(n))
}

func (ui *RootUI) noticeText(n panel.Notice) string {
	switch {
	case n.Op == panel.OpRemove && n.Failed():
		return ui.localization.GetText(KeyRemoveFailed)
	case n.Op == panel.OpRemove:
		return ui.localization.GetText(KeyTemplateRemoved)
	case n.Failed():
		return ui.localization.GetText(KeyToggleFailed) + ": " + n.Err.Error()
	case n.Enabled:
		return ui.localization.GetText(KeyTemplateEnabled)
	default:
		return ui.localization.GetText(KeyTemplateDisabled)
	}
}

// showNotification displays a message in the notification bar. It hides
// itself after NotificationAutoHide unless a newer message replaced it.
func (ui *RootUI) showNotification(message string) {
	ui.notificationMu.Lock()
	ui.notificationSeq++
	seq := ui.notificationSeq
	ui.notificationMu.Unlock()

	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})

	time.AfterFunc(NotificationAutoHide, func() {
		ui.notificationMu.Lock()
		current := ui.notificationSeq == seq
		ui.notificationMu.Unlock()
		if current {
			ui.hideNotification()
		}
	})
}

// hideNotification hides the notification bar
func (ui *RootUI) hideNotification() {
	fyne.Do(func() {
		ui.notificationContainer.Hide()
	})
}

// onRevealManifest opens the file manager at the template manifest
func (ui *RootUI) onRevealManifest() {
	path := ui.settings.GetManifestPath()
	if err := platform.OpenFileInManager(path); err != nil {
		log.Printf("Error revealing manifest %s: %v", path, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile) + ": " + err.Error())
	}
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	if ui.controller.IsOpen() {
		ui.panelBtn.SetText(ui.localization.GetText(KeyHidePanel))
	} else {
		ui.panelBtn.SetText(ui.localization.GetText(KeyShowPanel))
	}
	ui.refreshBtn.SetText(IconRefresh + " " + ui.localization.GetText(KeyRefresh))
	ui.addBtn.SetText(IconAdd + " " + ui.localization.GetText(KeyAddTemplate))
	ui.panel.RefreshTexts()
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.controller.Scheduler().SetInterval(ui.settings.GetSyncInterval())
		ui.cache.SetMaxParallel(ui.settings.GetPreloadParallel())
		if ui.controller.IsOpen() {
			// restart sync so the new interval takes effect
			ui.ClosePanel()
			ui.OpenPanel()
		}
		ui.onLanguageChange(ui.settings.GetLanguage())
		ui.showNotification(ui.localization.GetText(KeySettingsSaved))
	})
}
