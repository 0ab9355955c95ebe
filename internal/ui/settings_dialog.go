package ui

import (
	"sort"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/template-overlay/internal/config"
)

// Dialog size constants
const (
	SettingsDialogWidth  = 500
	SettingsDialogHeight = 420
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	manifestEntry  *widget.Entry
	intervalEntry  *widget.Entry
	sizeEntry      *widget.Entry
	parallelEntry  *widget.Entry
	languageSelect *widget.Select
	openOnStart    *widget.Check
}

// ShowSettingsDialog builds and shows the settings dialog. onSaved runs
// after the values were written to preferences.
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func()) {
	sd := NewSettingsDialog(settings, localization, window)
	sd.onSaved = onSaved
	sd.Show()
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	t := sd.localization.GetText

	sd.manifestEntry = widget.NewEntry()
	browseBtn := widget.NewButton(t(KeyBrowse), sd.onBrowseManifest)
	manifestRow := container.NewBorder(nil, nil, nil, browseBtn, sd.manifestEntry)

	sd.intervalEntry = widget.NewEntry()
	sd.intervalEntry.Validator = intRange(int(config.MinSyncInterval/time.Millisecond), int(config.MaxSyncInterval/time.Millisecond))

	sd.sizeEntry = widget.NewEntry()
	sd.sizeEntry.Validator = intRange(config.MinThumbnailSize, config.MaxThumbnailSize)

	sd.parallelEntry = widget.NewEntry()
	sd.parallelEntry.Validator = intRange(1, config.MaxPreloadParallel)

	languageOptions := make([]string, 0)
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	sd.openOnStart = widget.NewCheck(t(KeyOpenOnStart), nil)

	form := container.NewVBox(
		widget.NewLabel(t(KeyManifestPath)+":"),
		manifestRow,
		widget.NewLabel(t(KeySyncInterval)+":"),
		sd.intervalEntry,
		widget.NewLabel(t(KeyThumbnailSize)+":"),
		sd.sizeEntry,
		widget.NewLabel(t(KeyPreloadParallel)+":"),
		sd.parallelEntry,
		widget.NewSeparator(),
		widget.NewLabel(t(KeyLanguage)+":"),
		sd.languageSelect,
		sd.openOnStart,
	)

	sd.dialog = dialog.NewCustomConfirm(t(KeySettings), t(KeySave), t(KeyCancel), form, sd.onSave, sd.window)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.manifestEntry.SetText(sd.settings.GetManifestPath())
	sd.intervalEntry.SetText(strconv.Itoa(int(sd.settings.GetSyncInterval() / time.Millisecond)))
	sd.sizeEntry.SetText(strconv.Itoa(sd.settings.GetThumbnailSize()))
	sd.parallelEntry.SetText(strconv.Itoa(sd.settings.GetPreloadParallel()))
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
	sd.openOnStart.SetChecked(sd.settings.GetOpenOnStart())
}

// onBrowseManifest picks a manifest file
func (sd *SettingsDialog) onBrowseManifest() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		sd.manifestEntry.SetText(reader.URI().Path())
		reader.Close()
	}, sd.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	fd.Show()
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.Apply()

	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeyRestartRequired), sd.window)
}

// Apply writes the entered values to preferences. Invalid numbers keep the
// stored value.
func (sd *SettingsDialog) Apply() {
	if sd.manifestEntry.Text != "" {
		sd.settings.SetManifestPath(sd.manifestEntry.Text)
	}
	if ms, err := strconv.Atoi(sd.intervalEntry.Text); err == nil {
		sd.settings.SetSyncInterval(time.Duration(ms) * time.Millisecond)
	}
	if size, err := strconv.Atoi(sd.sizeEntry.Text); err == nil {
		sd.settings.SetThumbnailSize(size)
	}
	if n, err := strconv.Atoi(sd.parallelEntry.Text); err == nil {
		sd.settings.SetPreloadParallel(n)
	}
	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}
	sd.settings.SetOpenOnStart(sd.openOnStart.Checked)
}

// intRange validates an integer entry within [lo, hi]
func intRange(lo, hi int) fyne.StringValidator {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		if v < lo || v > hi {
			return strconv.ErrRange
		}
		return nil
	}
}
