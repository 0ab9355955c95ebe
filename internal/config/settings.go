package config

import (
	"time"

	"fyne.io/fyne/v2"
	"github.com/ytget/template-overlay/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyManifestPath    = "manifest_path"
	KeySyncIntervalMs  = "sync_interval_ms"
	KeyThumbnailSize   = "thumbnail_size"
	KeyPreloadParallel = "preload_parallel"
	KeyLanguage        = "app_language"
	KeyLogFile         = "log_file"
	KeyOpenOnStart     = "open_panel_on_start"
)

// Default values
const (
	DefaultSyncInterval    = 2 * time.Second
	DefaultThumbnailSize   = 100
	DefaultPreloadParallel = 4
	DefaultLanguage        = "system"
	DefaultOpenOnStart     = true
)

// Limits
const (
	MinSyncInterval    = 250 * time.Millisecond
	MaxSyncInterval    = time.Minute
	MinThumbnailSize   = 16
	MaxThumbnailSize   = 512
	MaxPreloadParallel = 16
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetManifestPath returns the template manifest location
func (s *Settings) GetManifestPath() string {
	path := s.app.Preferences().String(KeyManifestPath)
	if path == "" {
		path = platform.DefaultManifestPath()
		s.SetManifestPath(path)
	}
	return path
}

// SetManifestPath sets the template manifest location
func (s *Settings) SetManifestPath(path string) {
	s.app.Preferences().SetString(KeyManifestPath, path)
}

// GetSyncInterval returns how often the open panel polls the store
func (s *Settings) GetSyncInterval() time.Duration {
	ms := s.app.Preferences().Int(KeySyncIntervalMs)
	if ms <= 0 {
		s.SetSyncInterval(DefaultSyncInterval)
		return DefaultSyncInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// SetSyncInterval sets the polling interval, clamped to sane bounds
func (s *Settings) SetSyncInterval(interval time.Duration) {
	if interval < MinSyncInterval {
		interval = MinSyncInterval
	}
	if interval > MaxSyncInterval {
		interval = MaxSyncInterval
	}
	s.app.Preferences().SetInt(KeySyncIntervalMs, int(interval/time.Millisecond))
}

// GetThumbnailSize returns the preview edge in pixels
func (s *Settings) GetThumbnailSize() int {
	value := s.app.Preferences().Int(KeyThumbnailSize)
	if value <= 0 {
		s.SetThumbnailSize(DefaultThumbnailSize)
		return DefaultThumbnailSize
	}
	return value
}

// SetThumbnailSize sets the preview edge in pixels
func (s *Settings) SetThumbnailSize(size int) {
	if size < MinThumbnailSize {
		size = MinThumbnailSize
	}
	if size > MaxThumbnailSize {
		size = MaxThumbnailSize
	}
	s.app.Preferences().SetInt(KeyThumbnailSize, size)
}

// GetPreloadParallel returns how many thumbnails are derived at once
func (s *Settings) GetPreloadParallel() int {
	value := s.app.Preferences().Int(KeyPreloadParallel)
	if value <= 0 {
		s.SetPreloadParallel(DefaultPreloadParallel)
		return DefaultPreloadParallel
	}
	return value
}

// SetPreloadParallel sets how many thumbnails are derived at once
func (s *Settings) SetPreloadParallel(count int) {
	if count < 1 {
		count = 1
	}
	if count > MaxPreloadParallel {
		count = MaxPreloadParallel
	}
	s.app.Preferences().SetInt(KeyPreloadParallel, count)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLogFile returns the log file path; empty disables file logging
func (s *Settings) GetLogFile() string {
	return s.app.Preferences().StringWithFallback(KeyLogFile, platform.DefaultLogPath())
}

// SetLogFile sets the log file path
func (s *Settings) SetLogFile(path string) {
	s.app.Preferences().SetString(KeyLogFile, path)
}

// GetOpenOnStart returns whether the panel opens when the app starts
func (s *Settings) GetOpenOnStart() bool {
	return s.app.Preferences().BoolWithFallback(KeyOpenOnStart, DefaultOpenOnStart)
}

// SetOpenOnStart sets whether the panel opens when the app starts
func (s *Settings) SetOpenOnStart(open bool) {
	s.app.Preferences().SetBool(KeyOpenOnStart, open)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
