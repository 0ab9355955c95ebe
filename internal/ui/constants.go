package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconRefresh  = "⟳"
	IconAdd      = "+"
	IconClose    = "×"
)

// Text fragments
const (
	DashPlaceholder = "—"
)

// Layout sizing (TemplateCard / panel)
const (
	CardMinWidth   float32 = 360
	CardMinHeight  float32 = 64
	ThumbnailEdge  float32 = 56
	PanelMinHeight float32 = 240
)

// Notification bar behavior
const (
	NotificationAutoHide = 4 * time.Second
)

// Image source filters for the add-template dialog
var TemplateImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}
