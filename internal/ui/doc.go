package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It renders template cards, wires card actions to the panel controller, and
// shows store operation outcomes and settings. All UI strings are localized
// via Localization.
