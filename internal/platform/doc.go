package platform

// Package platform contains OS integration: application data locations,
// log file setup, and opening or revealing files in the system file manager.
