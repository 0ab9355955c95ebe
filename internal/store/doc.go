package store

// Package store holds the template collection and per-identity settings,
// persists them to a YAML manifest and reloads the manifest when it is edited
// on disk.
