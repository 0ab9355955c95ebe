package model

// Package model defines the domain data shared by the overlay packages:
// template records and their per-identity settings, the watched-field
// snapshots used for change detection, change records, and status enums.
