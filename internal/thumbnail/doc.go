package thumbnail

// Package thumbnail derives fixed-size square previews from template source
// images and memoizes them per template identity, including failures.
