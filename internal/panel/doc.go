package panel

// Package panel owns the rendered side of the template overlay: the card
// registry keyed by template identity, the contract the presentation layer
// implements, and the controller tying store, cache and sync to the panel
// lifecycle.
