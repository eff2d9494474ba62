package workpool

// Package workpool bounds blocking work (catalog calls, audio delivery) to a
// fixed number of slots and serializes event handling per user key.
