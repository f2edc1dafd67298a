// Package library discovers video files beneath the registered search roots
// and derives the human-facing labels shown next to them.
package library
