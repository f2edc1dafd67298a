// Package api defines the wire-format types shared by the HTTP server and the
// CLI client. It translates pipeline results into transport-friendly DTOs so
// neither side couples to internal types.
//
// # Key Types
//
// VideoSummary/VideoListResponse: discovered videos with their thumbnail URLs.
//
// AudioResponse: a playable audio artifact with its streaming URL and duration.
//
// ServerStatus: running server information including tool dependencies.
//
// Semitones: accepts either a JSON number or a numeric string.
//
// # Design Notes
//
// Field names are snake_case to match the browser client. Durations are
// reported twice: duration_seconds (null when unknown) and a display string.
package api
