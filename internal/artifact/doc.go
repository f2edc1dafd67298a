// Package artifact is the content-addressed cache of derived media files.
//
// A Key (identifier, kind, semitone variant) maps to exactly one location
// through Layout.Resolve, a pure function. Presence of a regular file at that
// location is the cache-hit signal. Store.Ensure runs a producer on a miss,
// at most once per key at a time, and publishes its output atomically by
// renaming a temp sibling over the final path. Published artifacts are never
// overwritten or deleted here.
package artifact
