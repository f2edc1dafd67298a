// Package roots persists the ordered set of directories searched for videos.
//
// The registry lives in a small JSON document ({"paths": [...]}) shared by the
// server and the CLI. Every operation takes an in-process mutex and an
// advisory file lock, reloads the document, applies its change, and replaces
// the file atomically, so concurrent writers never lose each other's updates
// and readers never observe a torn file.
package roots
