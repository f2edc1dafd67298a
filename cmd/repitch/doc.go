// Command repitch serves the pitch-shifting web service and manages its
// local state.
//
// `repitch serve` runs the HTTP server in the foreground. The remaining
// commands work without a server: `roots` edits the search-root registry
// under its file lock, `videos` lists what discovery would return, `id`
// converts between paths and video ids, and `status` asks a running server
// for its view before falling back to local checks.
package main
