// Package preflight provides readiness checks for the filesystem paths
// repitch writes to.
//
// These checks run in two contexts:
//   - The server runs RunAll at startup and logs every failed check as a
//     warning; it still starts so read-only routes keep working.
//   - The CLI "repitch status" command renders the same results locally when
//     no server answers.
package preflight
