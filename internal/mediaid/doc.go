// Package mediaid converts absolute filesystem paths into opaque identifiers
// that are safe to embed as a single URL path segment, and back.
//
// The encoding is unpadded base64url over the path's UTF-8 bytes. It is a
// lossless transform rather than a hash: Decode(Encode(p)) == p for every
// UTF-8 path, and two distinct paths never share an identifier.
package mediaid
