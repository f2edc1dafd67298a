// Package rangeserve streams files over HTTP with single byte-range support so
// audio players can scrub through cached artifacts.
//
// ParseRange implements the accepted subset of RFC 9110 byte ranges; anything
// it does not accept falls back to a full 200 response rather than a 416.
package rangeserve
