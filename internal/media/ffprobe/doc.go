// Package ffprobe builds ffprobe invocations and decodes their JSON output.
//
// It does not run processes; the tools package executes the command returned
// by Args and hands the captured stdout to Parse.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size)
package ffprobe
