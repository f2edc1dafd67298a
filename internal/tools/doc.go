// Package tools wraps the external media binaries (ffmpeg, sox, ffprobe)
// behind the Adapter interface.
//
// Every invocation passes an argument vector, never a shell string, captures
// stdout and stderr in full, and converts non-zero exits into *ToolError so
// callers can surface the tool's diagnostics. Tests swap the process runner
// through WithExecutor or replace the whole Adapter.
package tools
