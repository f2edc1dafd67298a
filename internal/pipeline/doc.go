// Package pipeline orchestrates the media operations exposed by repitch:
// listing videos, extracting base audio, pitch shifting, and muxing the chosen
// track back into a copy of the video.
//
// Every derived file goes through the artifact store, so repeated requests are
// cache hits and concurrent requests for the same artifact share one tool
// run. Preconditions are explicit: pitch shifting needs extracted audio and
// storing a video needs the requested track, and neither cascades into the
// earlier step. Failures are *Error values classified by kind, or
// *tools.ToolError when an external tool failed.
package pipeline
