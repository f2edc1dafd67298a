// Package server exposes the pipeline over HTTP.
//
// Routes are registered on a gorilla/mux router; request bodies are decoded
// into api DTOs and checked with go-playground/validator before reaching the
// pipeline. Pipeline error kinds map onto status codes in one place
// (statusFor) so handlers only decide what to call.
//
// Every request carries a UUID request id, echoed in X-Request-ID and
// attached to the request context so pipeline log lines share it.
package server
