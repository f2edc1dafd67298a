package server

import (
	"errors"
	"net/http"

	"repitch/internal/pipeline"
	"repitch/internal/tools"
)

// statusFor maps a pipeline or tool error to its HTTP status and the message
// sent to the client.
func statusFor(err error) (int, string) {
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		switch {
		case errors.Is(err, pipeline.ErrInvalidArgument):
			return http.StatusBadRequest, perr.Message
		case errors.Is(err, pipeline.ErrNotFound):
			return http.StatusNotFound, perr.Message
		case errors.Is(err, pipeline.ErrPreconditionFailed):
			return http.StatusConflict, perr.Message
		}
	}
	var terr *tools.ToolError
	if errors.As(err, &terr) {
		return http.StatusInternalServerError, terr.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
