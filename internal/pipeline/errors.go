package pipeline

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Error carries a user-facing message and its classification.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func invalidArgument(msg string) error { return &Error{Kind: ErrInvalidArgument, Message: msg} }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func preconditionFailed(msg string) error {
	return &Error{Kind: ErrPreconditionFailed, Message: msg}
}

const (
	msgInvalidID         = "Invalid video id"
	msgVideoNotFound     = "Video not found"
	msgSemitoneRange     = "'semitones' must be between -8 and 8"
	msgBaseMissing       = "Base audio not extracted yet"
	msgSourceMissing     = "Requested audio not available. Generate it first."
	msgAudioNotFound     = "Audio not found"
	msgAudioNotExtracted = "Audio not extracted"
	msgThumbnailMissing  = "Thumbnail not found"
	msgOutputNameTaken   = "Output name already used by another video"
)
