package mediaid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidIdentifier reports a token that is not a well-formed identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ID is the opaque token standing in for an absolute source path.
type ID string

var encoding = base64.RawURLEncoding.Strict()

// Encode derives the identifier for path. The result contains only
// [A-Za-z0-9_-] and never carries padding.
func Encode(path string) ID {
	return ID(encoding.EncodeToString([]byte(path)))
}

// Decode recovers the path an identifier was derived from.
func Decode(token ID) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	raw, err := encoding.DecodeString(string(token))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: not utf-8", ErrInvalidIdentifier)
	}
	return string(raw), nil
}

// Validate reports whether token decodes cleanly.
func Validate(token ID) error {
	_, err := Decode(token)
	return err
}

// String returns the token text.
func (id ID) String() string {
	return string(id)
}
