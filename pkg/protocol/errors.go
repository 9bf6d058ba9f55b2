package protocol

import "errors"

var (
	// ErrMissingType is returned when a message has no type.
	ErrMissingType = errors.New("message type is required")

	// ErrInvalidData is returned when message data fails validation.
	ErrInvalidData = errors.New("invalid message data")
)
