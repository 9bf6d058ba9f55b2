package engine

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid engine config")

	// ErrUnknownProfile is returned for an unrecognized configuration profile name.
	ErrUnknownProfile = errors.New("unknown config profile")
)
