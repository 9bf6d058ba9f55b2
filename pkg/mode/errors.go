package mode

import "errors"

var (
	// ErrUnknownMode is returned when a mode name is not recognized.
	ErrUnknownMode = errors.New("unknown session mode")

	// ErrUnknownChoice is returned for a popup answer other than pause or continue.
	ErrUnknownChoice = errors.New("unknown popup choice")

	// ErrNoPopup is returned when resolving a popup that is not visible.
	ErrNoPopup = errors.New("no popup is visible")
)
