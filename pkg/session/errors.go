package session

import "errors"

var (
	// ErrSessionNotStarted is returned for session messages sent before start.
	ErrSessionNotStarted = errors.New("session not started")

	// ErrSessionInUse is returned when a connection claims the id of a live session.
	ErrSessionInUse = errors.New("session id already connected")

	// ErrUnexpectedMessage is returned for message types a client may not send.
	ErrUnexpectedMessage = errors.New("unexpected message type")
)
