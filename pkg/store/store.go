// Package store persists finished focus sessions.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-focus/pkg/calibration"
	"github.com/teslashibe/go-focus/pkg/score"
)

var (
	// ErrNotFound is returned when no result has the requested ID.
	ErrNotFound = errors.New("result not found")

	// ErrUnknownKind is returned by Open for an unsupported backend.
	ErrUnknownKind = errors.New("unknown store kind")
)

// Result is one finished session.
type Result struct {
	ID          string                `json:"id"`
	Participant string                `json:"participant,omitempty"`
	Video       string                `json:"video,omitempty"`
	Mode        string                `json:"mode"`
	Profile     string                `json:"profile"`
	StartedAt   time.Time             `json:"started_at"`
	SavedAt     time.Time             `json:"saved_at"`
	Calibration *calibration.Profile  `json:"calibration,omitempty"`
	Summary     score.Summary         `json:"summary"`
	History     []score.HistorySample `json:"history"`
}

// Store defines the interface for session result storage.
type Store interface {
	// Save creates or replaces a result, assigning an ID if unset
	Save(r *Result) error

	// Get retrieves a result by ID
	Get(id string) (*Result, error)

	// List returns all results, newest first
	List() ([]*Result, error)

	// Delete removes a result by ID
	Delete(id string) error

	// Count returns the number of stored results
	Count() int

	Close() error
}

// Open creates the store for a backend kind ("json" or "sqlite").
func Open(kind, path string) (Store, error) {
	switch kind {
	case "json":
		return NewJSONStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
