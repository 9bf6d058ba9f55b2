package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONStore implements Store using a JSON file for persistence.
type JSONStore struct {
	path    string
	results map[string]*Result
	mu      sync.RWMutex
}

// storeData is the JSON structure for the store file.
type storeData struct {
	Version   int       `json:"version"`
	UpdatedAt string    `json:"updated_at"`
	Results   []*Result `json:"results"`
}

const currentVersion = 1

// NewJSONStore creates a new JSON-based store at the given path.
// If the file doesn't exist, it will be created on first save.
func NewJSONStore(path string) (*JSONStore, error) {
	store := &JSONStore{
		path:    path,
		results: make(map[string]*Result),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := store.load(); err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
	}

	return store, nil
}

// load reads the store from disk.
func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if stored.Version > currentVersion {
		return fmt.Errorf("store version %d is newer than supported %d", stored.Version, currentVersion)
	}

	s.results = make(map[string]*Result, len(stored.Results))
	for _, r := range stored.Results {
		s.results[r.ID] = r
	}
	return nil
}

// save writes the store to disk. Callers hold the write lock.
func (s *JSONStore) save() error {
	results := make([]*Result, 0, len(s.results))
	for _, r := range s.results {
		results = append(results, r)
	}
	sortNewestFirst(results)

	stored := storeData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Results:   results,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Save creates or replaces a result.
func (s *JSONStore) Save(r *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.SavedAt = time.Now().UTC()

	s.results[r.ID] = r
	return s.save()
}

// Get retrieves a result by ID.
func (s *JSONStore) Get(id string) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[id]
	if !ok {
		return nil, notFound(id)
	}
	return r, nil
}

// List returns all results, newest first.
func (s *JSONStore) List() ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Result, 0, len(s.results))
	for _, r := range s.results {
		results = append(results, r)
	}
	sortNewestFirst(results)
	return results, nil
}

// Delete removes a result by ID.
func (s *JSONStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[id]; !ok {
		return notFound(id)
	}
	delete(s.results, id)
	return s.save()
}

// Count returns the number of stored results.
func (s *JSONStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Path returns the file path of the store.
func (s *JSONStore) Path() string {
	return s.path
}

// Close is a no-op; every write is already on disk.
func (s *JSONStore) Close() error {
	return nil
}

func sortNewestFirst(results []*Result) {
	slices.SortFunc(results, func(a, b *Result) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
