package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-focus/pkg/calibration"
	"github.com/teslashibe/go-focus/pkg/expression"
	"github.com/teslashibe/go-focus/pkg/score"
)

type backend struct {
	name string
	open func(t *testing.T, dir string) Store
}

var backends = []backend{
	{"json", func(t *testing.T, dir string) Store {
		s, err := NewJSONStore(filepath.Join(dir, "results.json"))
		require.NoError(t, err)
		return s
	}},
	{"sqlite", func(t *testing.T, dir string) Store {
		s, err := NewSQLiteStore(filepath.Join(dir, "results.db"))
		require.NoError(t, err)
		return s
	}},
}

func sampleResult() *Result {
	return &Result{
		Participant: "p-07",
		Video:       "lecture-2",
		Mode:        "intrusive",
		Profile:     "default",
		StartedAt:   time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Calibration: &calibration.Profile{GazeX: 0.5, StdGazeX: 0.01, EyeHeight: 0.03, GazeYWeight: 1},
		Summary: score.Summary{
			AverageScore: 83,
			MinScore:     40,
			Samples:      2,
			DurationMS:   1000,
			Signals: map[expression.Signal]score.SignalStats{
				expression.JawOpen: {Average: 0.3, Max: 0.5, ExceedCount: 1, ExceedRate: 50},
			},
		},
		History: []score.HistorySample{
			{Score: 100, ElapsedMS: 0, MediaTime: 0.5},
			{Score: 66, ElapsedMS: 1000, MediaTime: 1.5, Signals: expression.Signals{expression.JawOpen: 0.5}},
		},
	}
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			defer s.Close()

			r := sampleResult()
			require.NoError(t, s.Save(r))
			assert.NotEmpty(t, r.ID, "Save should assign an ID")
			assert.False(t, r.SavedAt.IsZero(), "Save should stamp SavedAt")

			got, err := s.Get(r.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(r, got); diff != "" {
				t.Errorf("Get() mismatch (-saved +loaded):\n%s", diff)
			}
			assert.Equal(t, 1, s.Count())
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			defer s.Close()

			_, err := s.Get("missing")
			assert.True(t, errors.Is(err, ErrNotFound), "Get err = %v", err)
			assert.True(t, errors.Is(s.Delete("missing"), ErrNotFound))
		})
	}
}

func TestStore_ListNewestFirstAndDelete(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			defer s.Close()

			var ids []string
			for i := 0; i < 3; i++ {
				r := sampleResult()
				require.NoError(t, s.Save(r))
				ids = append(ids, r.ID)
				time.Sleep(5 * time.Millisecond)
			}

			list, err := s.List()
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, ids[2], list[0].ID)
			assert.Equal(t, ids[0], list[2].ID)

			require.NoError(t, s.Delete(ids[1]))
			assert.Equal(t, 2, s.Count())
			_, err = s.Get(ids[1])
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			s := b.open(t, dir)
			r := sampleResult()
			require.NoError(t, s.Save(r))
			require.NoError(t, s.Close())

			reopened := b.open(t, dir)
			defer reopened.Close()
			got, err := reopened.Get(r.ID)
			require.NoError(t, err)
			assert.Equal(t, r.Summary.AverageScore, got.Summary.AverageScore)
			assert.Len(t, got.History, 2)
		})
	}
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			defer s.Close()

			r := sampleResult()
			r.ID = "fixed"
			require.NoError(t, s.Save(r))
			r.Summary.AverageScore = 50
			require.NoError(t, s.Save(r))

			got, err := s.Get("fixed")
			require.NoError(t, err)
			assert.Equal(t, 50, got.Summary.AverageScore)
			assert.Equal(t, 1, s.Count())
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("json", filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = Open("sqlite", filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "x")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}
