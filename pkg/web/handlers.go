package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-focus/pkg/store"
)

// ResultInfo is the list view of a stored result, without history.
type ResultInfo struct {
	ID           string    `json:"id"`
	Participant  string    `json:"participant,omitempty"`
	Video        string    `json:"video,omitempty"`
	Mode         string    `json:"mode"`
	Profile      string    `json:"profile"`
	StartedAt    time.Time `json:"started_at"`
	SavedAt      time.Time `json:"saved_at"`
	AverageScore int       `json:"average_score"`
	MinScore     int       `json:"min_score"`
	Samples      int       `json:"samples"`
	DurationMS   int64     `json:"duration_ms"`
}

func newResultInfo(r *store.Result) ResultInfo {
	return ResultInfo{
		ID:           r.ID,
		Participant:  r.Participant,
		Video:        r.Video,
		Mode:         r.Mode,
		Profile:      r.Profile,
		StartedAt:    r.StartedAt,
		SavedAt:      r.SavedAt,
		AverageScore: r.Summary.AverageScore,
		MinScore:     r.Summary.MinScore,
		Samples:      r.Summary.Samples,
		DurationMS:   r.Summary.DurationMS,
	}
}

// handleHealth reports liveness and basic counters
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"sessions": s.sessions.SessionCount(),
		"results":  s.store.Count(),
		"watchers": s.events.ClientCount(),
	})
}

// handleListResults returns stored results, optionally filtered by
// participant and video
func (s *Server) handleListResults(c *fiber.Ctx) error {
	results, err := s.store.List()
	if err != nil {
		return s.fail(c, err)
	}

	participant := c.Query("participant")
	video := c.Query("video")

	infos := make([]ResultInfo, 0, len(results))
	for _, r := range results {
		if participant != "" && r.Participant != participant {
			continue
		}
		if video != "" && r.Video != video {
			continue
		}
		infos = append(infos, newResultInfo(r))
	}
	return c.JSON(fiber.Map{
		"results": infos,
		"count":   len(infos),
	})
}

// handleGetResult returns one result with its history
func (s *Server) handleGetResult(c *fiber.Ctx) error {
	r, err := s.store.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(r)
}

// handleDeleteResult removes a result
func (s *Server) handleDeleteResult(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Delete(id); err != nil {
		return s.fail(c, err)
	}
	s.logger.Info("result deleted", "result", id)
	return c.SendStatus(fiber.StatusNoContent)
}

// handleResultChart renders a result's score timeline as an HTML page
func (s *Server) handleResultChart(c *fiber.Ctx) error {
	r, err := s.store.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	signals, err := parseSignals(c.Query("signals"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	page, err := renderChart(r, signals)
	if err != nil {
		return s.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	s.logger.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
