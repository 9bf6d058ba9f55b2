// focus-replay: feeds recorded or synthetic face frames through the focus
// engine, either locally or against a running focusd.
//
// Input files hold one frame payload (the "data" of a frame message) per line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-focus/internal/config"
	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/internal/timeutil"
	"github.com/teslashibe/go-focus/pkg/engine"
	"github.com/teslashibe/go-focus/pkg/face"
	"github.com/teslashibe/go-focus/pkg/geometry"
	"github.com/teslashibe/go-focus/pkg/mode"
	"github.com/teslashibe/go-focus/pkg/protocol"
)

var (
	input     = flag.String("in", "", "JSONL file of frames (default: synthetic frames)")
	server    = flag.String("server", "", "focusd session URL, e.g. ws://localhost:8080/ws/session")
	modeName  = flag.String("mode", "normal", "Control mode")
	profile   = flag.String("profile", "", "Engine profile (default $FOCUS_PROFILE)")
	realtime  = flag.Bool("realtime", false, "Pace frames by their timestamps")
	quiet     = flag.Bool("quiet", false, "Only print the summary")
	frames    = flag.Int("frames", 600, "Synthetic: number of frames")
	fps       = flag.Int("fps", 30, "Synthetic: frames per second")
	awaySpan  = flag.String("away", "8:12", "Synthetic: seconds range with no face (start:end, empty for none)")
	glanceSpn = flag.String("glance", "", "Synthetic: seconds range looking off-screen (start:end)")
)

func main() {
	flag.Parse()
	config.LoadEnv()
	log.Init(config.LogLevel())

	if *profile == "" {
		*profile = config.Profile()
	}

	obs, err := loadFrames()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load frames: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *server != "" {
		err = replayRemote(ctx, obs)
	} else {
		err = replayLocal(ctx, obs)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

func loadFrames() ([]face.Observation, error) {
	if *input == "" {
		away, err := parseSpan(*awaySpan)
		if err != nil {
			return nil, fmt.Errorf("-away: %w", err)
		}
		glance, err := parseSpan(*glanceSpn)
		if err != nil {
			return nil, fmt.Errorf("-glance: %w", err)
		}
		return synthesize(*frames, *fps, away, glance), nil
	}

	f, err := os.Open(*input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFrames(f)
}

// readFrames decodes one observation per non-empty line.
func readFrames(r io.Reader) ([]face.Observation, error) {
	var out []face.Observation
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var obs face.Observation
		if err := json.Unmarshal([]byte(text), &obs); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, obs)
	}
	return out, scanner.Err()
}

// span is a time range in seconds; the zero span matches nothing.
type span struct{ from, to float64 }

func (s span) contains(sec float64) bool {
	return s.to > s.from && sec >= s.from && sec < s.to
}

func parseSpan(raw string) (span, error) {
	if raw == "" {
		return span{}, nil
	}
	a, b, ok := strings.Cut(raw, ":")
	if !ok {
		return span{}, fmt.Errorf("want start:end, got %q", raw)
	}
	from, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return span{}, err
	}
	to, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return span{}, err
	}
	return span{from: from, to: to}, nil
}

// synthesize builds an attentive subject who disappears during away and
// looks off to the side during glance.
func synthesize(n, fps int, away, glance span) []face.Observation {
	out := make([]face.Observation, 0, n)
	step := 1000 / int64(fps)
	for i := 0; i < n; i++ {
		ts := int64(i+1) * step
		sec := float64(ts) / 1000

		if away.contains(sec) {
			out = append(out, face.Observation{Timestamp: ts, MediaTime: sec})
			continue
		}
		s := face.DefaultSynthetic()
		if glance.contains(sec) {
			s.GazeX = 0.8
		}
		obs := s.Observation(ts, geometry.Identity(), nil)
		obs.MediaTime = sec
		out = append(out, obs)
	}
	return out
}

func replayLocal(ctx context.Context, frames []face.Observation) error {
	m, err := mode.ParseMode(*modeName)
	if err != nil {
		return err
	}
	cfg, err := engine.ConfigForProfile(*profile)
	if err != nil {
		return err
	}

	// The engine runs on frame time so replays are deterministic.
	origin := time.Unix(0, 0)
	clock := timeutil.NewMockClock(origin)
	eng, err := engine.New(cfg, m, engine.WithClock(clock))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, obs := range frames {
		if ctx.Err() != nil {
			break
		}
		clock.Set(origin.Add(time.Duration(obs.Timestamp) * time.Millisecond))
		ev := eng.Step(obs)
		if ev.Skipped || *quiet {
			continue
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}

	return enc.Encode(map[string]any{"summary": eng.Summary()})
}

func replayRemote(ctx context.Context, frames []face.Observation) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, *server, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", *server, err)
	}
	defer conn.Close()

	logger := log.Component("replay")
	summary := make(chan *protocol.Message, 1)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				logger.Warn("bad server message", "error", err)
				continue
			}
			switch msg.Type {
			case protocol.TypeSummary:
				summary <- msg
				return
			case protocol.TypeError:
				if e, err := msg.GetErrorData(); err == nil {
					logger.Warn("server error", "message", e.Message)
				}
			default:
				if !*quiet {
					fmt.Println(string(data))
				}
			}
		}
	}()

	send := func(msg *protocol.Message, err error) error {
		if err != nil {
			return err
		}
		data, err := msg.Bytes()
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	if err := send(protocol.NewStartMessage(protocol.StartData{Mode: *modeName, Profile: *profile})); err != nil {
		return err
	}

	var prev int64
	for i, obs := range frames {
		if ctx.Err() != nil {
			break
		}
		if *realtime && i > 0 && obs.Timestamp > prev {
			time.Sleep(time.Duration(obs.Timestamp-prev) * time.Millisecond)
		}
		prev = obs.Timestamp
		if err := send(protocol.NewFrameMessage(obs)); err != nil {
			return err
		}
	}

	if err := send(protocol.NewStopMessage()); err != nil {
		return err
	}

	select {
	case msg := <-summary:
		fmt.Println(string(msg.Data))
		return nil
	case err := <-readErr:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("no summary from server")
	}
}
