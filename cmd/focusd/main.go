// focusd: focus-scoring service
// Accepts face-landmark frames over WebSocket, scores attention per session
// and stores session results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-focus/internal/config"
	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/pkg/session"
	"github.com/teslashibe/go-focus/pkg/store"
	"github.com/teslashibe/go-focus/pkg/web"
)

var (
	version = "1.0.0"
	port    = flag.String("port", "", "HTTP server port (default $FOCUS_PORT or 8080)")
	debug   = flag.Bool("debug", false, "Enable debug logging, including request logs")
)

func main() {
	flag.Parse()
	config.LoadEnv()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.Component("focusd")

	if *port == "" {
		*port = config.Port()
	}

	spec, err := config.Store()
	if err != nil {
		logger.Error("invalid store configuration", "error", err)
		os.Exit(1)
	}
	st, err := store.Open(spec.Kind, spec.Path)
	if err != nil {
		logger.Error("open store", "kind", spec.Kind, "path", spec.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	sessions := session.NewHub(st, session.Defaults{
		Profile:  config.Profile(),
		Cooldown: config.Cooldown(0),
	})

	srv := web.NewServer(*port, st, sessions)
	app := srv.App()

	// Metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		stats := sessions.GetStats()
		return c.SendString(fmt.Sprintf(`# HELP focus_sessions Connected session count
# TYPE focus_sessions gauge
focus_sessions %d

# HELP focus_messages_received Total messages received
# TYPE focus_messages_received counter
focus_messages_received %d

# HELP focus_messages_sent Total messages sent
# TYPE focus_messages_sent counter
focus_messages_sent %d

# HELP focus_frames_received Total frames received
# TYPE focus_frames_received counter
focus_frames_received %d

# HELP focus_sessions_finished Total sessions finished
# TYPE focus_sessions_finished counter
focus_sessions_finished %d

# HELP focus_results Stored session results
# TYPE focus_results gauge
focus_results %d
`, stats.SessionCount, stats.MessagesReceived, stats.MessagesSent,
			stats.FramesReceived, stats.SessionsFinished, st.Count()))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("focusd starting",
		"version", version,
		"store", spec.Kind+":"+spec.Path,
		"profile", config.Profile())

	go func() {
		logger.Info("endpoints",
			"session", "ws://localhost:"+*port+"/ws/session",
			"events", "ws://localhost:"+*port+"/ws/events",
			"results", "http://localhost:"+*port+"/api/results")
		if err := srv.Start(ctx); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown error", "error", err)
	}
}
