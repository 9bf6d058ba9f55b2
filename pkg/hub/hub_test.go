package hub

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
)

func TestNew(t *testing.T) {
	h := New("events")
	if h.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", h.ClientCount())
	}
	if h.IsRunning() {
		t.Error("hub should not be running before Run")
	}
}

func TestPublishWithoutClients(t *testing.T) {
	h := New("events")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	if err := h.Publish("s1", map[string]int{"score": 80}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if err := h.Publish("", make(chan int)); err == nil {
		t.Error("Publish should fail for unencodable values")
	}
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	h := New("events")
	// Not running, so nothing drains the queue.
	for i := 0; i < 300; i++ {
		h.Broadcast(Message{Data: []byte("{}")})
	}
	if got := h.Dropped(); got != 300-256 {
		t.Errorf("Dropped = %d, want %d", got, 300-256)
	}
}

func TestClientFollows(t *testing.T) {
	tests := []struct {
		own, topic string
		want       bool
	}{
		{"", "", true},
		{"", "s1", true},
		{"s1", "", true},
		{"s1", "s1", true},
		{"s1", "s2", false},
	}
	for _, tt := range tests {
		c := &Client{}
		own := tt.own
		c.topic.Store(&own)
		if got := c.follows(tt.topic); got != tt.want {
			t.Errorf("client(%q).follows(%q) = %v, want %v", tt.own, tt.topic, got, tt.want)
		}
	}
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != n && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if h.ClientCount() != n {
		t.Fatalf("ClientCount = %d, want %d", h.ClientCount(), n)
	}
}

func read(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	return string(data)
}

func TestTopicDelivery(t *testing.T) {
	h := New("events")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", fws.New(func(c *fws.Conn) {
		NewClient(h, c, c.Query("session")).Run()
	}))
	go app.Listen(":18090")
	defer app.Shutdown()
	time.Sleep(100 * time.Millisecond)

	all, _, err := websocket.DefaultDialer.Dial("ws://localhost:18090/ws", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer all.Close()
	one, _, err := websocket.DefaultDialer.Dial("ws://localhost:18090/ws?session=s1", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer one.Close()
	waitForClients(t, h, 2)

	h.Publish("s2", map[string]string{"session": "s2"})
	h.Publish("s1", map[string]string{"session": "s1"})

	if got := read(t, all); got != `{"session":"s2"}` {
		t.Errorf("all watcher first message = %s", got)
	}
	if got := read(t, all); got != `{"session":"s1"}` {
		t.Errorf("all watcher second message = %s", got)
	}
	// The s2 event was filtered, so s1 arrives first.
	if got := read(t, one); got != `{"session":"s1"}` {
		t.Errorf("s1 watcher message = %s", got)
	}

	// Switch the filtered watcher to s2.
	if err := one.WriteMessage(websocket.TextMessage, []byte(`{"session":"s2"}`)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	h.Publish("s1", map[string]string{"session": "s1"})
	h.Publish("s2", map[string]string{"session": "s2"})
	if got := read(t, one); got != `{"session":"s2"}` {
		t.Errorf("after resubscribe message = %s", got)
	}

	all.Close()
	one.Close()
	waitForClients(t, h, 0)
	if h.Delivered() != 6 {
		t.Errorf("Delivered = %d, want 6", h.Delivered())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := New("events")
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if h.IsRunning() {
		t.Error("IsRunning should be false after Run returns")
	}
}

func TestClientRunWaitsForWriter(t *testing.T) {
	h := New("events")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	finished := make(chan bool, 1)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", fws.New(func(c *fws.Conn) {
		client := NewClient(h, c, "")
		client.Run()
		select {
		case <-client.written:
			finished <- true
		default:
			finished <- false
		}
	}))
	go app.Listen(":18089")
	defer app.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18089/ws", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	waitForClients(t, h, 1)
	ws.Close()

	select {
	case ok := <-finished:
		if !ok {
			t.Error("Run returned while the write pump was still using the connection")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the watcher disconnected")
	}
}
