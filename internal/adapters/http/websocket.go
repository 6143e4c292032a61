package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

// wsUpgrade admits only WebSocket upgrades carrying a known session.
func wsUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if deps.Events == nil {
			return newError(c, 503, "unavailable", "session events are not configured")
		}
		sid := c.Query("session")
		if sid == "" {
			return errBadRequest(c, "session query parameter is required")
		}
		if _, err := deps.Sessions.Get(c.UserContext(), sid); err != nil {
			return errDomain(c, err)
		}
		c.Locals("session", sid)
		return c.Next()
	}
}

// WebSocketHandler returns a handler that relays the events of one session
// to the connected page: markers.changed, userpin.placed, popup.opened,
// route.rendered and session.closed. The connection ends when the session
// is closed or the client goes away.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sid, _ := c.Locals("session").(string)
		logger := slog.Default().With("session_id", sid, "remote", c.RemoteAddr().String())
		logger.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeRaw := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		closed := make(chan struct{})
		var closeOnce sync.Once

		cancel, err := deps.Events.SubscribeSession(sid, func(data []byte) {
			if err := writeRaw(data); err != nil {
				return
			}
			var evt struct {
				Kind string `json:"kind"`
			}
			if json.Unmarshal(data, &evt) == nil && evt.Kind == "session.closed" {
				closeOnce.Do(func() { close(closed) })
			}
		})
		if err != nil {
			logger.Warn("ws subscribe failed", "error", err)
			return
		}
		defer cancel()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-closed:
					mu.Lock()
					_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
					mu.Unlock()
					_ = c.Close()
					return
				case <-done:
					return
				}
			}
		}()

		// The page sends nothing; reading detects disconnects.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		logger.Info("ws client disconnected")
	}
}
