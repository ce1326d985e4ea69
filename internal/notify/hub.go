// Package notify pushes task events to connected browsers over WebSocket.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/events"
)

// queueSize bounds each connection's outbound buffer. A client that cannot
// drain its queue gets disconnected rather than stalling the publisher.
const queueSize = 32

// connection is one WebSocket client with its outbound queue.
type connection struct {
	userID int64
	send   chan events.TaskEvent
	done   chan struct{}
	once   sync.Once
}

func (c *connection) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans task events out to each user's open WebSocket connections.
// It implements events.Transport, so it is wired as one of the emitter's
// destinations alongside the sidecar.
type Hub struct {
	mu            sync.RWMutex
	conns         map[int64]map[*connection]struct{}
	allowedOrigin string
	isDev         bool
	logger        *slog.Logger
}

// NewHub creates the notification hub.
func NewHub(allowedOrigin string, isDev bool, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:         make(map[int64]map[*connection]struct{}),
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		logger:        logger,
	}
}

// RegisterRoutes mounts the WebSocket route (requires authentication).
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get("/api/notifications/ws", h.ServeHTTP)
}

// Publish implements events.Transport: the event is queued for every open
// connection belonging to the event's user. A full queue drops the
// connection, never blocks.
func (h *Hub) Publish(_ context.Context, _ string, event events.TaskEvent) error {
	h.mu.RLock()
	userConns := make([]*connection, 0, len(h.conns[event.UserID]))
	for c := range h.conns[event.UserID] {
		userConns = append(userConns, c)
	}
	h.mu.RUnlock()

	for _, c := range userConns {
		select {
		case c.send <- event:
		case <-c.done:
		default:
			h.logger.Warn("notification queue full, dropping connection", "user_id", event.UserID)
			c.close()
		}
	}
	return nil
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID <= 0 {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			h.logger.Debug("websocket close failed", "error", closeErr, "user_id", userID)
		}
	}()

	conn := &connection{
		userID: userID,
		send:   make(chan events.TaskEvent, queueSize),
		done:   make(chan struct{}),
	}
	h.register(conn)
	defer h.unregister(conn)

	h.logger.Info("notification client connected", "user_id", userID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read loop only watches for the client closing the socket.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("notification client disconnected", "user_id", userID)
			return
		case <-conn.done:
			return
		case event := <-conn.send:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("marshal event failed", "error", err)
				continue
			}
			if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
				h.logger.Debug("websocket write failed", "error", err, "user_id", userID)
				return
			}
		}
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.userID]; !ok {
		h.conns[c.userID] = make(map[*connection]struct{})
	}
	h.conns[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if userConns, ok := h.conns[c.userID]; ok {
		delete(userConns, c)
		if len(userConns) == 0 {
			delete(h.conns, c.userID)
		}
	}
	c.close()
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	return origin == h.allowedOrigin
}
