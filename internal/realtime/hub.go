package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/broasteria/broasteria/internal/domains/orders/ports"
)

// Conn is the write surface the hub needs from a connection. Satisfied
// by *websocket.Conn.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type client struct {
	conn Conn
	// gorilla connections allow a single concurrent writer.
	mu sync.Mutex
}

func (c *client) send(message any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

// Hub fans messages out to every live connection of a tenant. Dead
// connections are dropped during broadcast; a failed write never stops
// delivery to the remaining connections.
type Hub struct {
	mu      sync.RWMutex
	tenants map[string]map[string]*client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{tenants: map[string]map[string]*client{}, logger: logger}
}

// Register adds a connection under a tenant and returns its id.
func (h *Hub) Register(tenantID string, conn Conn) string {
	id := ulid.Make().String()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tenants[tenantID] == nil {
		h.tenants[tenantID] = map[string]*client{}
	}
	h.tenants[tenantID][id] = &client{conn: conn}
	h.logger.Debug("websocket connected",
		slog.String("tenantId", tenantID),
		slog.String("connectionId", id),
		slog.Int("tenantConnections", len(h.tenants[tenantID])))
	return id
}

// Unregister removes a connection; safe to call twice.
func (h *Hub) Unregister(tenantID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(tenantID, connectionID)
}

func (h *Hub) removeLocked(tenantID, connectionID string) {
	conns, ok := h.tenants[tenantID]
	if !ok {
		return
	}
	if c, ok := conns[connectionID]; ok {
		_ = c.conn.Close()
		delete(conns, connectionID)
	}
	if len(conns) == 0 {
		delete(h.tenants, tenantID)
	}
}

// Connections reports the live connection count for a tenant.
func (h *Hub) Connections(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tenants[tenantID])
}

// Broadcast sends message to every connection of the tenant and reports
// per-connection success and failure counts. With no connections it
// returns zero counts and no error.
func (h *Hub) Broadcast(_ context.Context, tenantID string, message any) (ports.BroadcastResult, error) {
	h.mu.RLock()
	targets := make(map[string]*client, len(h.tenants[tenantID]))
	for id, c := range h.tenants[tenantID] {
		targets[id] = c
	}
	h.mu.RUnlock()

	result := ports.BroadcastResult{TotalConnections: len(targets)}
	var dead []string
	for id, c := range targets {
		if err := c.send(message); err != nil {
			result.FailureCount++
			dead = append(dead, id)
			h.logger.Warn("websocket send failed, dropping connection",
				slog.String("tenantId", tenantID),
				slog.String("connectionId", id),
				slog.String("error", err.Error()))
			continue
		}
		result.SuccessCount++
	}
	if len(dead) > 0 {
		h.mu.Lock()
		for _, id := range dead {
			h.removeLocked(tenantID, id)
		}
		h.mu.Unlock()
	}
	return result, nil
}

var _ ports.Broadcaster = (*Hub)(nil)
