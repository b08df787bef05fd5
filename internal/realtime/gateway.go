package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Gateway upgrades HTTP requests to WebSocket connections and parks
// them on the hub. Clients only listen; inbound frames are drained to
// service pings and detect closure.
type Gateway struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewGateway(hub *Hub, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Tenant scoping happens on the path; origin is not the
			// trust boundary for this API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle is the gin handler for GET /ws/:tenantId.
func (g *Gateway) Handle(c *gin.Context) {
	tenantID := c.Param("tenantId")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "tenantId is required"})
		return
	}
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed",
			slog.String("tenantId", tenantID),
			slog.String("error", err.Error()))
		return
	}
	id := g.hub.Register(tenantID, conn)

	welcome := map[string]any{
		"type": "CONNECTED",
		"payload": map[string]any{
			"connectionId": id,
			"tenantId":     tenantID,
		},
	}
	if err := conn.WriteJSON(welcome); err != nil {
		g.hub.Unregister(tenantID, id)
		return
	}

	done := make(chan struct{})
	go g.readLoop(tenantID, id, conn, done)
	go g.pingLoop(tenantID, id, conn, done)
}

func (g *Gateway) readLoop(tenantID, id string, conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	defer g.hub.Unregister(tenantID, id)
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) pingLoop(tenantID, id string, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				g.hub.Unregister(tenantID, id)
				return
			}
		}
	}
}
