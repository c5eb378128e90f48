package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/DRafi2006/FOUND/models"
	"github.com/DRafi2006/FOUND/services"
	"github.com/DRafi2006/FOUND/utils"
)

// WebSocketHandler owns the socket endpoint: it upgrades the request,
// hands the connection to the gateway, and runs the read loop. One read
// loop per connection keeps per-connection event order; the writer
// goroutine keeps handlers from ever blocking on a slow socket.
type WebSocketHandler struct {
	gateway   *services.Gateway
	logger    *utils.Logger
	queueSize int
	upgrader  websocket.Upgrader
}

func NewWebSocketHandler(gateway *services.Gateway, queueSize int, logger *utils.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		gateway:   gateway,
		logger:    logger,
		queueSize: queueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Mobile clients send no Origin header; CORS is enforced on
			// the REST surface instead.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the request and services the connection until the
// transport signals closure.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	conn := services.NewConnection(ws, h.queueSize)
	go conn.WritePump(h.logger)

	h.gateway.HandleConnect(conn)
	defer func() {
		h.gateway.HandleDisconnect(conn)
		conn.Close()
	}()

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				h.logger.Debug("Peer closed connection", "connId", conn.ID)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				h.logger.Debug("Read timeout", "connId", conn.ID, "error", err)
			} else {
				h.logger.Debug("Read error", "connId", conn.ID, "error", err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var frame models.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.logger.Warn("Dropping unparseable frame", "connId", conn.ID, "error", err)
			continue
		}

		h.gateway.HandleFrame(conn, frame)
	}
}
