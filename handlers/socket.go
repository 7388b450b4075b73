package handlers

import (
	"net/http"

	"beautycita/services/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SocketHandler upgrades authenticated requests to the realtime hub.
type SocketHandler struct {
	Hub      *realtime.Hub
	Upgrader websocket.Upgrader
	Logger   *zap.Logger
}

// NewSocketHandler accepts handshakes from origins; an empty list allows any origin.
func NewSocketHandler(hub *realtime.Hub, origins []string, logger *zap.Logger) *SocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &SocketHandler{
		Hub:    hub,
		Logger: logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// ServeWS handles GET /ws.
func (h *SocketHandler) ServeWS(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	h.Hub.Serve(conn, c.GetString("userID"), c.GetString("role"))
}
