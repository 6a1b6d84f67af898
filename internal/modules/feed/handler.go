package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	jwtsvc "stagegear/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the dashboard host is fixed
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub *Hub
	jwt *jwtsvc.Service
	log *zap.Logger
}

func NewHandler(hub *Hub, jwt *jwtsvc.Service, log *zap.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwt, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/feed", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and keeps it registered until the
// client goes away. Auth is a token query parameter since browsers cannot set
// headers on websocket dials.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Register(claims.UserID, conn)
	h.log.Info("feed client connected", zap.String("user_id", claims.UserID))

	defer func() {
		h.hub.Unregister(claims.UserID)
		h.log.Info("feed client disconnected", zap.String("user_id", claims.UserID))
	}()

	// Drain control frames; the feed is server-push only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
