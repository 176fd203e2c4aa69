package ws

import (
	"net/http"
	"slices"

	"classifieds_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler - allowedOrigins те же, что у CORS; "*" или пустой список пускает всех
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeFeed godoc
// @Summary Живая лента объявлений
// @Description WebSocket. Сервер шлет JSON-события advertisement.created / updated / deleted.
// @Tags advertisements
// @Success 101 {object} dto.AdvertisementEvent
// @Router /ws/advertisements [get]
func (h *Handler) ServeFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.hub, conn)
	if !h.hub.add(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/advertisements", h.ServeFeed)
}
