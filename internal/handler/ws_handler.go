package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-chat/internal/presence"
	"github.com/weiawesome/wes-chat/pkg/log"
)

// WSHandler upgrades presence connections and hands them to the engine.
type WSHandler struct {
	engine   *presence.Engine
	upgrader websocket.Upgrader
}

// NewWSHandler creates a websocket handler accepting the given origins.
// "*" accepts any origin; requests without an Origin header are always
// accepted.
func NewWSHandler(engine *presence.Engine, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &WSHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := h.engine.NewClient(uuid.New().String(), conn)
	if err := h.engine.Register(client); err != nil {
		l.Warn().Err(err).Msg("presence engine unavailable")
		conn.Close()
		return
	}
	l.Debug().Str(log.FieldConnID, client.ID).Msg("websocket connected")

	go client.WritePump()
	go client.ReadPump()
}
