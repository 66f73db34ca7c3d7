package handler

import (
	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/internal/pkg/serverutils"
	"pdf-chat-be/internal/service"
	internalWS "pdf-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type SessionHandler struct {
	service service.ISessionService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewSessionHandler(service service.ISessionService, hub *internalWS.Hub, log logger.ILogger) *SessionHandler {
	return &SessionHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/session/v1")
	g.Get("status", h.GetStatus)
	g.Get("ws", h.ServeWs)
}

// ServeWs upgrades the request and streams status frames until the peer leaves.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionHandler", "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("SessionHandler", "WebSocket session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SessionHandler) GetStatus(c *fiber.Ctx) error {
	res, err := h.service.GetStatus(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Success get status", res))
}
