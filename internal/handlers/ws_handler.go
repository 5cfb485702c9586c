package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/metrics"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/middleware"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/ws"
)

// membershipChecker is the slice of the chat service the socket handler
// needs to gate room joins.
type membershipChecker interface {
	GetChatByIDAndProfileID(ctx context.Context, chatID, profileID string) (*models.Chat, error)
}

type WSHandler struct {
	hub   *ws.Hub
	chats membershipChecker
	log   *zap.SugaredLogger
}

func NewWSHandler(hub *ws.Hub, chats membershipChecker, log *zap.SugaredLogger) *WSHandler {
	return &WSHandler{hub: hub, chats: chats, log: log}
}

// Upgrade rejects plain HTTP requests on the socket route.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	// Locals survive the upgrade; the connection handler reads them back.
	c.Locals(middleware.ProfileIDKey, middleware.ProfileID(c))
	return c.Next()
}

// Serve runs one client connection. Auth already happened; the profile id
// rides in on the connection locals.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		profileID, _ := conn.Locals(middleware.ProfileIDKey).(string)
		if profileID == "" {
			_ = conn.Close()
			return
		}

		client := ws.NewClient(profileID, conn, h.log)
		h.hub.Register(client)
		metrics.WSConnections.Inc()
		defer metrics.WSConnections.Dec()

		allowed := func(chatID, pid string) bool {
			_, err := h.chats.GetChatByIDAndProfileID(context.Background(), chatID, pid)
			return err == nil
		}

		go client.WritePump()
		client.ReadPump(h.hub, allowed)
	})
}
