// Package routes maps the HTTP surface onto the handlers.
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/handlers"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/middleware"
)

type Deps struct {
	Chats    *handlers.ChatHandler
	Messages *handlers.MessageHandler
	WS       *handlers.WSHandler

	JWTSecret string
	Redis     *redis.Client
	RateLimit int
	RateWin   time.Duration
	Log       *zap.SugaredLogger
}

func Register(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := middleware.JWTAuth(d.JWTSecret)
	limit := middleware.RateLimit(d.Redis, d.RateLimit, d.RateWin, d.Log)

	v1 := app.Group("/v1", auth)

	chats := v1.Group("/chats")
	chats.Get("/", d.Chats.List)
	chats.Post("/", limit, d.Chats.Create)
	chats.Post("/lookup", d.Chats.Lookup)
	chats.Get("/unread-count", d.Messages.TotalUnread)
	chats.Get("/:chat_id", d.Chats.Get)
	chats.Delete("/:chat_id", limit, d.Chats.Deactivate)
	chats.Post("/:chat_id/participants", limit, d.Chats.AddParticipant)
	chats.Delete("/:chat_id/participants/:profile_id", limit, d.Chats.RemoveParticipant)

	chats.Post("/:chat_id/messages", limit, d.Messages.Send)
	chats.Get("/:chat_id/messages", d.Messages.List)
	chats.Get("/:chat_id/messages/search", d.Messages.Search)
	chats.Get("/:chat_id/unread-count", d.Messages.UnreadCount)
	chats.Post("/:chat_id/read", limit, d.Messages.MarkChatRead)

	msgs := v1.Group("/messages")
	msgs.Get("/:message_id", d.Messages.Get)
	msgs.Patch("/:message_id", limit, d.Messages.Edit)
	msgs.Delete("/:message_id", limit, d.Messages.Delete)
	msgs.Post("/:message_id/read", limit, d.Messages.MarkRead)
	msgs.Put("/:message_id/reactions", limit, d.Messages.React)
	msgs.Delete("/:message_id/reactions", limit, d.Messages.Unreact)

	app.Get("/ws", auth, d.WS.Upgrade, d.WS.Serve())
}
