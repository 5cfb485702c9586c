package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/events"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/metrics"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/middleware"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/service"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/ws"
)

// MessageAPI is what the message handler needs from the message service.
type MessageAPI interface {
	Send(ctx context.Context, chatID, senderID string, in service.SendMessageInput) (*models.Message, error)
	Edit(ctx context.Context, messageID, editorID, newContent string) (*models.Message, error)
	Delete(ctx context.Context, messageID, actingID string, forEveryone bool) (*models.Message, error)
	React(ctx context.Context, messageID, profileID, emoji string) (*models.Message, error)
	Unreact(ctx context.Context, messageID, profileID string) (*models.Message, error)
	MarkRead(ctx context.Context, messageID, profileID string) (*models.Message, error)
	MarkChatRead(ctx context.Context, chatID, profileID string) (int64, error)
	List(ctx context.Context, chatID, requesterID string, page, limit int) ([]models.Message, *store.Pagination, error)
	SearchPaginated(ctx context.Context, chatID, requesterID, query string, page, limit int) ([]models.Message, *store.Pagination, error)
	Get(ctx context.Context, messageID, requesterID string) (*models.Message, error)
	UnreadCount(ctx context.Context, chatID, profileID string) (int64, error)
}

type MessageHandler struct {
	svc MessageAPI
	pub eventPublisher
	hub *ws.Hub
	log *zap.SugaredLogger
}

func NewMessageHandler(svc MessageAPI, pub eventPublisher, hub *ws.Hub, log *zap.SugaredLogger) *MessageHandler {
	return &MessageHandler{svc: svc, pub: pub, hub: hub, log: log}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var in service.SendMessageInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	actor := middleware.ProfileID(c)
	msg, err := h.svc.Send(c.UserContext(), c.Params("chat_id"), actor, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	metrics.MessagesSent.Inc()
	h.emit(events.Event{Type: events.TypeMessageSent, ChatID: msg.ChatID, ActorID: actor, Payload: msg})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": msg})
}

func (h *MessageHandler) List(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	msgs, p, err := h.svc.List(c.UserContext(), c.Params("chat_id"), middleware.ProfileID(c), page, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": msgs, "pagination": p})
}

func (h *MessageHandler) Search(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	msgs, p, err := h.svc.SearchPaginated(c.UserContext(), c.Params("chat_id"), middleware.ProfileID(c), c.Query("q"), page, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": msgs, "pagination": p})
}

func (h *MessageHandler) Get(c *fiber.Ctx) error {
	msg, err := h.svc.Get(c.UserContext(), c.Params("message_id"), middleware.ProfileID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": msg})
}

type editRequest struct {
	Content string `json:"content"`
}

func (h *MessageHandler) Edit(c *fiber.Ctx) error {
	var in editRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	actor := middleware.ProfileID(c)
	msg, err := h.svc.Edit(c.UserContext(), c.Params("message_id"), actor, in.Content)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeMessageEdited, ChatID: msg.ChatID, ActorID: actor, Payload: msg})
	return c.JSON(fiber.Map{"data": msg})
}

// Delete tombstones for everyone when ?for_everyone=true, otherwise hides
// the message for the caller only.
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	forEveryone := c.QueryBool("for_everyone", false)
	actor := middleware.ProfileID(c)
	msg, err := h.svc.Delete(c.UserContext(), c.Params("message_id"), actor, forEveryone)
	if err != nil {
		return writeError(c, h.log, err)
	}
	metrics.MessagesDeleted.Inc()
	if forEveryone {
		h.emit(events.Event{Type: events.TypeMessageDeleted, ChatID: msg.ChatID, ActorID: actor, Payload: fiber.Map{"message_id": msg.ID}})
	}
	return c.JSON(fiber.Map{"data": msg})
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

func (h *MessageHandler) React(c *fiber.Ctx) error {
	var in reactRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	actor := middleware.ProfileID(c)
	msg, err := h.svc.React(c.UserContext(), c.Params("message_id"), actor, in.Emoji)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeReactionAdded, ChatID: msg.ChatID, ActorID: actor, Payload: msg})
	return c.JSON(fiber.Map{"data": msg})
}

func (h *MessageHandler) Unreact(c *fiber.Ctx) error {
	actor := middleware.ProfileID(c)
	msg, err := h.svc.Unreact(c.UserContext(), c.Params("message_id"), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeReactionRemoved, ChatID: msg.ChatID, ActorID: actor, Payload: msg})
	return c.JSON(fiber.Map{"data": msg})
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	actor := middleware.ProfileID(c)
	msg, err := h.svc.MarkRead(c.UserContext(), c.Params("message_id"), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeMessageRead, ChatID: msg.ChatID, ActorID: actor, Payload: fiber.Map{"message_id": msg.ID}})
	return c.JSON(fiber.Map{"data": msg})
}

func (h *MessageHandler) MarkChatRead(c *fiber.Ctx) error {
	actor := middleware.ProfileID(c)
	chatID := c.Params("chat_id")
	n, err := h.svc.MarkChatRead(c.UserContext(), chatID, actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeChatRead, ChatID: chatID, ActorID: actor, Payload: fiber.Map{"marked": n}})
	return c.JSON(fiber.Map{"data": fiber.Map{"marked": n}})
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.svc.UnreadCount(c.UserContext(), c.Params("chat_id"), middleware.ProfileID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread_count": n}})
}

// TotalUnread sums the caller's unread counters across every active chat.
func (h *MessageHandler) TotalUnread(c *fiber.Ctx) error {
	n, err := h.svc.UnreadCount(c.UserContext(), "", middleware.ProfileID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread_count": n}})
}

func (h *MessageHandler) emit(ev events.Event) {
	if h.hub != nil {
		h.hub.BroadcastToChat(ev.ChatID, ev)
	}
	publishAsync(h.pub, ev)
}
