package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/events"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/middleware"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/service"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/ws"
)

// ChatAPI is what the chat handler needs from the chat service.
type ChatAPI interface {
	List(ctx context.Context, profileID string, page, limit int) ([]service.ChatView, *store.Pagination, error)
	Get(ctx context.Context, chatID, requesterID string) (*service.ChatView, error)
	Create(ctx context.Context, creatorID string, in service.CreateChatInput) (*models.Chat, error)
	GetByParticipants(ctx context.Context, requesterID string, profileIDs []string, chatType models.ChatType) (*models.Chat, error)
	AddParticipant(ctx context.Context, chatID, actingID, newProfileID string) (*models.Chat, error)
	RemoveParticipant(ctx context.Context, chatID, actingID, profileID string) (*models.Chat, error)
	Deactivate(ctx context.Context, chatID, actingID string) error
}

type ChatHandler struct {
	svc ChatAPI
	pub eventPublisher
	hub *ws.Hub
	log *zap.SugaredLogger
}

func NewChatHandler(svc ChatAPI, pub eventPublisher, hub *ws.Hub, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{svc: svc, pub: pub, hub: hub, log: log}
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	views, p, err := h.svc.List(c.UserContext(), middleware.ProfileID(c), page, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": views, "pagination": p})
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	view, err := h.svc.Get(c.UserContext(), c.Params("chat_id"), middleware.ProfileID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": view})
}

func (h *ChatHandler) Create(c *fiber.Ctx) error {
	var in service.CreateChatInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	actor := middleware.ProfileID(c)
	chat, err := h.svc.Create(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeChatCreated, ChatID: chat.ID, ActorID: actor, Payload: chat})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": chat})
}

type lookupRequest struct {
	ParticipantIDs []string        `json:"participant_ids"`
	ChatType       models.ChatType `json:"chat_type"`
}

// Lookup finds the chat whose participant set exactly matches the request.
func (h *ChatHandler) Lookup(c *fiber.Ctx) error {
	var in lookupRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	chat, err := h.svc.GetByParticipants(c.UserContext(), middleware.ProfileID(c), in.ParticipantIDs, in.ChatType)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"data": chat})
}

type participantRequest struct {
	ProfileID string `json:"profile_id"`
}

func (h *ChatHandler) AddParticipant(c *fiber.Ctx) error {
	var in participantRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}
	actor := middleware.ProfileID(c)
	chat, err := h.svc.AddParticipant(c.UserContext(), c.Params("chat_id"), actor, in.ProfileID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeChatUpdated, ChatID: chat.ID, ActorID: actor, Payload: chat})
	return c.JSON(fiber.Map{"data": chat})
}

func (h *ChatHandler) RemoveParticipant(c *fiber.Ctx) error {
	actor := middleware.ProfileID(c)
	chat, err := h.svc.RemoveParticipant(c.UserContext(), c.Params("chat_id"), actor, c.Params("profile_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeChatUpdated, ChatID: chat.ID, ActorID: actor, Payload: chat})
	return c.JSON(fiber.Map{"data": chat})
}

func (h *ChatHandler) Deactivate(c *fiber.Ctx) error {
	actor := middleware.ProfileID(c)
	chatID := c.Params("chat_id")
	if err := h.svc.Deactivate(c.UserContext(), chatID, actor); err != nil {
		return writeError(c, h.log, err)
	}
	h.emit(events.Event{Type: events.TypeChatUpdated, ChatID: chatID, ActorID: actor})
	return c.SendStatus(fiber.StatusNoContent)
}

// emit broadcasts to connected room members and hands the event to the
// broker. Broker failures are logged inside the publisher and do not
// fail the request.
func (h *ChatHandler) emit(ev events.Event) {
	if h.hub != nil {
		h.hub.BroadcastToChat(ev.ChatID, ev)
	}
	publishAsync(h.pub, ev)
}
