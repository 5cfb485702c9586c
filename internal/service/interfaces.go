package service

import (
	"context"
	"time"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

// ChatStore is the chat persistence surface the services depend on,
// satisfied by repository.ChatRepository.
type ChatStore interface {
	GetChatsByProfileIDPaginated(ctx context.Context, profileID string, page, limit int) ([]models.Chat, *store.Pagination, error)
	GetChatByIDAndProfileID(ctx context.Context, chatID, profileID string) (*models.Chat, error)
	GetChatByParticipants(ctx context.Context, profileIDs []string, chatType models.ChatType) (*models.Chat, error)
	ListActiveChats(ctx context.Context, profileID string) ([]models.Chat, error)
	Create(ctx context.Context, chat *models.Chat) error
	SetLastMessage(ctx context.Context, chatID, messageID string, at time.Time) error
	IncrementUnreadExcept(ctx context.Context, chatID, senderID string) error
	DecrementUnread(ctx context.Context, chatID, profileID string) error
	ResetUnread(ctx context.Context, chatID, profileID string, at time.Time) error
	AddParticipant(ctx context.Context, chatID string, p models.Participant) error
	RemoveParticipant(ctx context.Context, chatID, profileID string) error
	Deactivate(ctx context.Context, chatID string) error
}

// MessageStore is the message persistence surface, satisfied by
// repository.MessageRepository.
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	GetByID(ctx context.Context, messageID string) (*models.Message, error)
	GetByClientID(ctx context.Context, chatID, clientMessageID string) (*models.Message, error)
	GetByChatIDPaginated(ctx context.Context, chatID, viewerID string, page, limit int) ([]models.Message, *store.Pagination, error)
	Search(ctx context.Context, chatID, query string, limit int64) ([]models.Message, error)
	SearchPaginated(ctx context.Context, chatID, query string, page, limit int) ([]models.Message, *store.Pagination, error)
	GetUnreadCount(ctx context.Context, chatID, profileID string) (int64, error)
	MarkRead(ctx context.Context, messageID, profileID string, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, chatID, profileID string, at time.Time) (int64, error)
	AddReaction(ctx context.Context, messageID, profileID, emoji string, at time.Time) error
	RemoveReaction(ctx context.Context, messageID, profileID string) error
	Edit(ctx context.Context, messageID, prevContent, newContent string, at time.Time) error
	Tombstone(ctx context.Context, messageID, deletedBy string, at time.Time) error
	HideForProfile(ctx context.Context, messageID, profileID string) error
}

// Directory mirrors profile.Directory without importing it, keeping the
// service layer free of persistence packages.
type Directory interface {
	Resolve(ctx context.Context, profileIDs []string) (map[string]models.Profile, error)
}
