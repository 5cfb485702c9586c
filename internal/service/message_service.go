package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/apperrors"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/sanitize"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

// Membership failures deliberately reuse one message so a non-participant
// probing ids cannot tell absent from forbidden.
const (
	chatAccessMsg    = "chat not found or access denied"
	messageAccessMsg = "message not found or access denied"
)

// MessageService orchestrates message mutations and keeps the chat
// summary (last-message pointer, unread counters) in step with them.
// Every operation re-checks membership against the current chat state
// before mutating.
type MessageService struct {
	chats    ChatStore
	messages MessageStore
	sanitize func(string) string
	log      *zap.SugaredLogger
}

func NewMessageService(chats ChatStore, messages MessageStore, sanitizer func(string) string, log *zap.SugaredLogger) *MessageService {
	if sanitizer == nil {
		sanitizer = sanitize.Content
	}
	return &MessageService{chats: chats, messages: messages, sanitize: sanitizer, log: log}
}

type SendMessageInput struct {
	Content         string              `json:"content"`
	Attachments     []models.Attachment `json:"attachments"`
	ReplyTo         string              `json:"reply_to"`
	Mentions        []string            `json:"mentions"`
	ClientMessageID string              `json:"client_message_id"`
}

// Send validates membership, sanitizes content, persists the message and
// updates the chat summary. The two chat-summary writes are separate
// single-document updates; the summary is a rebuildable projection, not
// the authoritative read state (GetUnreadCount recomputes from receipts).
func (s *MessageService) Send(ctx context.Context, chatID, senderID string, in SendMessageInput) (*models.Message, error) {
	if chatID == "" || senderID == "" {
		return nil, apperrors.Validation("chat id and sender id are required")
	}
	content := s.sanitize(in.Content)
	if content == "" && len(in.Attachments) == 0 {
		return nil, apperrors.Validation("message content or attachments required")
	}

	if _, err := s.authorize(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	clientID := ""
	if in.ClientMessageID != "" {
		clientID = sanitize.Identifier(in.ClientMessageID)
		if clientID == "" {
			return nil, apperrors.Validation("invalid client message id")
		}
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:              uuid.NewString(),
		ClientMessageID: clientID,
		ChatID:          chatID,
		SenderID:        senderID,
		Content:         content,
		Attachments:     in.Attachments,
		ReplyTo:         sanitize.Identifier(in.ReplyTo),
		Mentions:        in.Mentions,
		Reactions:       []models.Reaction{},
		ReadBy:          []models.ReadReceipt{},
		MessageStatus:   models.StatusSent,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if msg.Attachments == nil {
		msg.Attachments = []models.Attachment{}
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, store.ErrDuplicate) && clientID != "" {
			// retried send: hand back the message stored the first time
			return s.messages.GetByClientID(ctx, chatID, clientID)
		}
		return nil, err
	}

	if err := s.chats.SetLastMessage(ctx, chatID, msg.ID, now); err != nil {
		return nil, err
	}
	if err := s.chats.IncrementUnreadExcept(ctx, chatID, senderID); err != nil {
		return nil, err
	}
	return msg, nil
}

// Edit lets only the original sender change content. The previous version
// goes onto the edit history first.
func (s *MessageService) Edit(ctx context.Context, messageID, editorID, newContent string) (*models.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, msg.ChatID, editorID); err != nil {
		return nil, err
	}
	if msg.SenderID != editorID {
		return nil, apperrors.Authorization("only the sender can edit a message")
	}
	if msg.IsDeleted {
		return nil, apperrors.Validation("cannot edit a deleted message")
	}
	content := s.sanitize(newContent)
	if content == "" {
		return nil, apperrors.Validation("message content required")
	}

	now := time.Now().UTC()
	if err := s.messages.Edit(ctx, msg.ID, msg.Content, content, now); err != nil {
		return nil, err
	}
	msg.EditHistory = append(msg.EditHistory, models.EditEntry{Content: msg.Content, EditedAt: now})
	msg.Content = content
	msg.IsEdited = true
	msg.UpdatedAt = now
	return msg, nil
}

// Delete removes a message for everyone (tombstone) or just for the
// caller. For-everyone requires being the sender or a chat admin; the
// tombstone keeps the row with blanked content either way.
func (s *MessageService) Delete(ctx context.Context, messageID, actingID string, forEveryone bool) (*models.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	chat, err := s.authorize(ctx, msg.ChatID, actingID)
	if err != nil {
		return nil, err
	}

	if !forEveryone {
		if err := s.messages.HideForProfile(ctx, msg.ID, actingID); err != nil {
			return nil, err
		}
		msg.DeletedFor = append(msg.DeletedFor, actingID)
		return msg, nil
	}

	if msg.SenderID != actingID && !chat.IsAdmin(actingID) {
		return nil, apperrors.Authorization("only the sender or a chat admin can delete for everyone")
	}
	if msg.IsDeleted {
		return msg, nil
	}
	now := time.Now().UTC()
	if err := s.messages.Tombstone(ctx, msg.ID, actingID, now); err != nil {
		return nil, err
	}
	msg.Content = ""
	msg.Attachments = []models.Attachment{}
	msg.IsDeleted = true
	msg.DeletedBy = actingID
	msg.DeletedAt = &now
	msg.UpdatedAt = now
	return msg, nil
}

// React adds or replaces the caller's reaction; a participant holds at
// most one reaction per message. Enforcement lives in the repository's
// set-style update, not here.
func (s *MessageService) React(ctx context.Context, messageID, profileID, emoji string) (*models.Message, error) {
	if emoji == "" {
		return nil, apperrors.Validation("emoji required")
	}
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, msg.ChatID, profileID); err != nil {
		return nil, err
	}
	if msg.IsDeleted {
		return nil, apperrors.Validation("cannot react to a deleted message")
	}
	if err := s.messages.AddReaction(ctx, msg.ID, profileID, emoji, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.getMessage(ctx, messageID)
}

func (s *MessageService) Unreact(ctx context.Context, messageID, profileID string) (*models.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, msg.ChatID, profileID); err != nil {
		return nil, err
	}
	if err := s.messages.RemoveReaction(ctx, msg.ID, profileID); err != nil {
		return nil, err
	}
	return s.getMessage(ctx, messageID)
}

// MarkRead receipts the message for profileID. Only the first read
// decrements the chat unread counter (floored at zero in the repository);
// repeat reads are no-ops.
func (s *MessageService) MarkRead(ctx context.Context, messageID, profileID string) (*models.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, msg.ChatID, profileID); err != nil {
		return nil, err
	}
	// the unread counter only ever counts other participants' messages,
	// so a sender reading their own is a no-op, matching MarkChatRead
	if msg.SenderID == profileID {
		return msg, nil
	}
	newlyRead, err := s.messages.MarkRead(ctx, msg.ID, profileID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if newlyRead {
		if err := s.chats.DecrementUnread(ctx, msg.ChatID, profileID); err != nil {
			return nil, err
		}
	}
	return s.getMessage(ctx, messageID)
}

// MarkChatRead receipts everything visible in the chat and zeroes the
// caller's unread counter. Returns the number of newly receipted
// messages.
func (s *MessageService) MarkChatRead(ctx context.Context, chatID, profileID string) (int64, error) {
	if _, err := s.authorize(ctx, chatID, profileID); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	n, err := s.messages.MarkAllRead(ctx, chatID, profileID, now)
	if err != nil {
		return 0, err
	}
	if err := s.chats.ResetUnread(ctx, chatID, profileID, now); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns a page of the chat's visible messages in chronological
// order (the repository reads newest-first; the page is reversed here for
// display).
func (s *MessageService) List(ctx context.Context, chatID, requesterID string, page, limit int) ([]models.Message, *store.Pagination, error) {
	if _, err := s.authorize(ctx, chatID, requesterID); err != nil {
		return nil, nil, err
	}
	msgs, p, err := s.messages.GetByChatIDPaginated(ctx, chatID, requesterID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, p, nil
}

// Search is an authorization-gated pass-through to the repository search.
func (s *MessageService) Search(ctx context.Context, chatID, requesterID, query string, limit int64) ([]models.Message, error) {
	if _, err := s.authorize(ctx, chatID, requesterID); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, apperrors.Validation("search query required")
	}
	return s.messages.Search(ctx, chatID, query, limit)
}

func (s *MessageService) SearchPaginated(ctx context.Context, chatID, requesterID, query string, page, limit int) ([]models.Message, *store.Pagination, error) {
	if _, err := s.authorize(ctx, chatID, requesterID); err != nil {
		return nil, nil, err
	}
	if query == "" {
		return nil, nil, apperrors.Validation("search query required")
	}
	return s.messages.SearchPaginated(ctx, chatID, query, page, limit)
}

// Get fetches a single message after sanitizing the id and checking the
// requester belongs to the owning chat.
func (s *MessageService) Get(ctx context.Context, messageID, requesterID string) (*models.Message, error) {
	id := sanitize.Identifier(messageID)
	if id == "" {
		return nil, apperrors.Validation("invalid message id")
	}
	msg, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, msg.ChatID, requesterID); err != nil {
		return nil, err
	}
	return msg, nil
}

// UnreadCount computes the unread total for one chat from read receipts,
// or, with an empty chatID, sums the denormalized counters across all of
// the caller's active chats.
func (s *MessageService) UnreadCount(ctx context.Context, chatID, profileID string) (int64, error) {
	if chatID == "" {
		chats, err := s.chats.ListActiveChats(ctx, profileID)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, c := range chats {
			if p, ok := c.Participant(profileID); ok {
				total += int64(p.UnreadCount)
			}
		}
		return total, nil
	}
	if _, err := s.authorize(ctx, chatID, profileID); err != nil {
		return 0, err
	}
	return s.messages.GetUnreadCount(ctx, chatID, profileID)
}

// authorize fetches the chat gated on membership. Absent chat and
// non-membership collapse into one authorization error.
func (s *MessageService) authorize(ctx context.Context, chatID, profileID string) (*models.Chat, error) {
	chat, err := s.chats.GetChatByIDAndProfileID(ctx, chatID, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Authorization(chatAccessMsg)
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *MessageService) getMessage(ctx context.Context, messageID string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Authorization(messageAccessMsg)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}
