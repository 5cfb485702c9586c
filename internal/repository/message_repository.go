package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

const messageModel = "messages"

const (
	searchDefaultLimit = 20
	searchMaxLimit     = 50
)

type MessageRepository struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewMessageRepository(s store.Store, log *zap.SugaredLogger) *MessageRepository {
	r := &MessageRepository{store: s, log: log}
	_ = s.EnsureIndexes(context.Background(), messageModel, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			// partial, not sparse: a compound sparse index would still
			// index clientless messages under (chat_id, null) and make
			// the second one collide
			Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "client_message_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"client_message_id": bson.M{"$exists": true}},
			),
		},
	})
	return r
}

// visibleCriteria excludes tombstoned messages and those the viewer
// deleted for themselves.
func visibleCriteria(chatID, viewerID string) bson.M {
	c := bson.M{"chat_id": chatID, "is_deleted": false}
	if viewerID != "" {
		c["deleted_for"] = bson.M{"$ne": viewerID}
	}
	return c
}

func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	return r.store.Insert(ctx, messageModel, m)
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	var m models.Message
	if err := r.store.FindOne(ctx, messageModel, bson.M{"_id": messageID}, store.FindOptions{DisableCache: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) GetByIDAndChatID(ctx context.Context, messageID, chatID string) (*models.Message, error) {
	var m models.Message
	criteria := bson.M{"_id": messageID, "chat_id": chatID}
	if err := r.store.FindOne(ctx, messageModel, criteria, store.FindOptions{DisableCache: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByClientID resolves a retried send by its idempotency id.
func (r *MessageRepository) GetByClientID(ctx context.Context, chatID, clientMessageID string) (*models.Message, error) {
	var m models.Message
	criteria := bson.M{"chat_id": chatID, "client_message_id": clientMessageID}
	if err := r.store.FindOne(ctx, messageModel, criteria, store.FindOptions{DisableCache: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByChatIDPaginated returns visible messages newest-first; callers
// reverse the page when they need chronological display order.
func (r *MessageRepository) GetByChatIDPaginated(ctx context.Context, chatID, viewerID string, page, limit int) ([]models.Message, *store.Pagination, error) {
	q := store.PageQuery{
		Page:  page,
		Limit: limit,
		Sort:  bson.D{{Key: "created_at", Value: -1}},
	}
	var msgs []models.Message
	p, err := r.store.Paginate(ctx, messageModel, visibleCriteria(chatID, viewerID), q, &msgs)
	if err != nil {
		return nil, nil, err
	}
	return msgs, p, nil
}

func (r *MessageRepository) GetByChatID(ctx context.Context, chatID, viewerID string, limit int64) ([]models.Message, error) {
	opts := store.FindOptions{
		Sort:  bson.D{{Key: "created_at", Value: -1}},
		Limit: limit,
	}
	var msgs []models.Message
	if err := r.store.Find(ctx, messageModel, visibleCriteria(chatID, viewerID), opts, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func searchCriteria(chatID, query string) bson.M {
	c := visibleCriteria(chatID, "")
	c["content"] = bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	return c
}

// Search is a case-insensitive substring match on content within a chat,
// newest first, capped at searchMaxLimit.
func (r *MessageRepository) Search(ctx context.Context, chatID, query string, limit int64) ([]models.Message, error) {
	if limit <= 0 {
		limit = searchDefaultLimit
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}
	opts := store.FindOptions{
		Sort:         bson.D{{Key: "created_at", Value: -1}},
		Limit:        limit,
		DisableCache: true,
	}
	var msgs []models.Message
	if err := r.store.Find(ctx, messageModel, searchCriteria(chatID, query), opts, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *MessageRepository) SearchPaginated(ctx context.Context, chatID, query string, page, limit int) ([]models.Message, *store.Pagination, error) {
	if limit <= 0 {
		limit = searchDefaultLimit
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}
	q := store.PageQuery{
		Page:  page,
		Limit: limit,
		Sort:  bson.D{{Key: "created_at", Value: -1}},
	}
	var msgs []models.Message
	p, err := r.store.Paginate(ctx, messageModel, searchCriteria(chatID, query), q, &msgs)
	if err != nil {
		return nil, nil, err
	}
	return msgs, p, nil
}

// GetUnreadCount finds the participant's most recent read receipt and
// counts newer messages. A participant who never read anything gets the
// full non-deleted count. Two store round-trips instead of a duplicated
// counter on the message side.
func (r *MessageRepository) GetUnreadCount(ctx context.Context, chatID, profileID string) (int64, error) {
	var last models.Message
	err := r.store.FindOne(ctx, messageModel,
		bson.M{"chat_id": chatID, "read_by.profile_id": profileID},
		store.FindOptions{
			Sort:         bson.D{{Key: "created_at", Value: -1}},
			Projection:   bson.D{{Key: "created_at", Value: 1}},
			DisableCache: true,
		},
		&last,
	)
	if errors.Is(err, store.ErrNotFound) {
		return r.store.Count(ctx, messageModel, bson.M{"chat_id": chatID, "is_deleted": false})
	}
	if err != nil {
		return 0, err
	}
	return r.store.Count(ctx, messageModel, bson.M{
		"chat_id":    chatID,
		"is_deleted": false,
		"created_at": bson.M{"$gt": last.CreatedAt},
	})
}

// MarkRead upserts a read receipt for profileID. The criteria guard keeps
// at most one receipt per participant; the boolean result reports whether
// this call added it (false means already read, an idempotent no-op).
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, profileID string, at time.Time) (bool, error) {
	n, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID, "read_by.profile_id": bson.M{"$ne": profileID}},
		bson.M{"$push": bson.M{"read_by": models.ReadReceipt{ProfileID: profileID, ReadAt: at}}},
		nil,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllRead receipts every visible message in the chat the participant
// has not read and did not send. Returns how many were newly receipted.
func (r *MessageRepository) MarkAllRead(ctx context.Context, chatID, profileID string, at time.Time) (int64, error) {
	return r.store.UpdateMany(ctx, messageModel,
		bson.M{
			"chat_id":            chatID,
			"is_deleted":         false,
			"sender_id":          bson.M{"$ne": profileID},
			"read_by.profile_id": bson.M{"$ne": profileID},
		},
		bson.M{"$push": bson.M{"read_by": models.ReadReceipt{ProfileID: profileID, ReadAt: at}}},
	)
}

// AddReaction replaces any existing reaction from profileID. The pull and
// the guarded push are two single-document updates; concurrent reactions
// from the same participant resolve last-write-wins.
func (r *MessageRepository) AddReaction(ctx context.Context, messageID, profileID, emoji string, at time.Time) error {
	if _, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID},
		bson.M{"$pull": bson.M{"reactions": bson.M{"profile_id": profileID}}},
		nil,
	); err != nil {
		return err
	}
	_, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID, "reactions.profile_id": bson.M{"$ne": profileID}},
		bson.M{"$push": bson.M{"reactions": models.Reaction{ProfileID: profileID, Emoji: emoji, ReactedAt: at}}},
		nil,
	)
	return err
}

func (r *MessageRepository) RemoveReaction(ctx context.Context, messageID, profileID string) error {
	_, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID},
		bson.M{"$pull": bson.M{"reactions": bson.M{"profile_id": profileID}}},
		nil,
	)
	return err
}

// Edit overwrites content after pushing the previous version onto the
// edit history.
func (r *MessageRepository) Edit(ctx context.Context, messageID, prevContent, newContent string, at time.Time) error {
	_, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID},
		bson.M{
			"$push": bson.M{"edit_history": models.EditEntry{Content: prevContent, EditedAt: at}},
			"$set":  bson.M{"content": newContent, "is_edited": true},
		},
		nil,
	)
	return err
}

// Tombstone blanks content and attachments but keeps the row. There is no
// hard-delete path; admin deletes tombstone the same way.
func (r *MessageRepository) Tombstone(ctx context.Context, messageID, deletedBy string, at time.Time) error {
	_, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID},
		bson.M{"$set": bson.M{
			"content":     "",
			"attachments": []models.Attachment{},
			"is_deleted":  true,
			"deleted_by":  deletedBy,
			"deleted_at":  at,
		}},
		nil,
	)
	return err
}

// HideForProfile implements delete-for-me: the shared document is
// untouched apart from the viewer exclusion list.
func (r *MessageRepository) HideForProfile(ctx context.Context, messageID, profileID string) error {
	_, err := r.store.Update(ctx, messageModel,
		bson.M{"_id": messageID},
		bson.M{"$addToSet": bson.M{"deleted_for": profileID}},
		nil,
	)
	return err
}
