package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

const chatModel = "chats"

// chatSummaryProjection is the list-view shape; detail reads fetch the
// full document.
var chatSummaryProjection = bson.D{
	{Key: "muted_by", Value: 0},
}

type ChatRepository struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewChatRepository(s store.Store, log *zap.SugaredLogger) *ChatRepository {
	r := &ChatRepository{store: s, log: log}
	_ = s.EnsureIndexes(context.Background(), chatModel, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants.profile_id", Value: 1}, {Key: "last_message_at", Value: -1}}},
		{Keys: bson.D{{Key: "chat_type", Value: 1}, {Key: "participants.profile_id", Value: 1}}},
	})
	return r
}

// GetChatsByProfileIDPaginated lists the active chats profileID belongs
// to, most recently active first.
func (r *ChatRepository) GetChatsByProfileIDPaginated(ctx context.Context, profileID string, page, limit int) ([]models.Chat, *store.Pagination, error) {
	criteria := bson.M{
		"participants.profile_id": profileID,
		"is_active":               true,
	}
	q := store.PageQuery{
		Page:       page,
		Limit:      limit,
		Sort:       bson.D{{Key: "last_message_at", Value: -1}},
		Projection: chatSummaryProjection,
	}
	var chats []models.Chat
	p, err := r.store.Paginate(ctx, chatModel, criteria, q, &chats)
	if err != nil {
		return nil, nil, err
	}
	return chats, p, nil
}

// GetChatByIDAndProfileID fetches a chat only if profileID is a member.
// A missing chat and a membership miss are indistinguishable: both return
// store.ErrNotFound. Bypasses the cache because the result gates
// authorization decisions.
func (r *ChatRepository) GetChatByIDAndProfileID(ctx context.Context, chatID, profileID string) (*models.Chat, error) {
	criteria := bson.M{
		"_id":                     chatID,
		"participants.profile_id": profileID,
		"is_active":               true,
	}
	var chat models.Chat
	if err := r.store.FindOne(ctx, chatModel, criteria, store.FindOptions{DisableCache: true}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatByParticipants finds the chat whose participant set equals
// profileIDs exactly. Used to prevent duplicate direct chats.
func (r *ChatRepository) GetChatByParticipants(ctx context.Context, profileIDs []string, chatType models.ChatType) (*models.Chat, error) {
	criteria := bson.M{
		"chat_type":               chatType,
		"is_active":               true,
		"participants.profile_id": bson.M{"$all": profileIDs},
		"participants":            bson.M{"$size": len(profileIDs)},
	}
	var chat models.Chat
	if err := r.store.FindOne(ctx, chatModel, criteria, store.FindOptions{DisableCache: true}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepository) ListActiveChats(ctx context.Context, profileID string) ([]models.Chat, error) {
	criteria := bson.M{
		"participants.profile_id": profileID,
		"is_active":               true,
	}
	var chats []models.Chat
	opts := store.FindOptions{Sort: bson.D{{Key: "last_message_at", Value: -1}}, DisableCache: true}
	if err := r.store.Find(ctx, chatModel, criteria, opts, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	return r.store.Insert(ctx, chatModel, chat)
}

// SetLastMessage moves the denormalized last-message pointer. Only the
// message service calls this; the pointer is never read-repaired.
func (r *ChatRepository) SetLastMessage(ctx context.Context, chatID, messageID string, at time.Time) error {
	_, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"last_message_id": messageID, "last_message_at": at}},
		nil,
	)
	return err
}

// IncrementUnreadExcept bumps the unread counter of every participant but
// the sender in one positional update.
func (r *ChatRepository) IncrementUnreadExcept(ctx context.Context, chatID, senderID string) error {
	_, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID},
		bson.M{"$inc": bson.M{"participants.$[p].unread_count": 1}},
		&store.UpdateOptions{ArrayFilters: []interface{}{
			bson.M{"p.profile_id": bson.M{"$ne": senderID}},
		}},
	)
	return err
}

// DecrementUnread lowers profileID's unread counter by one, never below
// zero: the array filter only matches entries with a positive count.
func (r *ChatRepository) DecrementUnread(ctx context.Context, chatID, profileID string) error {
	_, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID},
		bson.M{"$inc": bson.M{"participants.$[p].unread_count": -1}},
		&store.UpdateOptions{ArrayFilters: []interface{}{
			bson.M{"p.profile_id": profileID, "p.unread_count": bson.M{"$gt": 0}},
		}},
	)
	return err
}

func (r *ChatRepository) ResetUnread(ctx context.Context, chatID, profileID string, at time.Time) error {
	_, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{
			"participants.$[p].unread_count": 0,
			"participants.$[p].last_read_at": at,
		}},
		&store.UpdateOptions{ArrayFilters: []interface{}{
			bson.M{"p.profile_id": profileID},
		}},
	)
	return err
}

// AddParticipant appends p unless a participant with the same profile id
// already exists.
func (r *ChatRepository) AddParticipant(ctx context.Context, chatID string, p models.Participant) error {
	n, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID, "participants.profile_id": bson.M{"$ne": p.ProfileID}},
		bson.M{"$push": bson.M{"participants": p}},
		nil,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (r *ChatRepository) RemoveParticipant(ctx context.Context, chatID, profileID string) error {
	_, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID},
		bson.M{"$pull": bson.M{
			"participants": bson.M{"profile_id": profileID},
			"admin_ids":    profileID,
		}},
		nil,
	)
	return err
}

// Deactivate soft-deletes the chat; inactive chats drop out of every
// query by default.
func (r *ChatRepository) Deactivate(ctx context.Context, chatID string) error {
	_, err := r.store.Update(ctx, chatModel,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"is_active": false}},
		nil,
	)
	return err
}
