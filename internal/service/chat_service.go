package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/apperrors"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

const directChatSize = 2

// ChatService handles chat lifecycle and membership. Participant ids are
// decorated with display profiles through the batched directory.
type ChatService struct {
	chats    ChatStore
	profiles Directory
	log      *zap.SugaredLogger
}

func NewChatService(chats ChatStore, profiles Directory, log *zap.SugaredLogger) *ChatService {
	return &ChatService{chats: chats, profiles: profiles, log: log}
}

// ChatView pairs a chat with the resolved profiles of its participants.
type ChatView struct {
	Chat     models.Chat               `json:"chat"`
	Profiles map[string]models.Profile `json:"profiles"`
}

type CreateChatInput struct {
	ChatType       models.ChatType `json:"chat_type"`
	ParticipantIDs []string        `json:"participant_ids"`
	Name           string          `json:"name"`
}

// List pages through the caller's active chats by recent activity and
// resolves every participant profile in one batched lookup.
func (s *ChatService) List(ctx context.Context, profileID string, page, limit int) ([]ChatView, *store.Pagination, error) {
	chats, p, err := s.chats.GetChatsByProfileIDPaginated(ctx, profileID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	var ids []string
	for i := range chats {
		ids = append(ids, chats[i].ParticipantIDs()...)
	}
	profiles, err := s.profiles.Resolve(ctx, ids)
	if err != nil {
		s.log.Warnw("profile resolution failed for chat list", "profile_id", profileID, "error", err)
		profiles = map[string]models.Profile{}
	}

	views := make([]ChatView, 0, len(chats))
	for _, c := range chats {
		views = append(views, ChatView{Chat: c, Profiles: pickProfiles(profiles, c.ParticipantIDs())})
	}
	return views, p, nil
}

// Get returns the chat detail for a member. Non-members get the same
// error whether or not the chat exists.
func (s *ChatService) Get(ctx context.Context, chatID, requesterID string) (*ChatView, error) {
	chat, err := s.chats.GetChatByIDAndProfileID(ctx, chatID, requesterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Authorization(chatAccessMsg)
	}
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.Resolve(ctx, chat.ParticipantIDs())
	if err != nil {
		s.log.Warnw("profile resolution failed for chat", "chat_id", chatID, "error", err)
		profiles = map[string]models.Profile{}
	}
	return &ChatView{Chat: *chat, Profiles: profiles}, nil
}

// Create starts a chat. Direct chats require exactly two participants and
// reuse an existing chat with the same pair instead of duplicating it.
// The creator of a group chat becomes its admin.
func (s *ChatService) Create(ctx context.Context, creatorID string, in CreateChatInput) (*models.Chat, error) {
	if creatorID == "" {
		return nil, apperrors.Validation("creator id required")
	}
	if in.ChatType != models.ChatTypeDirect && in.ChatType != models.ChatTypeGroup {
		return nil, apperrors.Validationf("unknown chat type %q", in.ChatType)
	}

	ids := dedupeIDs(append([]string{creatorID}, in.ParticipantIDs...))
	if in.ChatType == models.ChatTypeDirect {
		if len(ids) != directChatSize {
			return nil, apperrors.Validation("direct chats require exactly two participants")
		}
		existing, err := s.chats.GetChatByParticipants(ctx, ids, models.ChatTypeDirect)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	} else if len(ids) < 2 {
		return nil, apperrors.Validation("group chats require at least two participants")
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		ID:           uuid.NewString(),
		ChatType:     in.ChatType,
		Name:         in.Name,
		Participants: make([]models.Participant, 0, len(ids)),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, id := range ids {
		role := models.RoleMember
		if in.ChatType == models.ChatTypeGroup && id == creatorID {
			role = models.RoleAdmin
		}
		chat.Participants = append(chat.Participants, models.Participant{
			ProfileID: id,
			Role:      role,
			JoinedAt:  now,
			Permissions: models.Permissions{
				CanSendMessages:    true,
				CanAddParticipants: role == models.RoleAdmin,
			},
		})
	}
	if in.ChatType == models.ChatTypeGroup {
		chat.AdminIDs = []string{creatorID}
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// GetByParticipants is the exact participant-set lookup. The requester
// must be part of the set it asks about.
func (s *ChatService) GetByParticipants(ctx context.Context, requesterID string, profileIDs []string, chatType models.ChatType) (*models.Chat, error) {
	ids := dedupeIDs(profileIDs)
	if len(ids) == 0 {
		return nil, apperrors.Validation("participant ids required")
	}
	member := false
	for _, id := range ids {
		if id == requesterID {
			member = true
			break
		}
	}
	if !member {
		return nil, apperrors.Authorization(chatAccessMsg)
	}
	chat, err := s.chats.GetChatByParticipants(ctx, ids, chatType)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("no chat with that participant set")
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// AddParticipant adds a member to a group chat. Only admins may change
// membership; direct chats are fixed at creation.
func (s *ChatService) AddParticipant(ctx context.Context, chatID, actingID, newProfileID string) (*models.Chat, error) {
	chat, err := s.member(ctx, chatID, actingID)
	if err != nil {
		return nil, err
	}
	if chat.ChatType != models.ChatTypeGroup {
		return nil, apperrors.Validation("participants can only be added to group chats")
	}
	if !chat.IsAdmin(actingID) {
		return nil, apperrors.Authorization("only a chat admin can add participants")
	}
	if newProfileID == "" {
		return nil, apperrors.Validation("profile id required")
	}
	if chat.HasParticipant(newProfileID) {
		return nil, apperrors.Validation("profile is already a participant")
	}

	p := models.Participant{
		ProfileID:   newProfileID,
		Role:        models.RoleMember,
		JoinedAt:    time.Now().UTC(),
		Permissions: models.Permissions{CanSendMessages: true},
	}
	if err := s.chats.AddParticipant(ctx, chatID, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Validation("profile is already a participant")
		}
		return nil, err
	}
	chat.Participants = append(chat.Participants, p)
	return chat, nil
}

// RemoveParticipant removes a member from a group chat: admins may remove
// anyone, members may remove themselves.
func (s *ChatService) RemoveParticipant(ctx context.Context, chatID, actingID, profileID string) (*models.Chat, error) {
	chat, err := s.member(ctx, chatID, actingID)
	if err != nil {
		return nil, err
	}
	if chat.ChatType != models.ChatTypeGroup {
		return nil, apperrors.Validation("participants can only be removed from group chats")
	}
	if actingID != profileID && !chat.IsAdmin(actingID) {
		return nil, apperrors.Authorization("only a chat admin can remove other participants")
	}
	if !chat.HasParticipant(profileID) {
		return nil, apperrors.Validation("profile is not a participant")
	}
	if err := s.chats.RemoveParticipant(ctx, chatID, profileID); err != nil {
		return nil, err
	}
	kept := chat.Participants[:0]
	for _, p := range chat.Participants {
		if p.ProfileID != profileID {
			kept = append(kept, p)
		}
	}
	chat.Participants = kept
	return chat, nil
}

// Deactivate soft-deletes the chat. Group chats require an admin; either
// side of a direct chat may close it.
func (s *ChatService) Deactivate(ctx context.Context, chatID, actingID string) error {
	chat, err := s.member(ctx, chatID, actingID)
	if err != nil {
		return err
	}
	if chat.ChatType == models.ChatTypeGroup && !chat.IsAdmin(actingID) {
		return apperrors.Authorization("only a chat admin can delete a group chat")
	}
	return s.chats.Deactivate(ctx, chatID)
}

func (s *ChatService) member(ctx context.Context, chatID, profileID string) (*models.Chat, error) {
	chat, err := s.chats.GetChatByIDAndProfileID(ctx, chatID, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Authorization(chatAccessMsg)
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func pickProfiles(all map[string]models.Profile, ids []string) map[string]models.Profile {
	out := make(map[string]models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := all[id]; ok {
			out[id] = p
		}
	}
	return out
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
