package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

// fakeChatStore keeps chats in memory and mimics the repository's
// membership-gated reads and counter updates.
type fakeChatStore struct {
	mu    sync.Mutex
	chats map[string]*models.Chat
}

func newFakeChatStore(chats ...*models.Chat) *fakeChatStore {
	f := &fakeChatStore{chats: make(map[string]*models.Chat)}
	for _, c := range chats {
		f.chats[c.ID] = c
	}
	return f
}

func (f *fakeChatStore) GetChatsByProfileIDPaginated(_ context.Context, profileID string, page, limit int) ([]models.Chat, *store.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Chat
	for _, c := range f.chats {
		if c.IsActive && c.HasParticipant(profileID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, &store.Pagination{CurrentPage: 1, PageSize: len(out), TotalCount: int64(len(out)), TotalPages: 1}, nil
}

func (f *fakeChatStore) GetChatByIDAndProfileID(_ context.Context, chatID, profileID string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[chatID]
	if !ok || !c.IsActive || !c.HasParticipant(profileID) {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChatStore) GetChatByParticipants(_ context.Context, profileIDs []string, chatType models.ChatType) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := append([]string(nil), profileIDs...)
	sort.Strings(want)
	for _, c := range f.chats {
		if c.ChatType != chatType || !c.IsActive {
			continue
		}
		have := c.ParticipantIDs()
		sort.Strings(have)
		if len(have) == len(want) && strings.Join(have, ",") == strings.Join(want, ",") {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeChatStore) ListActiveChats(_ context.Context, profileID string) ([]models.Chat, error) {
	chats, _, err := f.GetChatsByProfileIDPaginated(context.Background(), profileID, 1, 100)
	return chats, err
}

func (f *fakeChatStore) Create(_ context.Context, chat *models.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *chat
	f.chats[chat.ID] = &cp
	return nil
}

func (f *fakeChatStore) SetLastMessage(_ context.Context, chatID, messageID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		c.LastMessageID = messageID
		c.LastMessageAt = &at
	}
	return nil
}

func (f *fakeChatStore) IncrementUnreadExcept(_ context.Context, chatID, senderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		for i := range c.Participants {
			if c.Participants[i].ProfileID != senderID {
				c.Participants[i].UnreadCount++
			}
		}
	}
	return nil
}

func (f *fakeChatStore) DecrementUnread(_ context.Context, chatID, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		if p, ok := c.Participant(profileID); ok && p.UnreadCount > 0 {
			p.UnreadCount--
		}
	}
	return nil
}

func (f *fakeChatStore) ResetUnread(_ context.Context, chatID, profileID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		if p, ok := c.Participant(profileID); ok {
			p.UnreadCount = 0
			p.LastReadAt = &at
		}
	}
	return nil
}

func (f *fakeChatStore) AddParticipant(_ context.Context, chatID string, p models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[chatID]
	if !ok {
		return store.ErrNotFound
	}
	if c.HasParticipant(p.ProfileID) {
		return store.ErrDuplicate
	}
	c.Participants = append(c.Participants, p)
	return nil
}

func (f *fakeChatStore) RemoveParticipant(_ context.Context, chatID, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[chatID]
	if !ok {
		return store.ErrNotFound
	}
	kept := c.Participants[:0]
	for _, p := range c.Participants {
		if p.ProfileID != profileID {
			kept = append(kept, p)
		}
	}
	c.Participants = kept
	return nil
}

func (f *fakeChatStore) Deactivate(_ context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		c.IsActive = false
	}
	return nil
}

func (f *fakeChatStore) unread(chatID, profileID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		if p, ok := c.Participant(profileID); ok {
			return p.UnreadCount
		}
	}
	return -1
}

// fakeMessageStore mimics the message repository including the
// at-most-one-reaction and at-most-one-receipt write guards.
type fakeMessageStore struct {
	mu   sync.Mutex
	msgs map[string]*models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{msgs: make(map[string]*models.Message)}
}

func (f *fakeMessageStore) Create(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ClientMessageID != "" {
		for _, ex := range f.msgs {
			if ex.ChatID == m.ChatID && ex.ClientMessageID == m.ClientMessageID {
				return store.ErrDuplicate
			}
		}
	}
	cp := *m
	f.msgs[m.ID] = &cp
	return nil
}

func (f *fakeMessageStore) GetByID(_ context.Context, messageID string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessageStore) GetByClientID(_ context.Context, chatID, clientMessageID string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.msgs {
		if m.ChatID == chatID && m.ClientMessageID == clientMessageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeMessageStore) visible(chatID, viewerID string) []models.Message {
	var out []models.Message
	for _, m := range f.msgs {
		if m.ChatID != chatID || m.IsDeleted {
			continue
		}
		hidden := false
		for _, id := range m.DeletedFor {
			if id == viewerID {
				hidden = true
				break
			}
		}
		if !hidden {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeMessageStore) GetByChatIDPaginated(_ context.Context, chatID, viewerID string, page, limit int) ([]models.Message, *store.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.visible(chatID, viewerID)
	return out, &store.Pagination{CurrentPage: 1, PageSize: len(out), TotalCount: int64(len(out)), TotalPages: 1}, nil
}

func (f *fakeMessageStore) Search(_ context.Context, chatID, query string, limit int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.visible(chatID, "") {
		if strings.Contains(strings.ToLower(m.Content), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) SearchPaginated(ctx context.Context, chatID, query string, page, limit int) ([]models.Message, *store.Pagination, error) {
	out, err := f.Search(ctx, chatID, query, int64(limit))
	if err != nil {
		return nil, nil, err
	}
	return out, &store.Pagination{CurrentPage: 1, PageSize: len(out), TotalCount: int64(len(out)), TotalPages: 1}, nil
}

// GetUnreadCount mirrors the repository's two-step contract: find the
// newest receipted message, count strictly newer non-deleted ones. A
// participant who never read anything gets the full non-deleted count.
func (f *fakeMessageStore) GetUnreadCount(_ context.Context, chatID, profileID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last time.Time
	haveReceipt := false
	for _, m := range f.msgs {
		if m.ChatID == chatID && m.ReadByProfile(profileID) && m.CreatedAt.After(last) {
			last = m.CreatedAt
			haveReceipt = true
		}
	}
	var n int64
	for _, m := range f.msgs {
		if m.ChatID != chatID || m.IsDeleted {
			continue
		}
		if !haveReceipt || m.CreatedAt.After(last) {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, messageID, profileID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return false, store.ErrNotFound
	}
	if m.ReadByProfile(profileID) {
		return false, nil
	}
	m.ReadBy = append(m.ReadBy, models.ReadReceipt{ProfileID: profileID, ReadAt: at})
	return true, nil
}

func (f *fakeMessageStore) MarkAllRead(_ context.Context, chatID, profileID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.msgs {
		if m.ChatID != chatID || m.IsDeleted || m.SenderID == profileID || m.ReadByProfile(profileID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, models.ReadReceipt{ProfileID: profileID, ReadAt: at})
		n++
	}
	return n, nil
}

func (f *fakeMessageStore) AddReaction(_ context.Context, messageID, profileID, emoji string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return store.ErrNotFound
	}
	kept := m.Reactions[:0]
	for _, r := range m.Reactions {
		if r.ProfileID != profileID {
			kept = append(kept, r)
		}
	}
	m.Reactions = append(kept, models.Reaction{ProfileID: profileID, Emoji: emoji, ReactedAt: at})
	return nil
}

func (f *fakeMessageStore) RemoveReaction(_ context.Context, messageID, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return store.ErrNotFound
	}
	kept := m.Reactions[:0]
	for _, r := range m.Reactions {
		if r.ProfileID != profileID {
			kept = append(kept, r)
		}
	}
	m.Reactions = kept
	return nil
}

func (f *fakeMessageStore) Edit(_ context.Context, messageID, prevContent, newContent string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return store.ErrNotFound
	}
	m.EditHistory = append(m.EditHistory, models.EditEntry{Content: prevContent, EditedAt: at})
	m.Content = newContent
	m.IsEdited = true
	m.UpdatedAt = at
	return nil
}

func (f *fakeMessageStore) Tombstone(_ context.Context, messageID, deletedBy string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return store.ErrNotFound
	}
	m.Content = ""
	m.Attachments = []models.Attachment{}
	m.IsDeleted = true
	m.DeletedBy = deletedBy
	m.DeletedAt = &at
	m.UpdatedAt = at
	return nil
}

func (f *fakeMessageStore) HideForProfile(_ context.Context, messageID, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[messageID]
	if !ok {
		return store.ErrNotFound
	}
	for _, id := range m.DeletedFor {
		if id == profileID {
			return nil
		}
	}
	m.DeletedFor = append(m.DeletedFor, profileID)
	return nil
}

func (f *fakeMessageStore) stored(messageID string) *models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.msgs[messageID]; ok {
		cp := *m
		return &cp
	}
	return nil
}

func (f *fakeMessageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

// fakeDirectory serves a fixed profile set, optionally failing.
type fakeDirectory struct {
	profiles map[string]models.Profile
	err      error
	calls    int
}

func (f *fakeDirectory) Resolve(_ context.Context, profileIDs []string) (map[string]models.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.Profile)
	for _, id := range profileIDs {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func directChat(id string, a, b string) *models.Chat {
	now := time.Now().UTC()
	return &models.Chat{
		ID:       id,
		ChatType: models.ChatTypeDirect,
		Participants: []models.Participant{
			{ProfileID: a, Role: models.RoleMember, JoinedAt: now},
			{ProfileID: b, Role: models.RoleMember, JoinedAt: now},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func groupChat(id, admin string, members ...string) *models.Chat {
	now := time.Now().UTC()
	c := &models.Chat{
		ID:       id,
		ChatType: models.ChatTypeGroup,
		Name:     "test group",
		Participants: []models.Participant{
			{ProfileID: admin, Role: models.RoleAdmin, JoinedAt: now},
		},
		AdminIDs:  []string{admin},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, m := range members {
		c.Participants = append(c.Participants, models.Participant{ProfileID: m, Role: models.RoleMember, JoinedAt: now})
	}
	return c
}
