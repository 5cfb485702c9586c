package models

import "time"

type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Permissions struct {
	CanSendMessages    bool `bson:"can_send_messages" json:"can_send_messages"`
	CanAddParticipants bool `bson:"can_add_participants" json:"can_add_participants"`
}

type Participant struct {
	ProfileID   string      `bson:"profile_id" json:"profile_id"`
	Role        string      `bson:"role" json:"role"`
	JoinedAt    time.Time   `bson:"joined_at" json:"joined_at"`
	UnreadCount int         `bson:"unread_count" json:"unread_count"`
	LastReadAt  *time.Time  `bson:"last_read_at,omitempty" json:"last_read_at,omitempty"`
	Permissions Permissions `bson:"permissions" json:"permissions"`
}

type Chat struct {
	ID            string        `bson:"_id" json:"id"`
	ChatType      ChatType      `bson:"chat_type" json:"chat_type"`
	Name          string        `bson:"name,omitempty" json:"name,omitempty"`
	Participants  []Participant `bson:"participants" json:"participants"`
	AdminIDs      []string      `bson:"admin_ids,omitempty" json:"admin_ids,omitempty"`
	MutedBy       []string      `bson:"muted_by,omitempty" json:"muted_by,omitempty"`
	LastMessageID string        `bson:"last_message_id,omitempty" json:"last_message_id,omitempty"`
	LastMessageAt *time.Time    `bson:"last_message_at,omitempty" json:"last_message_at,omitempty"`
	IsActive      bool          `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// Participant returns the participant entry for profileID, if present.
func (c *Chat) Participant(profileID string) (*Participant, bool) {
	for i := range c.Participants {
		if c.Participants[i].ProfileID == profileID {
			return &c.Participants[i], true
		}
	}
	return nil, false
}

func (c *Chat) HasParticipant(profileID string) bool {
	_, ok := c.Participant(profileID)
	return ok
}

func (c *Chat) IsAdmin(profileID string) bool {
	for _, id := range c.AdminIDs {
		if id == profileID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the ids of all participants in list order.
func (c *Chat) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.ProfileID)
	}
	return ids
}
