package models

import "time"

type AttachmentType string

const (
	AttachmentSticker AttachmentType = "sticker"
	AttachmentGif     AttachmentType = "gif"
	AttachmentVoice   AttachmentType = "voice"
	AttachmentFile    AttachmentType = "file"
	AttachmentLink    AttachmentType = "link"
)

// Attachment is a tagged descriptor; only the fields relevant to its Type
// are populated.
type Attachment struct {
	Type       AttachmentType `bson:"type" json:"type"`
	URL        string         `bson:"url" json:"url"`
	Name       string         `bson:"name,omitempty" json:"name,omitempty"`
	MimeType   string         `bson:"mime_type,omitempty" json:"mime_type,omitempty"`
	Size       int64          `bson:"size,omitempty" json:"size,omitempty"`
	DurationMS int            `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	Width      int            `bson:"width,omitempty" json:"width,omitempty"`
	Height     int            `bson:"height,omitempty" json:"height,omitempty"`
	Title      string         `bson:"title,omitempty" json:"title,omitempty"`
	PreviewURL string         `bson:"preview_url,omitempty" json:"preview_url,omitempty"`
}

type Reaction struct {
	ProfileID string    `bson:"profile_id" json:"profile_id"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	ReactedAt time.Time `bson:"reacted_at" json:"reacted_at"`
}

type ReadReceipt struct {
	ProfileID string    `bson:"profile_id" json:"profile_id"`
	ReadAt    time.Time `bson:"read_at" json:"read_at"`
}

type EditEntry struct {
	Content  string    `bson:"content" json:"content"`
	EditedAt time.Time `bson:"edited_at" json:"edited_at"`
}

const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
)

type Message struct {
	ID              string        `bson:"_id" json:"id"`
	ClientMessageID string        `bson:"client_message_id,omitempty" json:"client_message_id,omitempty"`
	ChatID          string        `bson:"chat_id" json:"chat_id"`
	SenderID        string        `bson:"sender_id" json:"sender_id"`
	Content         string        `bson:"content" json:"content"`
	Attachments     []Attachment  `bson:"attachments" json:"attachments"`
	ReplyTo         string        `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	Mentions        []string      `bson:"mentions,omitempty" json:"mentions,omitempty"`
	Reactions       []Reaction    `bson:"reactions" json:"reactions"`
	ReadBy          []ReadReceipt `bson:"read_by" json:"read_by"`
	IsEdited        bool          `bson:"is_edited" json:"is_edited"`
	EditHistory     []EditEntry   `bson:"edit_history,omitempty" json:"edit_history,omitempty"`
	IsDeleted       bool          `bson:"is_deleted" json:"is_deleted"`
	DeletedBy       string        `bson:"deleted_by,omitempty" json:"deleted_by,omitempty"`
	DeletedAt       *time.Time    `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	DeletedFor      []string      `bson:"deleted_for,omitempty" json:"-"`
	MessageStatus   string        `bson:"message_status" json:"message_status"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}

// ReadByProfile reports whether profileID already has a read receipt.
func (m *Message) ReadByProfile(profileID string) bool {
	for _, r := range m.ReadBy {
		if r.ProfileID == profileID {
			return true
		}
	}
	return false
}
