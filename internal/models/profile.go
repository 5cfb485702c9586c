package models

import "time"

type Profile struct {
	ID          string     `bson:"_id" json:"id"`
	Username    string     `bson:"username" json:"username"`
	DisplayName string     `bson:"display_name,omitempty" json:"display_name,omitempty"`
	AvatarURL   string     `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	LastSeenAt  *time.Time `bson:"last_seen_at,omitempty" json:"last_seen_at,omitempty"`
}
