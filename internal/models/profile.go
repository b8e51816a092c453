package models

import "time"

// Profile is a user's public identity record. Presence fields are written by
// the presence tracker; everything else is set at registration.
type Profile struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	DisplayName string    `gorm:"not null;size:128" json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	IsOnline    bool      `gorm:"not null;default:false" json:"is_online"`
	LastSeen    time.Time `json:"last_seen"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
