package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a directional proposal to establish a friendship. Status
// only ever moves pending -> accepted or pending -> declined; terminal rows
// are kept, never reopened or deleted by this layer.
type FriendRequest struct {
	ID         string              `gorm:"type:uuid;primaryKey" json:"id"`
	FromUserID string              `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID   string              `gorm:"type:uuid;not null;index" json:"to_user_id"`
	Status     FriendRequestStatus `gorm:"not null;default:'pending';size:20" json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`

	// Joined profile of whichever side is not the viewer.
	FromUser *Profile `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   *Profile `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

func (FriendRequest) TableName() string { return "friend_requests" }

// Friendship is one direction of a symmetric connection; accepting a request
// materializes both (A,B) and (B,A).
type Friendship struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	FriendID  string    `gorm:"type:uuid;not null;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`

	Friend *Profile `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}

func (Friendship) TableName() string { return "friendships" }
