// Package gateway defines the contract the synchronizers consume: typed row
// CRUD over the backing store plus a row-level change feed. The store is the
// sole source of truth; everything the synchronizers hold is a best-effort
// cache reconciled through the feed.
package gateway

import (
	"context"
	"errors"

	"github.com/ninahidul9/connect-chat/internal/models"
)

var (
	// ErrNotFound is returned when a row addressed by ID does not exist.
	ErrNotFound = errors.New("gateway: row not found")
	// ErrRequestResolved is returned when a status transition is attempted on
	// a friend request that is no longer pending.
	ErrRequestResolved = errors.New("gateway: friend request already resolved")
)

// Store is the row-store side of the remote data gateway.
type Store interface {
	// Profiles
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
	SearchProfiles(ctx context.Context, excludeID, query string, limit int) ([]models.Profile, error)
	UpdatePresence(ctx context.Context, userID string, online bool) error

	// Friendships
	FriendshipsFor(ctx context.Context, userID string) ([]models.Friendship, error)
	InsertFriendships(ctx context.Context, rows []models.Friendship) error
	DeleteFriendship(ctx context.Context, userID, friendID string) error

	// Friend requests
	PendingRequestsTo(ctx context.Context, userID string) ([]models.FriendRequest, error)
	PendingRequestsFrom(ctx context.Context, userID string) ([]models.FriendRequest, error)
	InsertFriendRequest(ctx context.Context, req *models.FriendRequest) error
	ResolveFriendRequest(ctx context.Context, id string, status models.FriendRequestStatus) error

	// Messages
	MessagesBetween(ctx context.Context, userID, peerID string) ([]models.Message, error)
	InsertMessage(ctx context.Context, msg *models.Message) error
	MarkThreadRead(ctx context.Context, senderID, receiverID string) error
	UnreadMessagesFor(ctx context.Context, receiverID string) ([]models.Message, error)
}

// Feed delivers row-level change events. Callers own the returned
// subscription and must Cancel it to stop delivery; a leaked subscription
// keeps receiving events for the life of the feed.
type Feed interface {
	Subscribe(ctx context.Context, table Table, typ EventType) (*Subscription, error)
}

// Publisher is the write side of the feed. The store publishes one event per
// row after each successful write.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
