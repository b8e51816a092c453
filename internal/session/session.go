// Package session binds an authenticated user to one live instance of each
// synchronizer. There is no ambient current-user state anywhere else;
// everything that needs the user identity gets it from here, explicitly.
package session

import (
	"context"
	"log/slog"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/sync/friendgraph"
	"github.com/ninahidul9/connect-chat/internal/sync/search"
	"github.com/ninahidul9/connect-chat/internal/sync/thread"
	"github.com/ninahidul9/connect-chat/internal/sync/unread"
)

// Relationship classifies a profile relative to the session user.
type Relationship string

const (
	RelationFriend          Relationship = "friend"
	RelationRequestSent     Relationship = "request_sent"
	RelationRequestReceived Relationship = "request_received"
	RelationNone            Relationship = "none"
)

type Session struct {
	UserID  string
	Friends *friendgraph.Synchronizer
	Thread  *thread.Synchronizer
	Unread  *unread.Aggregator
	Search  *search.Projector
}

func New(userID string, store gateway.Store, feed gateway.Feed, log *slog.Logger) *Session {
	return &Session{
		UserID:  userID,
		Friends: friendgraph.New(userID, store, feed, log),
		Thread:  thread.New(userID, store, feed, log),
		Unread:  unread.New(userID, store, feed, log),
		Search:  search.New(userID, store, log),
	}
}

// Start brings up the always-on synchronizers. The thread synchronizer only
// subscribes once a peer is selected.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Friends.Start(ctx); err != nil {
		return err
	}
	if err := s.Unread.Start(ctx); err != nil {
		s.Friends.Close()
		return err
	}
	return nil
}

// Close cancels every subscription the session holds.
func (s *Session) Close() {
	s.Thread.Close()
	s.Unread.Close()
	s.Friends.Close()
}

// RelationshipTo classifies profileID against the friend graph's current
// lists. Recomputed on every call so it always reflects the latest state;
// deliberately not cached.
func (s *Session) RelationshipTo(profileID string) Relationship {
	for _, f := range s.Friends.Friends() {
		if f.ID == profileID {
			return RelationFriend
		}
	}
	for _, r := range s.Friends.PendingSent() {
		if r.ToUserID == profileID {
			return RelationRequestSent
		}
	}
	for _, r := range s.Friends.PendingReceived() {
		if r.FromUserID == profileID {
			return RelationRequestReceived
		}
	}
	return RelationNone
}
