// Package friendgraph projects the current user's friend list and pending
// friend requests out of the remote store and keeps them current through the
// change feed. Load and subscription failures are logged and swallowed (the
// caller sees an empty or stale projection); action failures are returned.
package friendgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

// Snapshot is a point-in-time copy of the projection.
type Snapshot struct {
	Friends         []models.Profile       `json:"friends"`
	PendingReceived []models.FriendRequest `json:"pending_received"`
	PendingSent     []models.FriendRequest `json:"pending_sent"`
}

type Synchronizer struct {
	userID string
	store  gateway.Store
	feed   gateway.Feed
	log    *slog.Logger

	mu              sync.Mutex
	friends         []models.Profile
	pendingReceived []models.FriendRequest
	pendingSent     []models.FriendRequest
	onChange        func()

	subs []*gateway.Subscription
	wg   sync.WaitGroup
}

func New(userID string, store gateway.Store, feed gateway.Feed, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		userID: userID,
		store:  store,
		feed:   feed,
		log:    log.With("component", "friendgraph", "user", userID),
	}
}

// OnChange registers a callback invoked after every state change. Set it
// before Start; it may be called from multiple goroutines.
func (s *Synchronizer) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Start performs the initial load and registers the two feed subscriptions:
// any event on friend_requests triggers a request refetch, profile updates
// are merged in place (presence flips without a full refetch).
func (s *Synchronizer) Start(ctx context.Context) error {
	reqSub, err := s.feed.Subscribe(ctx, gateway.TableFriendRequests, gateway.EventAny)
	if err != nil {
		return fmt.Errorf("subscribe friend_requests: %w", err)
	}
	profSub, err := s.feed.Subscribe(ctx, gateway.TableProfiles, gateway.EventUpdate)
	if err != nil {
		reqSub.Cancel()
		return fmt.Errorf("subscribe profiles: %w", err)
	}
	s.subs = []*gateway.Subscription{reqSub, profSub}

	s.Load(ctx)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		for range reqSub.C {
			s.refetchRequests(ctx)
		}
	}()
	go func() {
		defer s.wg.Done()
		for ev := range profSub.C {
			s.mergeProfile(ev)
		}
	}()
	return nil
}

// Close cancels the subscriptions and waits for the event pumps to drain.
func (s *Synchronizer) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.wg.Wait()
}

// Load refetches friends and both request lists. Errors are logged, not
// returned; the projection keeps whatever state it had.
func (s *Synchronizer) Load(ctx context.Context) {
	s.refetchFriends(ctx)
	s.refetchRequests(ctx)
}

func (s *Synchronizer) refetchFriends(ctx context.Context) {
	rows, err := s.store.FriendshipsFor(ctx, s.userID)
	if err != nil {
		s.log.Error("fetch friends failed", "error", err)
		return
	}
	friends := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		if row.Friend != nil {
			friends = append(friends, *row.Friend)
		}
	}
	s.mu.Lock()
	s.friends = friends
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) refetchRequests(ctx context.Context) {
	changed := false
	if received, err := s.store.PendingRequestsTo(ctx, s.userID); err != nil {
		s.log.Error("fetch received requests failed", "error", err)
	} else {
		s.mu.Lock()
		s.pendingReceived = received
		s.mu.Unlock()
		changed = true
	}
	if sent, err := s.store.PendingRequestsFrom(ctx, s.userID); err != nil {
		s.log.Error("fetch sent requests failed", "error", err)
	} else {
		s.mu.Lock()
		s.pendingSent = sent
		s.mu.Unlock()
		changed = true
	}
	if changed {
		s.notify()
	}
}

// mergeProfile replaces a changed profile in the friends list by id.
func (s *Synchronizer) mergeProfile(ev gateway.Event) {
	var p models.Profile
	if err := ev.Decode(&p); err != nil {
		s.log.Error("bad profile event", "error", err)
		return
	}
	s.mu.Lock()
	merged := false
	for i := range s.friends {
		if s.friends[i].ID == p.ID {
			s.friends[i] = p
			merged = true
			break
		}
	}
	s.mu.Unlock()
	if merged {
		s.notify()
	}
}

// SendRequest inserts a pending request to target. The change feed (or the
// follow-up refetch) is the source of truth; there is no optimistic insert.
func (s *Synchronizer) SendRequest(ctx context.Context, targetUserID string) error {
	req := &models.FriendRequest{
		FromUserID: s.userID,
		ToUserID:   targetUserID,
		Status:     models.FriendRequestPending,
	}
	if err := s.store.InsertFriendRequest(ctx, req); err != nil {
		return fmt.Errorf("send friend request: %w", err)
	}
	s.refetchRequests(ctx)
	return nil
}

// AcceptRequest is the two-step transition: mark the request accepted, then
// insert both directions of the friendship. If the second step fails the
// request stays accepted with no friendship rows; there is no rollback.
func (s *Synchronizer) AcceptRequest(ctx context.Context, requestID, fromUserID string) error {
	if err := s.store.ResolveFriendRequest(ctx, requestID, models.FriendRequestAccepted); err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	rows := []models.Friendship{
		{UserID: s.userID, FriendID: fromUserID},
		{UserID: fromUserID, FriendID: s.userID},
	}
	if err := s.store.InsertFriendships(ctx, rows); err != nil {
		return fmt.Errorf("create friendship: %w", err)
	}
	s.refetchFriends(ctx)
	s.refetchRequests(ctx)
	return nil
}

func (s *Synchronizer) DeclineRequest(ctx context.Context, requestID string) error {
	if err := s.store.ResolveFriendRequest(ctx, requestID, models.FriendRequestDeclined); err != nil {
		return fmt.Errorf("decline friend request: %w", err)
	}
	s.refetchRequests(ctx)
	return nil
}

// RemoveFriend deletes both directional rows in one gateway call.
func (s *Synchronizer) RemoveFriend(ctx context.Context, friendID string) error {
	if err := s.store.DeleteFriendship(ctx, s.userID, friendID); err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	s.refetchFriends(ctx)
	return nil
}

func (s *Synchronizer) Friends() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Profile, len(s.friends))
	copy(out, s.friends)
	return out
}

func (s *Synchronizer) PendingReceived() []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FriendRequest, len(s.pendingReceived))
	copy(out, s.pendingReceived)
	return out
}

func (s *Synchronizer) PendingSent() []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FriendRequest, len(s.pendingSent))
	copy(out, s.pendingSent)
	return out
}

func (s *Synchronizer) Snapshot() Snapshot {
	return Snapshot{
		Friends:         s.Friends(),
		PendingReceived: s.PendingReceived(),
		PendingSent:     s.PendingSent(),
	}
}

func (s *Synchronizer) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
