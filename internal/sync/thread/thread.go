// Package thread projects the ordered message history between the current
// user and one selected peer. Switching peers tears the old subscriptions
// down before the new ones go up, and a generation counter discards stale
// loads and leftover events so nothing from the previous thread can leak
// into the new one.
package thread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

type Synchronizer struct {
	userID string
	store  gateway.Store
	feed   gateway.Feed
	log    *slog.Logger

	mu       sync.Mutex
	peerID   string // empty means no active thread
	gen      uint64 // bumped on every peer switch
	messages []models.Message
	subs     []*gateway.Subscription
	onChange func()

	wg sync.WaitGroup
}

func New(userID string, store gateway.Store, feed gateway.Feed, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		userID: userID,
		store:  store,
		feed:   feed,
		log:    log.With("component", "thread", "user", userID),
	}
}

// OnChange registers a callback invoked after every state change.
func (s *Synchronizer) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetPeer switches the active thread. The previous subscriptions are fully
// cancelled before the new ones are established; the new subscriptions are
// live before the load, so no message for the new peer can slip between.
// An empty peerID closes the thread.
func (s *Synchronizer) SetPeer(ctx context.Context, peerID string) {
	s.mu.Lock()
	if s.peerID == peerID {
		s.mu.Unlock()
		return
	}
	old := s.subs
	s.subs = nil
	s.peerID = peerID
	s.gen++
	gen := s.gen
	s.messages = nil
	s.mu.Unlock()

	for _, sub := range old {
		sub.Cancel()
	}
	s.notify()

	if peerID == "" {
		return
	}

	insSub, err := s.feed.Subscribe(ctx, gateway.TableMessages, gateway.EventInsert)
	if err != nil {
		s.log.Error("subscribe message inserts failed", "peer", peerID, "error", err)
		return
	}
	updSub, err := s.feed.Subscribe(ctx, gateway.TableMessages, gateway.EventUpdate)
	if err != nil {
		insSub.Cancel()
		s.log.Error("subscribe message updates failed", "peer", peerID, "error", err)
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		// Superseded by another switch while subscribing.
		s.mu.Unlock()
		insSub.Cancel()
		updSub.Cancel()
		return
	}
	s.subs = []*gateway.Subscription{insSub, updSub}
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		for ev := range insSub.C {
			s.handleInsert(ev, gen, peerID)
		}
	}()
	go func() {
		defer s.wg.Done()
		for ev := range updSub.C {
			s.handleUpdate(ev, gen)
		}
	}()

	s.load(ctx, gen, peerID)
}

// Close tears down the active thread and waits for the event pumps.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.peerID = ""
	s.gen++
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
	s.wg.Wait()
}

// Load refetches the whole thread. No-op without an active peer; errors are
// logged and swallowed.
func (s *Synchronizer) Load(ctx context.Context) {
	s.mu.Lock()
	gen, peerID := s.gen, s.peerID
	s.mu.Unlock()
	if peerID == "" {
		return
	}
	s.load(ctx, gen, peerID)
}

func (s *Synchronizer) load(ctx context.Context, gen uint64, peerID string) {
	msgs, err := s.store.MessagesBetween(ctx, s.userID, peerID)
	if err != nil {
		s.log.Error("fetch messages failed", "peer", peerID, "error", err)
		return
	}
	s.mu.Lock()
	if s.gen != gen {
		// A peer switch completed while this fetch was in flight.
		s.mu.Unlock()
		return
	}
	s.messages = msgs
	s.mu.Unlock()
	s.notify()
}

// Send inserts a message to the active peer. Whitespace-only content and a
// missing peer are no-ops; gateway failures are returned so the caller can
// surface them.
func (s *Synchronizer) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	s.mu.Lock()
	peerID := s.peerID
	s.mu.Unlock()
	if peerID == "" {
		return nil
	}
	msg := &models.Message{
		SenderID:   s.userID,
		ReceiverID: peerID,
		Content:    content,
		IsRead:     false,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// MarkRead flips every unread message from the active peer to read.
// Fire-and-forget: no refetch, errors only logged; the update events echoed
// back through the feed reconcile local state.
func (s *Synchronizer) MarkRead(ctx context.Context) {
	s.mu.Lock()
	peerID := s.peerID
	s.mu.Unlock()
	if peerID == "" {
		return
	}
	if err := s.store.MarkThreadRead(ctx, peerID, s.userID); err != nil {
		s.log.Error("mark read failed", "peer", peerID, "error", err)
	}
}

func (s *Synchronizer) handleInsert(ev gateway.Event, gen uint64, peerID string) {
	var msg models.Message
	if err := ev.Decode(&msg); err != nil {
		s.log.Error("bad message event", "error", err)
		return
	}
	inPair := (msg.SenderID == s.userID && msg.ReceiverID == peerID) ||
		(msg.SenderID == peerID && msg.ReceiverID == s.userID)
	if !inPair {
		return
	}
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	// Replace-or-append by id keeps duplicate delivery idempotent.
	replaced := false
	for i := range s.messages {
		if s.messages[i].ID == msg.ID {
			s.messages[i] = msg
			replaced = true
			break
		}
	}
	if !replaced {
		s.messages = append(s.messages, msg)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) handleUpdate(ev gateway.Event, gen uint64) {
	var msg models.Message
	if err := ev.Decode(&msg); err != nil {
		s.log.Error("bad message event", "error", err)
		return
	}
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	replaced := false
	for i := range s.messages {
		if s.messages[i].ID == msg.ID {
			s.messages[i] = msg
			replaced = true
			break
		}
	}
	s.mu.Unlock()
	if replaced {
		s.notify()
	}
}

// Peer returns the active peer id, empty if none.
func (s *Synchronizer) Peer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerID
}

func (s *Synchronizer) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Synchronizer) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
