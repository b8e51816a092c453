// Package memgateway is an in-memory implementation of the gateway contract,
// used by tests and local development. It mirrors the behavior of the real
// store closely enough for the synchronizers not to know the difference:
// writes publish the same change events, reads return copies.
package memgateway

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

type subscriber struct {
	table gateway.Table
	typ   gateway.EventType
	ch    chan gateway.Event
}

// Gateway implements gateway.Store, gateway.Feed and gateway.Publisher.
type Gateway struct {
	mu          sync.Mutex
	profiles    map[string]models.Profile
	requests    []models.FriendRequest
	friendships []models.Friendship
	messages    []models.Message
	subs        map[*subscriber]struct{}

	// failWith, when non-nil, makes every store operation fail with it.
	failWith error
}

func New() *Gateway {
	return &Gateway{
		profiles: make(map[string]models.Profile),
		subs:     make(map[*subscriber]struct{}),
	}
}

// FailWith forces all subsequent store operations to return err. Pass nil to
// restore normal behavior.
func (g *Gateway) FailWith(err error) {
	g.mu.Lock()
	g.failWith = err
	g.mu.Unlock()
}

// AddProfile seeds a profile. Test helper, not part of the contract.
func (g *Gateway) AddProfile(p models.Profile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	g.profiles[p.ID] = p
}

// --- Feed / Publisher ---

func (g *Gateway) Subscribe(_ context.Context, table gateway.Table, typ gateway.EventType) (*gateway.Subscription, error) {
	sub := &subscriber{table: table, typ: typ, ch: make(chan gateway.Event, 64)}
	g.mu.Lock()
	g.subs[sub] = struct{}{}
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subs[sub]; ok {
			delete(g.subs, sub)
			close(sub.ch)
		}
		g.mu.Unlock()
	}
	return gateway.NewSubscription(sub.ch, cancel), nil
}

func (g *Gateway) Publish(_ context.Context, ev gateway.Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.publishLocked(ev)
	return nil
}

func (g *Gateway) publishLocked(ev gateway.Event) {
	for sub := range g.subs {
		if ev.Matches(sub.table, sub.typ) {
			select {
			case sub.ch <- ev:
			default: // slow consumer, drop rather than deadlock
			}
		}
	}
}

// --- Profiles ---

func (g *Gateway) ProfileByID(_ context.Context, id string) (*models.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	p, ok := g.profiles[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (g *Gateway) SearchProfiles(_ context.Context, excludeID, query string, limit int) ([]models.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	q := strings.ToLower(query)
	var out []models.Profile
	for _, p := range g.profiles {
		if p.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(p.Username), q) ||
			strings.Contains(strings.ToLower(p.DisplayName), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *Gateway) UpdatePresence(_ context.Context, userID string, online bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	p, ok := g.profiles[userID]
	if !ok {
		return gateway.ErrNotFound
	}
	p.IsOnline = online
	p.LastSeen = time.Now().UTC()
	p.UpdatedAt = p.LastSeen
	g.profiles[userID] = p
	g.publishLocked(gateway.NewEvent(gateway.TableProfiles, gateway.EventUpdate, p))
	return nil
}

// --- Friendships ---

func (g *Gateway) FriendshipsFor(_ context.Context, userID string) ([]models.Friendship, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	var out []models.Friendship
	for _, f := range g.friendships {
		if f.UserID != userID {
			continue
		}
		if p, ok := g.profiles[f.FriendID]; ok {
			cp := p
			f.Friend = &cp
		}
		out = append(out, f)
	}
	return out, nil
}

func (g *Gateway) InsertFriendships(_ context.Context, rows []models.Friendship) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		row.CreatedAt = now
		row.Friend = nil
		g.friendships = append(g.friendships, row)
		g.publishLocked(gateway.NewEvent(gateway.TableFriendships, gateway.EventInsert, row))
	}
	return nil
}

func (g *Gateway) DeleteFriendship(_ context.Context, userID, friendID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	kept := g.friendships[:0]
	for _, f := range g.friendships {
		if (f.UserID == userID && f.FriendID == friendID) ||
			(f.UserID == friendID && f.FriendID == userID) {
			continue
		}
		kept = append(kept, f)
	}
	g.friendships = kept
	return nil
}

// --- Friend requests ---

func (g *Gateway) PendingRequestsTo(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return g.pendingRequests(userID, true)
}

func (g *Gateway) PendingRequestsFrom(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return g.pendingRequests(userID, false)
}

func (g *Gateway) pendingRequests(userID string, incoming bool) ([]models.FriendRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	var out []models.FriendRequest
	for _, r := range g.requests {
		if r.Status != models.FriendRequestPending {
			continue
		}
		if incoming && r.ToUserID == userID {
			if p, ok := g.profiles[r.FromUserID]; ok {
				cp := p
				r.FromUser = &cp
			}
			out = append(out, r)
		} else if !incoming && r.FromUserID == userID {
			if p, ok := g.profiles[r.ToUserID]; ok {
				cp := p
				r.ToUser = &cp
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *Gateway) InsertFriendRequest(_ context.Context, req *models.FriendRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.FriendRequestPending
	}
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	stored.FromUser, stored.ToUser = nil, nil
	g.requests = append(g.requests, stored)
	g.publishLocked(gateway.NewEvent(gateway.TableFriendRequests, gateway.EventInsert, stored))
	return nil
}

func (g *Gateway) ResolveFriendRequest(_ context.Context, id string, status models.FriendRequestStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	for i, r := range g.requests {
		if r.ID != id {
			continue
		}
		if r.Status != models.FriendRequestPending {
			return gateway.ErrRequestResolved
		}
		g.requests[i].Status = status
		g.requests[i].UpdatedAt = time.Now().UTC()
		g.publishLocked(gateway.NewEvent(gateway.TableFriendRequests, gateway.EventUpdate, g.requests[i]))
		return nil
	}
	return gateway.ErrNotFound
}

// --- Messages ---

func (g *Gateway) MessagesBetween(_ context.Context, userID, peerID string) ([]models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	var out []models.Message
	for _, m := range g.messages {
		if (m.SenderID == userID && m.ReceiverID == peerID) ||
			(m.SenderID == peerID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	// Stable: equal timestamps keep insertion order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (g *Gateway) InsertMessage(_ context.Context, msg *models.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	g.messages = append(g.messages, *msg)
	g.publishLocked(gateway.NewEvent(gateway.TableMessages, gateway.EventInsert, *msg))
	return nil
}

func (g *Gateway) MarkThreadRead(_ context.Context, senderID, receiverID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	for i, m := range g.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead {
			g.messages[i].IsRead = true
			g.publishLocked(gateway.NewEvent(gateway.TableMessages, gateway.EventUpdate, g.messages[i]))
		}
	}
	return nil
}

func (g *Gateway) UnreadMessagesFor(_ context.Context, receiverID string) ([]models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	var out []models.Message
	for _, m := range g.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ gateway.Store = (*Gateway)(nil)
var _ gateway.Feed = (*Gateway)(nil)
var _ gateway.Publisher = (*Gateway)(nil)
