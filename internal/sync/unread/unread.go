// Package unread derives a per-sender unread tally from the message feed,
// independent of which thread is open. Any message event triggers a full
// refetch; correctness over efficiency at the expected volume.
package unread

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ninahidul9/connect-chat/internal/gateway"
)

type Aggregator struct {
	userID string
	store  gateway.Store
	feed   gateway.Feed
	log    *slog.Logger

	mu       sync.Mutex
	counts   map[string]int
	onChange func()

	sub *gateway.Subscription
	wg  sync.WaitGroup
}

func New(userID string, store gateway.Store, feed gateway.Feed, log *slog.Logger) *Aggregator {
	return &Aggregator{
		userID: userID,
		store:  store,
		feed:   feed,
		log:    log.With("component", "unread", "user", userID),
		counts: make(map[string]int),
	}
}

func (a *Aggregator) OnChange(fn func()) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

func (a *Aggregator) Start(ctx context.Context) error {
	sub, err := a.feed.Subscribe(ctx, gateway.TableMessages, gateway.EventAny)
	if err != nil {
		return fmt.Errorf("subscribe messages: %w", err)
	}
	a.sub = sub

	a.Load(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for range sub.C {
			a.Load(ctx)
		}
	}()
	return nil
}

func (a *Aggregator) Close() {
	if a.sub != nil {
		a.sub.Cancel()
	}
	a.wg.Wait()
}

// Load refetches all unread messages addressed to the user and groups them
// by sender. Errors are logged and swallowed.
func (a *Aggregator) Load(ctx context.Context) {
	msgs, err := a.store.UnreadMessagesFor(ctx, a.userID)
	if err != nil {
		a.log.Error("fetch unread messages failed", "error", err)
		return
	}
	counts := make(map[string]int)
	for _, m := range msgs {
		counts[m.SenderID]++
	}
	a.mu.Lock()
	a.counts = counts
	a.mu.Unlock()
	a.notify()
}

// Counts returns a copy of the sender_id -> unread count mapping.
func (a *Aggregator) Counts() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

// CountFrom returns the unread count for one sender.
func (a *Aggregator) CountFrom(senderID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[senderID]
}

// Total is the sum of the per-sender counts.
func (a *Aggregator) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, v := range a.counts {
		total += v
	}
	return total
}

func (a *Aggregator) notify() {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}
