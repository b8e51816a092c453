// Package search is the on-demand peer lookup: case-insensitive substring
// match on username and display name, excluding the searcher, capped at
// MaxResults. The projector does not debounce; callers layer a Debouncer on
// top. Relationship annotation against the friend graph is the consumer's
// job, not done here.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

// MaxResults caps a single search.
const MaxResults = 10

type Projector struct {
	userID string
	store  gateway.Store
	log    *slog.Logger

	mu       sync.Mutex
	results  []models.Profile
	onChange func()
}

func New(userID string, store gateway.Store, log *slog.Logger) *Projector {
	return &Projector{
		userID: userID,
		store:  store,
		log:    log.With("component", "search", "user", userID),
	}
}

func (p *Projector) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Search replaces the result set. A blank query clears results without
// touching the gateway; gateway failures clear results and are logged.
func (p *Projector) Search(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		p.ClearResults()
		return
	}
	results, err := p.store.SearchProfiles(ctx, p.userID, query, MaxResults)
	if err != nil {
		p.log.Error("profile search failed", "error", err)
		results = nil
	}
	p.mu.Lock()
	p.results = results
	p.mu.Unlock()
	p.notify()
}

// ClearResults resets to empty, used when the query becomes blank.
func (p *Projector) ClearResults() {
	p.mu.Lock()
	p.results = nil
	p.mu.Unlock()
	p.notify()
}

func (p *Projector) Results() []models.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Profile, len(p.results))
	copy(out, p.results)
	return out
}

func (p *Projector) notify() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}
