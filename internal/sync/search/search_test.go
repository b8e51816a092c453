package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/gateway/memgateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingStore records SearchProfiles calls on top of the real store.
type countingStore struct {
	gateway.Store
	searches int
}

func (c *countingStore) SearchProfiles(ctx context.Context, excludeID, query string, limit int) ([]models.Profile, error) {
	c.searches++
	return c.Store.SearchProfiles(ctx, excludeID, query, limit)
}

func TestSearchMatchesEitherField(t *testing.T) {
	gw := memgateway.New()
	gw.AddProfile(models.Profile{ID: "me", Username: "anna", DisplayName: "Anna"})
	gw.AddProfile(models.Profile{ID: "p1", Username: "annabel", DisplayName: "Bel"})
	gw.AddProfile(models.Profile{ID: "p2", Username: "bert", DisplayName: "Anna-Lena"})
	gw.AddProfile(models.Profile{ID: "p3", Username: "carol", DisplayName: "Carol"})

	p := New("me", gw, testLogger())
	p.Search(context.Background(), "Ann")

	got := p.Results()
	if len(got) != 2 {
		t.Fatalf("results = %+v, want 2 matches", got)
	}
	for _, r := range got {
		if r.ID == "me" {
			t.Fatal("searcher included in own results")
		}
	}
}

func TestSearchCapsResults(t *testing.T) {
	gw := memgateway.New()
	for i := 0; i < MaxResults+5; i++ {
		gw.AddProfile(models.Profile{ID: fmt.Sprintf("p%d", i), Username: fmt.Sprintf("user%02d", i), DisplayName: "User"})
	}

	p := New("me", gw, testLogger())
	p.Search(context.Background(), "user")

	if got := len(p.Results()); got != MaxResults {
		t.Fatalf("results = %d, want %d", got, MaxResults)
	}
}

func TestBlankQuerySkipsStore(t *testing.T) {
	cs := &countingStore{Store: memgateway.New()}
	p := New("me", cs, testLogger())

	p.Search(context.Background(), "")
	p.Search(context.Background(), "   ")
	if cs.searches != 0 {
		t.Fatalf("blank queries hit the store %d times", cs.searches)
	}
	if got := p.Results(); len(got) != 0 {
		t.Fatalf("blank query left results behind: %+v", got)
	}
}

func TestSearchFailureClearsResults(t *testing.T) {
	gw := memgateway.New()
	gw.AddProfile(models.Profile{ID: "p1", Username: "anna", DisplayName: "Anna"})

	p := New("me", gw, testLogger())
	p.Search(context.Background(), "ann")
	if len(p.Results()) != 1 {
		t.Fatal("seed search did not populate results")
	}

	gw.FailWith(errors.New("gateway down"))
	p.Search(context.Background(), "ann")
	if got := p.Results(); len(got) != 0 {
		t.Fatalf("failed search must clear results, got %+v", got)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Int32

	for i := 0; i < 5; i++ {
		d.Do(func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Fatalf("debounced call fired %d times, want 1", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired atomic.Int32

	d.Do(func() { fired.Add(1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Fatalf("stopped call still fired %d times", got)
	}
}
