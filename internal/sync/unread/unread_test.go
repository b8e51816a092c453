package unread

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ninahidul9/connect-chat/internal/gateway/memgateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestLoadGroupsBySender(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	seed := []models.Message{
		{SenderID: "a", ReceiverID: "u", Content: "1"},
		{SenderID: "a", ReceiverID: "u", Content: "2"},
		{SenderID: "b", ReceiverID: "u", Content: "3"},
		{SenderID: "a", ReceiverID: "u", Content: "read", IsRead: true},
		{SenderID: "u", ReceiverID: "a", Content: "outgoing"},
		{SenderID: "a", ReceiverID: "x", Content: "someone else's"},
	}
	for i := range seed {
		if err := gw.InsertMessage(ctx, &seed[i]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	agg := New("u", gw, gw, testLogger())
	agg.Load(ctx)

	counts := agg.Counts()
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Fatalf("counts = %+v, want a:2 b:1", counts)
	}
	if agg.CountFrom("c") != 0 {
		t.Fatalf("count for unknown sender = %d, want 0", agg.CountFrom("c"))
	}
	if agg.Total() != 3 {
		t.Fatalf("total = %d, want 3", agg.Total())
	}
}

func TestNewMessageBumpsCount(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	agg := New("u", gw, gw, testLogger())
	if err := agg.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer agg.Close()

	if err := gw.InsertMessage(ctx, &models.Message{SenderID: "a", ReceiverID: "u", Content: "hi"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	eventually(t, func() bool { return agg.CountFrom("a") == 1 }, "count never incremented")
}

func TestMarkThreadReadClearsCount(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := gw.InsertMessage(ctx, &models.Message{SenderID: "a", ReceiverID: "u", Content: "hi"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	agg := New("u", gw, gw, testLogger())
	if err := agg.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer agg.Close()

	if agg.CountFrom("a") != 2 {
		t.Fatalf("count = %d, want 2", agg.CountFrom("a"))
	}

	// The read receipts arrive as message update events and trigger a refetch.
	if err := gw.MarkThreadRead(ctx, "a", "u"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	eventually(t, func() bool { return agg.Total() == 0 }, "count never cleared after mark read")
}
