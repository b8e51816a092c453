package thread

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ninahidul9/connect-chat/internal/gateway"
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

// countingStore records InsertMessage calls on top of the real store.
type countingStore struct {
	gateway.Store
	inserts int
}

func (c *countingStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	c.inserts++
	return c.Store.InsertMessage(ctx, msg)
}

func TestLoadOrdersByCreatedAt(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()
	now := time.Now().UTC()

	// Inserted out of order on purpose.
	msgs := []models.Message{
		{SenderID: "v", ReceiverID: "u", Content: "yo", CreatedAt: now.Add(time.Second)},
		{SenderID: "u", ReceiverID: "v", Content: "hi", CreatedAt: now},
		{SenderID: "u", ReceiverID: "x", Content: "other thread", CreatedAt: now},
	}
	for i := range msgs {
		if err := gw.InsertMessage(ctx, &msgs[i]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	s := New("u", gw, gw, testLogger())
	defer s.Close()
	s.SetPeer(ctx, "v")

	got := s.Messages()
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].Content != "hi" || got[1].Content != "yo" {
		t.Fatalf("wrong order: %q then %q", got[0].Content, got[1].Content)
	}
}

func TestSendAppendsThroughFeed(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	u := New("u", gw, gw, testLogger())
	v := New("v", gw, gw, testLogger())
	defer u.Close()
	defer v.Close()
	u.SetPeer(ctx, "v")
	v.SetPeer(ctx, "u")

	if err := u.Send(ctx, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	eventually(t, func() bool { return len(u.Messages()) == 1 }, "sender never saw own message")
	eventually(t, func() bool { return len(v.Messages()) == 1 }, "receiver never saw the message")
	if got := v.Messages()[0]; got.Content != "hello" || got.IsRead {
		t.Fatalf("received message = %+v, want unread 'hello'", got)
	}
}

func TestSendWhitespaceIsNoop(t *testing.T) {
	cs := &countingStore{Store: memgateway.New()}
	feed := memgateway.New()
	ctx := context.Background()

	s := New("u", cs, feed, testLogger())
	defer s.Close()
	s.SetPeer(ctx, "v")

	for _, content := range []string{"", "   ", "\n\t "} {
		if err := s.Send(ctx, content); err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
	}
	if cs.inserts != 0 {
		t.Fatalf("whitespace sends hit the store %d times", cs.inserts)
	}
}

func TestSendWithoutPeerIsNoop(t *testing.T) {
	cs := &countingStore{Store: memgateway.New()}
	s := New("u", cs, memgateway.New(), testLogger())
	defer s.Close()

	if err := s.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if cs.inserts != 0 {
		t.Fatalf("send without a peer hit the store %d times", cs.inserts)
	}
}

func TestMarkReadPropagatesReceipts(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	u := New("u", gw, gw, testLogger())
	v := New("v", gw, gw, testLogger())
	defer u.Close()
	defer v.Close()
	u.SetPeer(ctx, "v")
	v.SetPeer(ctx, "u")

	if err := u.Send(ctx, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	eventually(t, func() bool { return len(v.Messages()) == 1 }, "receiver never saw the message")

	v.MarkRead(ctx)

	// The update event flows back to the sender as a read receipt.
	eventually(t, func() bool {
		msgs := u.Messages()
		return len(msgs) == 1 && msgs[0].IsRead
	}, "sender never saw the read receipt")

	// Repeating is harmless: everything is already read.
	v.MarkRead(ctx)
	unread, err := gw.UnreadMessagesFor(ctx, "v")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("still unread after mark read: %+v", unread)
	}
}

func TestPeerSwitchDropsOldThread(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	if err := gw.InsertMessage(ctx, &models.Message{SenderID: "p", ReceiverID: "u", Content: "from p"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s := New("u", gw, gw, testLogger())
	defer s.Close()

	s.SetPeer(ctx, "p")
	if got := s.Messages(); len(got) != 1 {
		t.Fatalf("thread with p = %+v, want 1 message", got)
	}

	s.SetPeer(ctx, "q")
	if got := s.Messages(); len(got) != 0 {
		t.Fatalf("thread with q must start empty, got %+v", got)
	}

	// Traffic on the old thread stays out of the new one.
	if err := gw.InsertMessage(ctx, &models.Message{SenderID: "p", ReceiverID: "u", Content: "late from p"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := gw.InsertMessage(ctx, &models.Message{SenderID: "q", ReceiverID: "u", Content: "from q"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	eventually(t, func() bool { return len(s.Messages()) == 1 }, "message from q never arrived")
	if got := s.Messages()[0]; got.Content != "from q" {
		t.Fatalf("leaked message into new thread: %+v", got)
	}
}

func TestSetPeerEmptyClosesThread(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	if err := gw.InsertMessage(ctx, &models.Message{SenderID: "v", ReceiverID: "u", Content: "hi"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s := New("u", gw, gw, testLogger())
	defer s.Close()
	s.SetPeer(ctx, "v")
	if len(s.Messages()) != 1 {
		t.Fatal("thread did not load")
	}

	s.SetPeer(ctx, "")
	if s.Peer() != "" {
		t.Fatalf("peer = %q, want empty", s.Peer())
	}
	if got := s.Messages(); len(got) != 0 {
		t.Fatalf("closed thread still holds messages: %+v", got)
	}
}

func TestDuplicateEventsAreIdempotent(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()

	s := New("u", gw, gw, testLogger())
	defer s.Close()
	s.SetPeer(ctx, "v")

	msg := models.Message{ID: "m1", SenderID: "v", ReceiverID: "u", Content: "hi", CreatedAt: time.Now().UTC()}
	ev := gateway.NewEvent(gateway.TableMessages, gateway.EventInsert, msg)
	if err := gw.Publish(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := gw.Publish(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	eventually(t, func() bool { return len(s.Messages()) >= 1 }, "event never arrived")
	// Give the duplicate a moment to be (wrongly) appended.
	time.Sleep(50 * time.Millisecond)
	if got := s.Messages(); len(got) != 1 {
		t.Fatalf("duplicate event delivery produced %d entries", len(got))
	}
}
