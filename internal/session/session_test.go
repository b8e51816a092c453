package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ninahidul9/connect-chat/internal/gateway/memgateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelationshipTo(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()
	for _, id := range []string{"me", "friend", "sent", "received", "stranger"} {
		gw.AddProfile(models.Profile{ID: id, Username: id, DisplayName: id})
	}

	if err := gw.InsertFriendships(ctx, []models.Friendship{
		{UserID: "me", FriendID: "friend"},
		{UserID: "friend", FriendID: "me"},
	}); err != nil {
		t.Fatalf("seed friendship: %v", err)
	}
	if err := gw.InsertFriendRequest(ctx, &models.FriendRequest{FromUserID: "me", ToUserID: "sent"}); err != nil {
		t.Fatalf("seed sent request: %v", err)
	}
	if err := gw.InsertFriendRequest(ctx, &models.FriendRequest{FromUserID: "received", ToUserID: "me"}); err != nil {
		t.Fatalf("seed received request: %v", err)
	}

	sess := New("me", gw, gw, testLogger())
	sess.Friends.Load(ctx)

	cases := []struct {
		profileID string
		want      Relationship
	}{
		{"friend", RelationFriend},
		{"sent", RelationRequestSent},
		{"received", RelationRequestReceived},
		{"stranger", RelationNone},
	}
	for _, tc := range cases {
		if got := sess.RelationshipTo(tc.profileID); got != tc.want {
			t.Errorf("RelationshipTo(%q) = %q, want %q", tc.profileID, got, tc.want)
		}
	}
}

func TestStartAndClose(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()
	gw.AddProfile(models.Profile{ID: "me", Username: "me", DisplayName: "Me"})

	sess := New("me", gw, gw, testLogger())
	if err := sess.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	sess.Close()
}

func TestRelationshipTracksStateChanges(t *testing.T) {
	gw := memgateway.New()
	ctx := context.Background()
	gw.AddProfile(models.Profile{ID: "me", Username: "me", DisplayName: "Me"})
	gw.AddProfile(models.Profile{ID: "other", Username: "other", DisplayName: "Other"})

	sess := New("me", gw, gw, testLogger())
	sess.Friends.Load(ctx)

	if got := sess.RelationshipTo("other"); got != RelationNone {
		t.Fatalf("relationship = %q, want none", got)
	}

	if err := sess.Friends.SendRequest(ctx, "other"); err != nil {
		t.Fatalf("send request: %v", err)
	}
	if got := sess.RelationshipTo("other"); got != RelationRequestSent {
		t.Fatalf("relationship = %q, want request_sent", got)
	}
}
