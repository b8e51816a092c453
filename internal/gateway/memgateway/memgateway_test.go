package memgateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

func TestFeedDelivery(t *testing.T) {
	gw := New()
	ctx := context.Background()

	sub, err := gw.Subscribe(ctx, gateway.TableMessages, gateway.EventInsert)
	require.NoError(t, err)
	defer sub.Cancel()

	msg := &models.Message{SenderID: "a", ReceiverID: "b", Content: "hi"}
	require.NoError(t, gw.InsertMessage(ctx, msg))

	select {
	case ev := <-sub.C:
		require.Equal(t, gateway.TableMessages, ev.Table)
		require.Equal(t, gateway.EventInsert, ev.Type)
		var got models.Message
		require.NoError(t, ev.Decode(&got))
		require.Equal(t, msg.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	gw := New()
	ctx := context.Background()

	sub, err := gw.Subscribe(ctx, gateway.TableMessages, gateway.EventAny)
	require.NoError(t, err)
	sub.Cancel()
	sub.Cancel() // safe twice

	require.NoError(t, gw.InsertMessage(ctx, &models.Message{SenderID: "a", ReceiverID: "b", Content: "x"}))

	// The channel is closed; the only thing left to read is the closure.
	_, open := <-sub.C
	require.False(t, open)
}

func TestFeedEventTypeFilter(t *testing.T) {
	gw := New()
	ctx := context.Background()
	gw.AddProfile(models.Profile{ID: "u1", Username: "u1", DisplayName: "U1"})

	sub, err := gw.Subscribe(ctx, gateway.TableProfiles, gateway.EventUpdate)
	require.NoError(t, err)
	defer sub.Cancel()

	// Inserts on other tables must not reach a profiles/update subscriber.
	require.NoError(t, gw.InsertMessage(ctx, &models.Message{SenderID: "u1", ReceiverID: "u2", Content: "x"}))
	require.NoError(t, gw.UpdatePresence(ctx, "u1", true))

	select {
	case ev := <-sub.C:
		require.Equal(t, gateway.TableProfiles, ev.Table)
		var p models.Profile
		require.NoError(t, ev.Decode(&p))
		require.True(t, p.IsOnline)
	case <-time.After(time.Second):
		t.Fatal("no profile event delivered")
	}
}

func TestResolveFriendRequestTerminal(t *testing.T) {
	gw := New()
	ctx := context.Background()

	req := &models.FriendRequest{FromUserID: "a", ToUserID: "b"}
	require.NoError(t, gw.InsertFriendRequest(ctx, req))

	require.NoError(t, gw.ResolveFriendRequest(ctx, req.ID, models.FriendRequestAccepted))

	err := gw.ResolveFriendRequest(ctx, req.ID, models.FriendRequestDeclined)
	require.ErrorIs(t, err, gateway.ErrRequestResolved)

	err = gw.ResolveFriendRequest(ctx, "nope", models.FriendRequestAccepted)
	require.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestSearchProfiles(t *testing.T) {
	gw := New()
	ctx := context.Background()
	gw.AddProfile(models.Profile{ID: "me", Username: "anna", DisplayName: "Anna"})
	gw.AddProfile(models.Profile{ID: "p1", Username: "annabel", DisplayName: "Annabel"})
	gw.AddProfile(models.Profile{ID: "p2", Username: "bert", DisplayName: "Anna-Lena"})
	gw.AddProfile(models.Profile{ID: "p3", Username: "carol", DisplayName: "Carol"})

	got, err := gw.SearchProfiles(ctx, "me", "ANN", 10)
	require.NoError(t, err)
	require.Len(t, got, 2) // excludes the searcher, matches either field
	for _, p := range got {
		require.NotEqual(t, "me", p.ID)
	}

	got, err = gw.SearchProfiles(ctx, "me", "ann", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestFailWith(t *testing.T) {
	gw := New()
	ctx := context.Background()
	gw.AddProfile(models.Profile{ID: "u", Username: "u", DisplayName: "U"})

	boom := context.DeadlineExceeded
	gw.FailWith(boom)
	_, err := gw.ProfileByID(ctx, "u")
	require.ErrorIs(t, err, boom)

	gw.FailWith(nil)
	_, err = gw.ProfileByID(ctx, "u")
	require.NoError(t, err)
}
