// Package presence flips a user's online flag when their socket comes and
// goes. Writes go through the store so the resulting profile update events
// reach every friend graph over the feed; the redis online set is a cheap
// mirror for direct lookups.
package presence

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ninahidul9/connect-chat/internal/gateway"
)

const onlineSetKey = "online_users"

type Tracker struct {
	store gateway.Store
	rdb   *redis.Client // optional; nil skips the online set
	log   *slog.Logger
}

func New(store gateway.Store, rdb *redis.Client, log *slog.Logger) *Tracker {
	return &Tracker{store: store, rdb: rdb, log: log.With("component", "presence")}
}

// Connected marks the user online. Failures are logged, not surfaced;
// presence is best-effort.
func (t *Tracker) Connected(ctx context.Context, userID string) {
	if t.rdb != nil {
		if err := t.rdb.SAdd(ctx, onlineSetKey, userID).Err(); err != nil {
			t.log.Error("add to online set failed", "user", userID, "error", err)
		}
	}
	if err := t.store.UpdatePresence(ctx, userID, true); err != nil {
		t.log.Error("set online failed", "user", userID, "error", err)
	}
}

// Disconnected marks the user offline and stamps last_seen.
func (t *Tracker) Disconnected(ctx context.Context, userID string) {
	if t.rdb != nil {
		if err := t.rdb.SRem(ctx, onlineSetKey, userID).Err(); err != nil {
			t.log.Error("remove from online set failed", "user", userID, "error", err)
		}
	}
	if err := t.store.UpdatePresence(ctx, userID, false); err != nil {
		t.log.Error("set offline failed", "user", userID, "error", err)
	}
}

// OnlineUsers lists the ids in the online set. Empty without redis.
func (t *Tracker) OnlineUsers(ctx context.Context) ([]string, error) {
	if t.rdb == nil {
		return nil, nil
	}
	return t.rdb.SMembers(ctx, onlineSetKey).Result()
}
