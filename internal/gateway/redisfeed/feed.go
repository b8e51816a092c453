// Package redisfeed carries gateway change events over redis pub/sub, one
// channel per table/event-type pair. This is the default feed transport.
package redisfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ninahidul9/connect-chat/internal/gateway"
)

const channelPrefix = "feed"

type Feed struct {
	rdb *redis.Client
	log *slog.Logger
}

func New(rdb *redis.Client, log *slog.Logger) *Feed {
	return &Feed{rdb: rdb, log: log}
}

func channelFor(table gateway.Table, typ gateway.EventType) string {
	return fmt.Sprintf("%s:%s:%s", channelPrefix, table, typ)
}

func (f *Feed) Publish(ctx context.Context, ev gateway.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	if err := f.rdb.Publish(ctx, channelFor(ev.Table, ev.Type), payload).Err(); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context, table gateway.Table, typ gateway.EventType) (*gateway.Subscription, error) {
	var channels []string
	if typ == gateway.EventAny {
		channels = []string{
			channelFor(table, gateway.EventInsert),
			channelFor(table, gateway.EventUpdate),
		}
	} else {
		channels = []string{channelFor(table, typ)}
	}

	pubsub := f.rdb.Subscribe(ctx, channels...)
	// Receive forces the SUBSCRIBE round trip so the subscription is live
	// before we return; callers rely on that ordering when switching peers.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	out := make(chan gateway.Event, 64)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev gateway.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.log.Error("bad feed payload", "channel", msg.Channel, "error", err)
				continue
			}
			out <- ev
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			f.log.Error("close feed subscription", "error", err)
		}
	}
	return gateway.NewSubscription(out, cancel), nil
}

var _ gateway.Feed = (*Feed)(nil)
var _ gateway.Publisher = (*Feed)(nil)
