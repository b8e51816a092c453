// Package kafkafeed carries gateway change events over a single Kafka topic.
// Each subscription is its own consumer group so every subscriber sees every
// event; filtering by table and type happens client-side. Selected instead of
// redis pub/sub with FEED_BACKEND=kafka.
package kafkafeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ninahidul9/connect-chat/internal/gateway"
)

type Feed struct {
	brokers []string
	topic   string
	writer  *kafka.Writer
	log     *slog.Logger
}

func New(brokers []string, topic string, log *slog.Logger) *Feed {
	return &Feed{
		brokers: brokers,
		topic:   topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		log: log,
	}
}

func (f *Feed) Close() error {
	return f.writer.Close()
}

func (f *Feed) Publish(ctx context.Context, ev gateway.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	err = f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Table),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context, table gateway.Table, typ gateway.EventType) (*gateway.Subscription, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     f.brokers,
		Topic:       f.topic,
		GroupID:     "feed-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
	})

	readCtx, stop := context.WithCancel(ctx)
	out := make(chan gateway.Event, 64)
	go func() {
		defer close(out)
		for {
			msg, err := reader.ReadMessage(readCtx)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
					f.log.Error("feed read failed", "topic", f.topic, "error", err)
				}
				return
			}
			var ev gateway.Event
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				f.log.Error("bad feed payload", "topic", f.topic, "error", err)
				continue
			}
			if ev.Matches(table, typ) {
				out <- ev
			}
		}
	}()

	cancel := func() {
		stop()
		if err := reader.Close(); err != nil {
			f.log.Error("close feed reader", "error", err)
		}
	}
	return gateway.NewSubscription(out, cancel), nil
}

var _ gateway.Feed = (*Feed)(nil)
var _ gateway.Publisher = (*Feed)(nil)
