// Package events delivers matching events to Redis subscribers and logs.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matchmaking/internal/matching"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "matchmaking:events"

// RedisSink publishes each event as JSON on a pub/sub channel.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

var _ matching.EventSink = (*RedisSink)(nil)

func NewRedisSink(client redis.UniversalClient, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Publish(ctx context.Context, e matching.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}

// Subscribe streams decoded events from channel until ctx is done. Messages
// that do not decode are skipped.
func Subscribe(ctx context.Context, client redis.UniversalClient, channel string) (<-chan matching.Event, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	out := make(chan matching.Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var e matching.Event
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// LogSink writes every event at debug level.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(ctx context.Context, e matching.Event) error {
	s.log.DebugContext(ctx, "matching event",
		"event_id", e.ID,
		"kind", e.Kind,
		"actor_id", e.ActorID,
		"target_id", e.TargetID,
		"match_id", e.MatchID,
	)
	return nil
}

// Fanout delivers to every sink and joins their errors.
type Fanout []matching.EventSink

func (f Fanout) Publish(ctx context.Context, e matching.Event) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
