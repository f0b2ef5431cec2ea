package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/config"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// EventRepository publishes and subscribes to per-test submission events
// over Redis Pub/Sub.
type EventRepository struct {
	rdb *redis.Client
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(rdb *redis.Client) *EventRepository {
	return &EventRepository{rdb: rdb}
}

// PublishSubmission fans a submission event out to the test's channel.
func (r *EventRepository) PublishSubmission(ctx context.Context, ev model.SubmissionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, config.CacheKey.TestSubmissionsChannel(ev.TestID.String()), payload).Err()
}

// SubscribeSubmissions streams the raw JSON payloads published on a test's
// channel until ctx is done or the returned close func is called. The
// subscription is confirmed before returning.
func (r *EventRepository) SubscribeSubmissions(ctx context.Context, testID uuid.UUID) (<-chan string, func() error, error) {
	pubsub := r.rdb.Subscribe(ctx, config.CacheKey.TestSubmissionsChannel(testID.String()))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}
