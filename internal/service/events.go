package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/docutrust/docutrust"
)

// EventService fans document lifecycle events out over redis pub/sub, one
// channel per document.
type EventService struct {
	rdb *redis.Client
}

func NewEventService(redisClient *redis.Client) *EventService {
	return &EventService{
		rdb: redisClient,
	}
}

func (s *EventService) Publish(ctx context.Context, event docutrust.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, docutrust.EventChannel(event.DocumentID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe opens a pub/sub subscription for one document's channel. The
// caller owns the returned subscription and must close it.
func (s *EventService) Subscribe(ctx context.Context, documentID string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, docutrust.EventChannel(documentID))
}
