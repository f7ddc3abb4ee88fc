package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Event is one row change pushed to subscribed clients. Row carries the
// post-change snapshot (the pre-delete snapshot for deletes).
type Event struct {
	Collection string          `json:"collection"`
	Type       ChangeType      `json:"type"`
	Row        json.RawMessage `json:"row"`
	At         time.Time       `json:"at"`
}

// Publisher pushes change events to subscribers. Mutating services hold a
// Publisher and treat a nil one as "feed disabled".
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisFeed is a redis pub/sub implementation of the change feed. Each
// collection gets its own channel under the configured prefix.
type RedisFeed struct {
	client rueidis.Client
	prefix string
}

func NewRedisFeed(client rueidis.Client, prefix string) *RedisFeed {
	return &RedisFeed{
		client: client,
		prefix: prefix,
	}
}

func (f *RedisFeed) channel(collection string) string {
	return f.prefix + ":" + collection
}

// Publish sends the event on the collection's channel
func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}

	cmd := f.client.B().Publish().
		Channel(f.channel(event.Collection)).
		Message(string(payload)).
		Build()

	return f.client.Do(ctx, cmd).Error()
}

// Subscribe delivers change events for one collection to fn until ctx is
// cancelled. Undecodable payloads are skipped.
func (f *RedisFeed) Subscribe(ctx context.Context, collection string, fn func(Event)) error {
	cmd := f.client.B().Subscribe().Channel(f.channel(collection)).Build()

	return f.client.Receive(ctx, cmd, func(msg rueidis.PubSubMessage) {
		var event Event
		if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
			return
		}
		fn(event)
	})
}

// NewEvent builds an Event from a row snapshot
func NewEvent(collection string, changeType ChangeType, row interface{}) (Event, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode row: %w", err)
	}

	return Event{
		Collection: collection,
		Type:       changeType,
		Row:        payload,
		At:         time.Now(),
	}, nil
}
