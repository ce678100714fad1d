package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// publishTimeout bounds a single bus publish.
const publishTimeout = 5 * time.Second

// Event channels.
const (
	EventUserRegistered = "user.registered"
	EventUserBanned     = "user.banned"
	EventUserUnbanned   = "user.unbanned"
	EventSongCreated    = "song.created"
	EventSongDeleted    = "song.deleted"
	EventVocalDeleted   = "vocal.deleted"
)

// Event is the JSON payload published on every channel.
type Event struct {
	Type    string     `json:"type"`
	ID      uuid.UUID  `json:"id"`
	ActorID *uuid.UUID `json:"actor,omitempty"`
	At      time.Time  `json:"at"`

	// MediaKeys lists object storage references held by a deleted record.
	MediaKeys []string `json:"media_keys,omitempty"`
}

// Publisher is the subset of the message bus used to emit events.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// EventPublisher emits domain events. Failures are logged and never
// returned to callers. A nil EventPublisher or nil bus is a no-op.
type EventPublisher struct {
	bus Publisher
	log *zap.Logger
}

func NewEventPublisher(bus Publisher, log *zap.Logger) *EventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventPublisher{bus: bus, log: log}
}

func (p *EventPublisher) Publish(ctx context.Context, evt Event) {
	if p == nil || p.bus == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		p.log.Error("encode event", zap.String("type", evt.Type), zap.Error(err))
		return
	}

	// Publishing outlives the request but not publishTimeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	msgID, err := p.bus.Publish(ctx, evt.Type, data, map[string]string{"type": evt.Type})
	if err != nil {
		p.log.Warn("publish event", zap.String("type", evt.Type), zap.Stringer("id", evt.ID), zap.Error(err))
		return
	}
	p.log.Debug("event published", zap.String("type", evt.Type), zap.String("message_id", msgID))
}

// DecodeEvent parses a payload produced by EventPublisher.
func DecodeEvent(data []byte) (Event, error) {
	var evt Event
	err := json.Unmarshal(data, &evt)
	return evt, err
}
