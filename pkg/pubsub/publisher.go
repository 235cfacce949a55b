package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	envelopeVersion       = 1
	defaultPublishTimeout = 10 * time.Second
)

// Envelope is the JSON body of every event message.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type topicPublisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

// EventPublisher serializes events into Envelopes and publishes them to one topic.
type EventPublisher struct {
	topic   topicPublisher
	logg    *logger.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string
	pending sync.WaitGroup
}

// NewEventPublisher wraps a Pub/Sub publisher handle. A nil handle yields nil.
func NewEventPublisher(p *gcppubsub.Publisher, logg *logger.Logger) *EventPublisher {
	if p == nil {
		return nil
	}
	return newEventPublisher(&gcpPublisher{Publisher: p}, logg)
}

func newEventPublisher(topic topicPublisher, logg *logger.Logger) *EventPublisher {
	if logg == nil {
		logg = logger.Nop()
	}
	return &EventPublisher{
		topic:   topic,
		logg:    logg,
		timeout: defaultPublishTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
	}
}

// Publish hands one event to the batching publisher and returns without
// waiting for the server. Delivery failures are logged, not returned.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, attributes map[string]string, data any) error {
	if p == nil || p.topic == nil {
		return errors.New("event publisher not configured")
	}

	msg, err := p.buildMessage(eventType, attributes, data)
	if err != nil {
		return err
	}

	// the request context ends with the response
	detached := context.WithoutCancel(ctx)
	result := p.topic.Publish(detached, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil result for %s", eventType)
	}

	p.pending.Add(1)
	go p.await(detached, eventType, msg.Attributes["event_id"], result)
	return nil
}

func (p *EventPublisher) await(ctx context.Context, eventType, eventID string, result publishResult) {
	defer p.pending.Done()

	waitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := result.Get(waitCtx); err != nil {
		entry := p.logg.WithFields(ctx, map[string]any{"event_type": eventType, "event_id": eventID})
		p.logg.Error(entry, "pubsub.publish_failed", err)
	}
}

func (p *EventPublisher) buildMessage(eventType string, attributes map[string]string, data any) (*gcppubsub.Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s data: %w", eventType, err)
	}

	envelope := Envelope{
		Version:    envelopeVersion,
		EventID:    p.newID(),
		EventType:  eventType,
		OccurredAt: p.now(),
		Data:       raw,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", eventType, err)
	}

	attrs := map[string]string{
		"event_id":    envelope.EventID,
		"event_type":  eventType,
		"occurred_at": envelope.OccurredAt.Format(time.RFC3339Nano),
	}
	for k, v := range attributes {
		if v != "" {
			attrs[k] = v
		}
	}

	return &gcppubsub.Message{Data: body, Attributes: attrs}, nil
}

// Stop flushes pending messages and waits for their outcomes to be logged.
func (p *EventPublisher) Stop() {
	if p == nil {
		return
	}
	if stopper, ok := p.topic.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	p.pending.Wait()
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
