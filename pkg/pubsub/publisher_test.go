package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
)

type stubResult struct {
	id      string
	err     error
	release <-chan struct{}
}

func (r stubResult) Get(ctx context.Context) (string, error) {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.id, r.err
}

type stubTopic struct {
	messages []*gcppubsub.Message
	err      error
	release  chan struct{}
	stopped  bool
}

func (s *stubTopic) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	return stubResult{id: "server-1", err: s.err, release: s.release}
}

func (s *stubTopic) Stop() {
	s.stopped = true
	if s.release != nil {
		close(s.release)
	}
}

func newTestPublisher(topic topicPublisher, logg *logger.Logger) *EventPublisher {
	p := newEventPublisher(topic, logg)
	p.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	p.newID = func() string { return "evt-1" }
	return p
}

func TestPublishBuildsEnvelopeAndAttributes(t *testing.T) {
	topic := &stubTopic{}
	pub := newTestPublisher(topic, nil)

	err := pub.Publish(context.Background(), "wishlist.item_added",
		map[string]string{"shop_domain": "demo.myshopify.com", "customer_id": ""},
		map[string]string{"productId": "1"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(topic.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(topic.messages))
	}

	msg := topic.messages[0]
	if msg.Attributes["event_type"] != "wishlist.item_added" || msg.Attributes["event_id"] != "evt-1" {
		t.Fatalf("unexpected attributes %v", msg.Attributes)
	}
	if msg.Attributes["shop_domain"] != "demo.myshopify.com" {
		t.Fatalf("expected shop attribute, got %v", msg.Attributes)
	}
	if _, ok := msg.Attributes["customer_id"]; ok {
		t.Fatalf("empty attributes should be dropped")
	}

	var env Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Version != 1 || env.EventType != "wishlist.item_added" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if string(env.Data) != `{"productId":"1"}` {
		t.Fatalf("unexpected data %s", env.Data)
	}
}

func TestPublishDoesNotWaitForServer(t *testing.T) {
	topic := &stubTopic{release: make(chan struct{})}
	pub := newTestPublisher(topic, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- pub.Publish(ctx, "wishlist.item_added", nil, struct{}{})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publish blocked on the server acknowledgement")
	}
	// the request finishing must not abandon the message
	cancel()

	pub.Stop()
	if len(topic.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(topic.messages))
	}
}

func TestPublishLogsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf, Format: "json"})
	topic := &stubTopic{err: errors.New("unavailable")}
	pub := newTestPublisher(topic, logg)

	if err := pub.Publish(context.Background(), "wishlist.item_removed", nil, struct{}{}); err != nil {
		t.Fatalf("server errors must not reach the caller: %v", err)
	}
	pub.Stop()

	out := buf.String()
	if !strings.Contains(out, "pubsub.publish_failed") || !strings.Contains(out, "unavailable") {
		t.Fatalf("expected logged failure, got %q", out)
	}
	if !strings.Contains(out, `"event_type":"wishlist.item_removed"`) || !strings.Contains(out, `"event_id":"evt-1"`) {
		t.Fatalf("expected event fields, got %q", out)
	}
}

func TestNilPublisherIsRejectedAndStopIsSafe(t *testing.T) {
	var pub *EventPublisher
	if err := pub.Publish(context.Background(), "x", nil, nil); err == nil {
		t.Fatal("expected error from nil publisher")
	}
	pub.Stop()

	if NewEventPublisher(nil, nil) != nil {
		t.Fatal("expected nil publisher for nil handle")
	}

	topic := &stubTopic{}
	newTestPublisher(topic, nil).Stop()
	if !topic.stopped {
		t.Fatal("expected Stop to flush the topic")
	}
}

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		name    string
		project string
		topic   string
		want    string
		wantErr bool
	}{
		{name: "short id", project: "proj", topic: "wishlist-events", want: "projects/proj/topics/wishlist-events"},
		{name: "full name", project: "proj", topic: "projects/other/topics/x", want: "projects/other/topics/x"},
		{name: "no project", topic: "x", wantErr: true},
		{name: "no topic", project: "proj", topic: " ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := topicResourceName(tc.project, tc.topic)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("expected %q, got %q (%v)", tc.want, got, err)
			}
		})
	}
}
