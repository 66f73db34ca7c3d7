package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

func TestPublishAndConsume_MirrorsEvents(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	mirror := &recordingPublisher{}
	consumer := NewConsumerService(pubSub, "session_events", mirror, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("session_events", pubSub)
	require.NoError(t, publisher.Publish(ctx, events.New(events.TypeDocumentLoaded, map[string]interface{}{
		"file_name": "report.pdf",
		"chunks":    2,
	})))

	require.Eventually(t, func() bool { return len(mirror.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	got := mirror.snapshot()[0]
	assert.Equal(t, events.TypeDocumentLoaded, got.EventType())
	assert.Equal(t, "report.pdf", got.Payload()["file_name"])
	assert.EqualValues(t, 2, got.Payload()["chunks"])
}
