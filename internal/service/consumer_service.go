package service

import (
	"context"
	"encoding/json"
	"time"

	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	mirror     events.Publisher
	logger     logger.ILogger
}

// NewConsumerService subscribes to the session event topic. mirror may be nil
// when no external bus is configured.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	mirror events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		mirror:     mirror,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("EVENTS", envelope.Type, envelope.Data)

	if cs.mirror != nil {
		occurredAt, err := time.Parse(time.RFC3339Nano, envelope.OccurredAt)
		if err != nil {
			occurredAt = time.Now()
		}

		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = cs.mirror.Publish(pubCtx, events.BaseEvent{
			Type:       envelope.Type,
			Data:       envelope.Data,
			OccurredAt: occurredAt,
		})
		cancel()
		if err != nil {
			// The mirror is best effort; the event was already handled locally
			cs.logger.Warn("EVENTS", "Failed to mirror event", map[string]interface{}{
				"type":  envelope.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
