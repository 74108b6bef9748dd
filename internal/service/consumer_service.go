package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/pkg/mailer"
	"freight-broker-be/pkg/breaker"
	"freight-broker-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService delivers operator alerts raised by the reconciler. Mail goes
// through a breaker so a dead SMTP relay does not pile up retries.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	mailer     mailer.IEmailService
	breaker    *breaker.Breaker
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	emailService mailer.IEmailService,
	cb *breaker.Breaker,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		mailer:     emailService,
		breaker:    cb,
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
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil || envelope.Type == "" {
		cs.logger.Error(logger.ModuleAlert, "Dropping unreadable alert", map[string]interface{}{
			"message_id": msg.UUID,
		})
		msg.Ack()
		return
	}

	details := map[string]interface{}{
		"alert":       envelope.Type,
		"occurred_at": envelope.OccurredAt,
	}
	for k, v := range envelope.Data {
		details[k] = v
	}
	cs.logger.Warn(logger.ModuleAlert, "Operator alert", details)

	if cs.mailer == nil {
		msg.Ack()
		return
	}

	subject := fmt.Sprintf("%s at %s", envelope.Type, envelope.OccurredAt.Format("2006-01-02 15:04:05 MST"))
	send := func() error { return cs.mailer.SendAlert(subject, details) }

	var err error
	if cs.breaker != nil {
		err = cs.breaker.Do(send)
	} else {
		err = send()
	}

	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, breaker.ErrOpen):
		cs.logger.Warn(logger.ModuleAlert, "Mail circuit open, alert kept in log only", map[string]interface{}{
			"alert": envelope.Type,
		})
		msg.Ack()
	default:
		cs.logger.Error(logger.ModuleAlert, "Failed to mail alert", map[string]interface{}{
			"alert": envelope.Type,
			"error": err.Error(),
		})
		msg.Nack()
	}
}
