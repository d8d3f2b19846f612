// Package kafka publishes activation notices to a Kafka topic. A downstream
// mailer consumes the topic and delivers the activation email.
package kafka

import (
	"AccountActivation/internal/core/domain"
	"AccountActivation/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// EventFullyActivated is the message type of an activation notice.
const EventFullyActivated = "account.fully_activated"

var _ ports.ActivationNotifier = (*ActivationPublisher)(nil) // Ensure compliance

// messageWriter is the subset of *kafkago.Writer we use.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ActivationMessage is the wire format on the notifications topic.
type ActivationMessage struct {
	Type          string    `json:"type"`
	AccountID     string    `json:"account_id"`
	AccountNumber string    `json:"account_number"`
	OwnerID       string    `json:"owner_id"`
	OwnerName     string    `json:"owner_name,omitempty"`
	OwnerEmail    string    `json:"owner_email,omitempty"`
	ActivatedAt   time.Time `json:"activated_at"`
	VerifiedBy    string    `json:"verified_by"`
}

// ActivationPublisher implements ports.ActivationNotifier over Kafka.
type ActivationPublisher struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
}

// NewWriter builds a synchronous writer that hashes keys to partitions, so
// all messages for one owner stay ordered.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
}

// NewActivationPublisher creates the publisher.
func NewActivationPublisher(writer messageWriter, topic string, baseLogger *zerolog.Logger) *ActivationPublisher {
	return &ActivationPublisher{
		writer: writer,
		topic:  topic,
		log:    baseLogger.With().Str("component", "kafka_activation_publisher").Str("topic", topic).Logger(),
	}
}

// SendFullActivation publishes the notice keyed by owner id.
func (p *ActivationPublisher) SendFullActivation(ctx context.Context, notice ports.ActivationNotice) error {
	msg := ActivationMessage{
		Type:          EventFullyActivated,
		AccountID:     notice.AccountID.String(),
		AccountNumber: notice.AccountNumber,
		OwnerID:       notice.Owner.ID.String(),
		OwnerName:     notice.Owner.FullName(),
		OwnerEmail:    notice.Owner.Email,
		ActivatedAt:   notice.ActivatedAt.UTC(),
		VerifiedBy:    notice.VerifiedBy.String(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return domain.WrapError(domain.KindDispatch, "failed to marshal activation message", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(msg.OwnerID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(EventFullyActivated)},
		},
	})
	if err != nil {
		p.log.Error().Err(err).Str("account_id", msg.AccountID).Msg("Failed to publish activation message")
		return domain.WrapError(domain.KindDispatch, fmt.Sprintf("publish to %s failed", p.topic), err)
	}

	p.log.Info().Str("account_id", msg.AccountID).Msg("Activation message published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *ActivationPublisher) Close() error {
	return p.writer.Close()
}
