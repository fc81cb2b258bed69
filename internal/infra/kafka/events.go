package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/core/port"
	"github.com/arklim/credential-service/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Username     string         `json:"username"`
		Email        *string        `json:"email,omitempty"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishPasswordChanged publishes user.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.password.changed", event.UserID, event.ChangedAt, payload)
}

// PublishPasswordRehashed publishes user.password.rehashed events.
func (p *EventPublisher) PublishPasswordRehashed(ctx context.Context, event domain.PasswordRehashedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		RehashedAt time.Time      `json:"rehashed_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		RehashedAt: event.RehashedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.password.rehashed", event.UserID, event.RehashedAt, payload)
}

// PublishLoginFailed publishes user.login.failed events.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		UserID   string         `json:"user_id"`
		FailedAt time.Time      `json:"failed_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		UserID:   event.UserID,
		FailedAt: event.FailedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.login.failed", event.UserID, event.FailedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
