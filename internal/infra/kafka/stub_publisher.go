package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishPasswordChanged logs user.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("user.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishPasswordRehashed logs user.password.rehashed events.
func (p *StubPublisher) PublishPasswordRehashed(_ context.Context, event domain.PasswordRehashedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"rehashed_at": event.RehashedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("user.password.rehashed", event.UserID, event.RehashedAt, payload)
	return nil
}

// PublishLoginFailed logs user.login.failed events.
func (p *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	payload := map[string]any{
		"user_id":   event.UserID,
		"failed_at": event.FailedAt,
		"metadata":  event.Metadata,
	}
	p.logEvent("user.login.failed", event.UserID, event.FailedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
