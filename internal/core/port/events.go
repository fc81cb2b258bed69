package port

import (
	"context"

	"github.com/arklim/credential-service/internal/core/domain"
)

// EventPublisher publishes credential lifecycle events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishPasswordRehashed(ctx context.Context, event domain.PasswordRehashedEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
}
