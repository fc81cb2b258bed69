package domain

import "time"

// UserRegisteredEvent represents the payload for credentials.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        *string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// PasswordChangedEvent represents the payload for credentials.user.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Metadata  map[string]any
}

// PasswordRehashedEvent represents the payload for credentials.user.password.rehashed
// messages, emitted when a legacy hash is transparently upgraded on login.
type PasswordRehashedEvent struct {
	EventID    string
	UserID     string
	RehashedAt time.Time
	Metadata   map[string]any
}

// LoginFailedEvent represents the payload for credentials.user.login.failed messages.
type LoginFailedEvent struct {
	EventID  string
	UserID   string
	FailedAt time.Time
	Metadata map[string]any
}
