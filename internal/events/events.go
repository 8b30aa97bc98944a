// Package events publishes auth-domain events consumed by the rest of the
// photo platform (feed, moderation, notifications).
package events

import "context"

// EventType identifies an auth event.
type EventType string

const (
	UserRegistered  EventType = "photoapp.auth.user.registered"
	UserLoggedIn    EventType = "photoapp.auth.user.logged_in"
	UserLoggedOut   EventType = "photoapp.auth.user.logged_out"
	UserBanned      EventType = "photoapp.auth.user.banned"
	UserUnbanned    EventType = "photoapp.auth.user.unbanned"
	UserRoleChanged EventType = "photoapp.auth.user.role_changed"
)

// UserEvent is the payload attached to all auth events.
type UserEvent struct {
	Subject string `json:"subject"`
	Role    string `json:"role,omitempty"`
}

// Publisher emits auth events. Publishing is best-effort: callers log
// failures but never fail the originating request over them.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload UserEvent) error
	Close() error
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, eventType EventType, payload UserEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
