package ports

import "context"

// EventPublisher delivers published outbox payloads to the outside world.
// Notification and audit consumers both hang off this single channel; the
// core only decides the event type, never the message wording.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}
