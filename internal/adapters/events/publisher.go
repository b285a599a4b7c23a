package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher writes outbox payloads to the service log. The notification
// gateway tails these records in non-production environments; real broker
// delivery is a deployment concern behind the same interface.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.InfoContext(ctx, "event published",
		"module", "events.publisher",
		"event_type", eventType,
		"payload", string(payload),
	)
	return nil
}
