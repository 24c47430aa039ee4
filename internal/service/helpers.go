package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coursework-api/internal/events"
)

var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDue accepts RFC3339 instants and the date forms HTML inputs send; zone-less values are UTC.
func parseDue(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dueLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, invalidInput("due must be a valid date")
}

func publishEvent(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to publish event")
	}
}

func uintPtr(v uint) *uint {
	return &v
}
