// Package events fans coursework domain events out to Redis pub/sub and NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types emitted by the services.
const (
	AssignmentCreated     = "assignment.created"
	AssignmentUpdated     = "assignment.updated"
	AssignmentDeleted     = "assignment.deleted"
	AssignmentDistributed = "assignment.distributed"
	SubmissionReceived    = "submission.received"
	PaperGraded           = "paper.graded"
)

// Event is the envelope written to every transport.
type Event struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	Source       string                 `json:"source"`
	ActorID      uint                   `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	AssignmentID uint                   `json:"assignment_id,omitempty"`
	StudentID    string                 `json:"student_id,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Broker publishes to a Redis channel and a NATS subject; either transport may be nil.
type Broker struct {
	redis   *redis.Client
	channel string
	nats    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewBroker derives the Redis channel and NATS subject from channelBase
// ("coursework:events" publishes on channel "coursework:events" and subject "coursework.events").
func NewBroker(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Broker {
	channel := strings.TrimSpace(channelBase)
	subject := ""
	if channel != "" {
		subject = strings.ReplaceAll(channel, ":", ".")
	}

	return &Broker{
		redis:   redisClient,
		channel: channel,
		nats:    natsConn,
		subject: subject,
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "event_broker").Logger(),
		now:     time.Now,
	}
}

// Channel is the Redis channel events are published on.
func (b *Broker) Channel() string {
	return b.channel
}

// Subject is the NATS subject events are published on.
func (b *Broker) Subject() string {
	return b.subject
}

// Publish stamps the event and sends it to every configured transport. Errors from each transport
// are joined so one failing transport does not hide the other.
func (b *Broker) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now().UTC()
	}
	event.Source = b.nodeID

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if b.redis != nil && b.channel != "" {
		if err := b.redis.Publish(ctx, b.channel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if b.nats != nil && b.subject != "" {
		if err := b.nats.Publish(b.subject+"."+event.Type, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		b.logger.Debug().Str("event_type", event.Type).Str("event_id", event.ID).Msg("event published")
	}

	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error {
	return nil
}
