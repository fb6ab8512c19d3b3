package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/sidecast/sidecast/go/internal/models"
	"github.com/sidecast/sidecast/go/internal/timeline"
)

// JetStreamPublisherConfig holds configuration for the JetStream publisher
type JetStreamPublisherConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string // e.g., "timeline.events"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultJetStreamPublisherConfig returns default publisher configuration
func DefaultJetStreamPublisherConfig() JetStreamPublisherConfig {
	return JetStreamPublisherConfig{
		URL:           nats.DefaultURL,
		StreamName:    "TIMELINE_EVENTS",
		SubjectPrefix: "timeline.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher writes stream events into JetStream, one subject per broadcast.
// The gateway's EventConsumer reads them back out and fans them out to
// WebSocket clients.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamPublisherConfig
}

// NewPublisher connects to NATS and ensures the timeline stream exists.
func NewPublisher(config JetStreamPublisherConfig) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js, config: config}

	if err := p.ensureStream(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

// ensureStream creates the stream if it does not already exist
func (p *Publisher) ensureStream(ctx context.Context) error {
	_, err := p.js.Stream(ctx, p.config.StreamName)
	if err == nil {
		return nil
	}

	_, err = p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:      p.config.StreamName,
		Subjects:  []string{p.config.SubjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create stream: %w", err)
	}

	log.Info().Str("stream", p.config.StreamName).Msg("created JetStream stream")
	return nil
}

// PublishTimelineEvent publishes an appended timeline entry for a broadcast.
func (p *Publisher) PublishTimelineEvent(ctx context.Context, broadcastID string, record timeline.ExportRecord) error {
	payload, err := json.Marshal(TimelineEventAppendedPayload{Event: record})
	if err != nil {
		return fmt.Errorf("marshal timeline payload: %w", err)
	}
	return p.publish(ctx, broadcastID, EventTypeTimelineEventAppended, payload)
}

// PublishPollResults publishes refreshed poll tallies for a broadcast.
func (p *Publisher) PublishPollResults(ctx context.Context, broadcastID string, results models.PollResults) error {
	payload, err := json.Marshal(PollResultsUpdatedPayload{Results: results})
	if err != nil {
		return fmt.Errorf("marshal poll results payload: %w", err)
	}
	return p.publish(ctx, broadcastID, EventTypePollResultsUpdated, payload)
}

// PublishScore publishes the running match score for a broadcast.
func (p *Publisher) PublishScore(ctx context.Context, broadcastID string, minute int, score string) error {
	payload, err := json.Marshal(ScoreUpdatedPayload{
		Minute:    minute,
		Score:     score,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal score payload: %w", err)
	}
	return p.publish(ctx, broadcastID, EventTypeScoreUpdated, payload)
}

func (p *Publisher) publish(ctx context.Context, broadcastID string, eventType EventType, data json.RawMessage) error {
	event := StreamEvent{
		ID:          uuid.New().String(),
		BroadcastID: broadcastID,
		Type:        eventType,
		Timestamp:   time.Now(),
		Data:        data,
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, broadcastID)
	if _, err := p.js.Publish(ctx, subject, messageBytes); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("subject", subject).
		Str("event_type", string(eventType)).
		Msg("published stream event")

	return nil
}

// Close shuts down the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
