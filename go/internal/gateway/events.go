package gateway

import (
	"encoding/json"
	"time"

	"github.com/sidecast/sidecast/go/internal/models"
	"github.com/sidecast/sidecast/go/internal/timeline"
)

// StreamEvent is the base structure for all events pushed to clients
type StreamEvent struct {
	ID          string          `json:"id"`           // Event UUID
	BroadcastID string          `json:"broadcast_id"` // Broadcast identifier
	Type        EventType       `json:"type"`         // Event type
	Timestamp   time.Time       `json:"timestamp"`    // Event creation time
	Data        json.RawMessage `json:"data"`         // Event-specific payload
}

// EventType represents the type of stream event
type EventType string

const (
	EventTypeTimelineEventAppended EventType = "TimelineEventAppended"
	EventTypePollResultsUpdated    EventType = "PollResultsUpdated"
	EventTypeScoreUpdated          EventType = "ScoreUpdated"
)

// TimelineEventAppendedPayload carries a new timeline entry in its export form
type TimelineEventAppendedPayload struct {
	Event timeline.ExportRecord `json:"event"`
}

// PollResultsUpdatedPayload carries refreshed tallies for a poll
type PollResultsUpdatedPayload struct {
	Results models.PollResults `json:"results"`
}

// ScoreUpdatedPayload carries the running match score
type ScoreUpdatedPayload struct {
	Minute    int       `json:"minute"`
	Score     string    `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *StreamEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeTimelineEventAppended:
		var payload TimelineEventAppendedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypePollResultsUpdated:
		var payload PollResultsUpdatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeScoreUpdated:
		var payload ScoreUpdatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}
