package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidecast/sidecast/go/internal/models"
	"github.com/sidecast/sidecast/go/internal/timeline"
)

func TestParseTimelineEventPayload(t *testing.T) {
	data, err := json.Marshal(TimelineEventAppendedPayload{
		Event: timeline.ExportRecord{
			ID:             "g1",
			VideoTimestamp: 780,
			EventType:      string(timeline.EventTypeMatchGoal),
		},
	})
	require.NoError(t, err)

	event := &StreamEvent{
		ID:          "e1",
		BroadcastID: "match-1",
		Type:        EventTypeTimelineEventAppended,
		Timestamp:   time.Now(),
		Data:        data,
	}

	payload, err := ParseEventPayload(event)
	require.NoError(t, err)

	appended, ok := payload.(TimelineEventAppendedPayload)
	require.True(t, ok)
	assert.Equal(t, "g1", appended.Event.ID)
	assert.Equal(t, 780.0, appended.Event.VideoTimestamp)
}

func TestParsePollResultsPayload(t *testing.T) {
	data, err := json.Marshal(PollResultsUpdatedPayload{
		Results: models.PollResults{PollID: "p1", TotalVotes: 4},
	})
	require.NoError(t, err)

	event := &StreamEvent{Type: EventTypePollResultsUpdated, Data: data}

	payload, err := ParseEventPayload(event)
	require.NoError(t, err)

	results, ok := payload.(PollResultsUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, "p1", results.Results.PollID)
	assert.Equal(t, 4, results.Results.TotalVotes)
}

func TestParseUnknownEventType(t *testing.T) {
	event := &StreamEvent{Type: EventType("Mystery"), Data: []byte(`{}`)}

	payload, err := ParseEventPayload(event)
	require.NoError(t, err)
	assert.Nil(t, payload)
}
