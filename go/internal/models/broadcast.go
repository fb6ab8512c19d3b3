package models

import "time"

// BroadcastContext identifies a single live event (a match) and scopes every
// engagement lookup: polls, contests and the wall-clock to video-time mapping
// are all keyed by BroadcastID.
type BroadcastContext struct {
	BroadcastID string            `json:"broadcastId"`
	StartTime   *time.Time        `json:"startTime,omitempty"`
	ChannelID   string            `json:"channelId,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
