package models

import "time"

// ContestType distinguishes the supported contest formats.
type ContestType string

const (
	ContestTypeQuiz     ContestType = "quiz"
	ContestTypeGiveaway ContestType = "giveaway"
)

// Contest is a viewer contest (quiz or giveaway) scoped to a single broadcast.
// Activation bounds follow the same rules as Poll: video-relative bounds win
// over wall-clock bounds when both are present.
type Contest struct {
	ID          string      `json:"id"`
	BroadcastID string      `json:"matchId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Prize       string      `json:"prize"`
	ContestType ContestType `json:"contestType"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	VideoStartTime *int `json:"videoStartTime,omitempty"`
	VideoEndTime   *int `json:"videoEndTime,omitempty"`

	BroadcastStartTime *time.Time `json:"broadcastStartTime,omitempty"`

	IsActive bool `json:"isActive"`
}
