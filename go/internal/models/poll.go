package models

import "time"

// Poll is an interactive poll scoped to a single broadcast.
//
// A poll can carry two kinds of activation bounds: absolute wall-clock
// StartTime/EndTime, and video-relative VideoStartTime/VideoEndTime measured in
// seconds from broadcast start (negative values land in the pre-roll). When
// video-relative bounds are present they take precedence, since they keep
// working when playback is paused or scrubbed behind the live edge.
type Poll struct {
	ID          string       `json:"id"`
	BroadcastID string       `json:"matchId"`
	Question    string       `json:"question"`
	Options     []PollOption `json:"options"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	VideoStartTime *int `json:"videoStartTime,omitempty"`
	VideoEndTime   *int `json:"videoEndTime,omitempty"`

	// BroadcastStartTime is the absolute start of the broadcast this poll
	// belongs to, when the backend includes it alongside the poll.
	BroadcastStartTime *time.Time `json:"broadcastStartTime,omitempty"`

	IsActive   bool `json:"isActive"`
	TotalVotes int  `json:"totalVotes"`
}

// PollOption is a single answer choice with its running tally.
type PollOption struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	VoteCount  int     `json:"voteCount"`
	Percentage float64 `json:"percentage"`
}

// PollResults carries the per-option tallies pushed for a poll, either from a
// results update or recomputed locally after an optimistic vote.
type PollResults struct {
	PollID     string              `json:"pollId"`
	TotalVotes int                 `json:"totalVotes"`
	Options    []PollOptionResults `json:"options"`
}

// PollOptionResults is the tally for one option within PollResults.
type PollOptionResults struct {
	OptionID   string  `json:"optionId"`
	VoteCount  int     `json:"voteCount"`
	Percentage float64 `json:"percentage"`
}
