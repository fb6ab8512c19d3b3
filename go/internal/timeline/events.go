package timeline

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is returned when unwrapping an Event to a payload type that
// does not match the stored variant.
var ErrTypeMismatch = errors.New("timeline: event payload type mismatch")

// TimelineEvent is implemented by every concrete event payload that can be
// placed on the timeline. VideoTimestamp is in seconds relative to broadcast
// start (0 = kickoff, negative = pre-roll). DisplayPriority breaks ties between
// simultaneous events, higher first.
type TimelineEvent interface {
	EventID() string
	VideoTimestamp() float64
	Type() EventType
	DisplayPriority() int
	EventMetadata() map[string]string
}

// Event is the type-erased box the store keeps. It copies the common fields
// out of the payload at wrap time so ordering and filtering never touch the
// concrete type; the payload itself is recovered with PayloadAs.
type Event struct {
	ID              string
	VideoTimestamp  float64
	Type            EventType
	DisplayPriority int
	Metadata        map[string]string

	payload TimelineEvent
}

// Wrap boxes a concrete event. The payload is never mutated.
func Wrap(ev TimelineEvent) Event {
	return Event{
		ID:              ev.EventID(),
		VideoTimestamp:  ev.VideoTimestamp(),
		Type:            ev.Type(),
		DisplayPriority: ev.DisplayPriority(),
		Metadata:        ev.EventMetadata(),
		payload:         ev,
	}
}

// PayloadAs recovers the concrete payload from a wrapped event. It fails with
// ErrTypeMismatch instead of panicking when T is not the stored variant.
func PayloadAs[T TimelineEvent](e Event) (T, error) {
	p, ok := e.payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: have %s", ErrTypeMismatch, e.Type)
	}
	return p, nil
}

// ExportRecord is the backend-neutral flat form of a timeline event: the
// common fields only, payload specifics reduced to metadata.
type ExportRecord struct {
	ID             string            `json:"id"`
	VideoTimestamp float64           `json:"videoTimestamp"`
	EventType      string            `json:"eventType"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Base carries the fields shared by every variant. Concrete events embed it
// and add their payload-specific fields on top.
type Base struct {
	ID        string
	VideoTime float64
	Metadata  map[string]string
}

func (b Base) EventID() string                  { return b.ID }
func (b Base) VideoTimestamp() float64          { return b.VideoTime }
func (b Base) EventMetadata() map[string]string { return b.Metadata }

// ChatMessageEvent is a viewer chat message.
type ChatMessageEvent struct {
	Base
	Username      string
	Text          string
	UsernameColor string
	Likes         int
}

func (ChatMessageEvent) Type() EventType      { return EventTypeChatMessage }
func (ChatMessageEvent) DisplayPriority() int { return 1 }

// AdminCommentEvent is a commentator or moderator message.
type AdminCommentEvent struct {
	Base
	AdminName string
	Comment   string
	IsPinned  bool
}

func (AdminCommentEvent) Type() EventType      { return EventTypeAdminComment }
func (AdminCommentEvent) DisplayPriority() int { return 10 }

// TweetEvent is an embedded social post from X.
type TweetEvent struct {
	Base
	AuthorName   string
	AuthorHandle string
	AuthorAvatar string
	Text         string
	IsVerified   bool
	Likes        int
	Retweets     int
}

func (TweetEvent) Type() EventType      { return EventTypeTweet }
func (TweetEvent) DisplayPriority() int { return 2 }

// SocialPostEvent is an embedded post from any other social platform.
type SocialPostEvent struct {
	Base
	Platform   string
	AuthorName string
	Content    string
	ImageURL   string
	Reactions  map[string]int
}

func (SocialPostEvent) Type() EventType      { return EventTypeSocialPost }
func (SocialPostEvent) DisplayPriority() int { return 2 }

// MatchGoalEvent records a goal, including the running score at that moment.
type MatchGoalEvent struct {
	Base
	Player    string
	Team      TeamSide
	Score     string
	AssistBy  string
	IsOwnGoal bool
	IsPenalty bool
}

func (MatchGoalEvent) Type() EventType      { return EventTypeMatchGoal }
func (MatchGoalEvent) DisplayPriority() int { return 10 }

// CardType distinguishes bookings.
type CardType string

const (
	CardYellow       CardType = "yellow"
	CardRed          CardType = "red"
	CardSecondYellow CardType = "second_yellow"
)

// MatchCardEvent records a booking.
type MatchCardEvent struct {
	Base
	Player   string
	Team     TeamSide
	CardType CardType
	Reason   string
}

func (MatchCardEvent) Type() EventType      { return EventTypeMatchCard }
func (MatchCardEvent) DisplayPriority() int { return 8 }

// MatchSubstitutionEvent records a substitution.
type MatchSubstitutionEvent struct {
	Base
	PlayerIn  string
	PlayerOut string
	Team      TeamSide
}

func (MatchSubstitutionEvent) Type() EventType      { return EventTypeMatchSubstitution }
func (MatchSubstitutionEvent) DisplayPriority() int { return 5 }

// PollEvent places a poll on the timeline at the moment it opens.
type PollEvent struct {
	Base
	Question     string
	OptionIDs    []string
	Duration     float64
	EndTimestamp float64
	BroadcastID  string
}

func (PollEvent) Type() EventType      { return EventTypePoll }
func (PollEvent) DisplayPriority() int { return 7 }

// ContestEvent places a contest on the timeline at the moment it opens.
type ContestEvent struct {
	Base
	Title       string
	Description string
	Prize       string
	ContestType string
	BroadcastID string
}

func (ContestEvent) Type() EventType      { return EventTypeContest }
func (ContestEvent) DisplayPriority() int { return 8 }

// ProductHighlightEvent calls out a product during the broadcast.
type ProductHighlightEvent struct {
	Base
	ProductID    string
	ProductName  string
	ProductImage string
	Price        string
	Currency     string
	Duration     float64
}

func (ProductHighlightEvent) Type() EventType      { return EventTypeProductHighlight }
func (ProductHighlightEvent) DisplayPriority() int { return 3 }

// AnnouncementEvent is a broadcaster announcement with an optional action link.
type AnnouncementEvent struct {
	Base
	Title      string
	Message    string
	ImageURL   string
	ActionURL  string
	ActionText string
}

func (AnnouncementEvent) Type() EventType      { return EventTypeAnnouncement }
func (AnnouncementEvent) DisplayPriority() int { return 9 }

// HighlightEvent links a replayable clip to a moment on the timeline.
type HighlightEvent struct {
	Base
	Title         string
	Description   string
	ThumbnailURL  string
	ClipURL       string
	HighlightType string
}

func (HighlightEvent) Type() EventType      { return EventTypeHighlight }
func (HighlightEvent) DisplayPriority() int { return 4 }

// StatisticsUpdateEvent carries a single home/away stat refresh.
type StatisticsUpdateEvent struct {
	Base
	StatName  string
	HomeValue float64
	AwayValue float64
}

func (StatisticsUpdateEvent) Type() EventType      { return EventTypeStatisticsUpdate }
func (StatisticsUpdateEvent) DisplayPriority() int { return 2 }

// RecordEvent is the generic variant used when importing flat backend records
// whose payload schema is not known locally. Only the common fields survive;
// everything else rides in Metadata.
type RecordEvent struct {
	Base
	Tag      EventType
	Priority int
}

func (r RecordEvent) Type() EventType      { return r.Tag }
func (r RecordEvent) DisplayPriority() int { return r.Priority }
