package timeline

// EventType tags every timeline event variant. The tag doubles as the wire
// value used by export records and gateway envelopes.
type EventType string

const (
	EventTypeMatchGoal         EventType = "match_goal"
	EventTypeMatchCard         EventType = "match_card"
	EventTypeMatchSubstitution EventType = "match_substitution"
	EventTypeMatchKickOff      EventType = "match_kickoff"
	EventTypeMatchHalfTime     EventType = "match_halftime"
	EventTypeMatchFullTime     EventType = "match_fulltime"
	EventTypeMatchPenalty      EventType = "match_penalty"
	EventTypeChatMessage       EventType = "chat_message"
	EventTypeAdminComment      EventType = "admin_comment"
	EventTypeTweet             EventType = "tweet"
	EventTypeSocialPost        EventType = "social_post"
	EventTypePoll              EventType = "poll"
	EventTypeQuiz              EventType = "quiz"
	EventTypeTrivia            EventType = "trivia"
	EventTypePrediction        EventType = "prediction"
	EventTypeVoting            EventType = "voting"
	EventTypeContest           EventType = "contest"
	EventTypeProductHighlight  EventType = "product_highlight"
	EventTypeOfferBanner       EventType = "offer_banner"
	EventTypeHighlight         EventType = "highlight"
	EventTypeStatisticsUpdate  EventType = "statistics_update"
	EventTypeAnnouncement      EventType = "announcement"
	EventTypeReplay            EventType = "replay"
)

// Category groups event types for coarse filtering in consumers.
type Category string

const (
	CategoryMatch       Category = "match"
	CategorySocial      Category = "social"
	CategoryInteractive Category = "interactive"
	CategoryCommerce    Category = "commerce"
	CategoryContent     Category = "content"
)

// CategoryOf maps an event type to its category. Unknown tags (e.g. events
// imported from a newer backend) fall into CategoryContent.
func CategoryOf(t EventType) Category {
	switch t {
	case EventTypeMatchGoal, EventTypeMatchCard, EventTypeMatchSubstitution,
		EventTypeMatchKickOff, EventTypeMatchHalfTime, EventTypeMatchFullTime,
		EventTypeMatchPenalty:
		return CategoryMatch
	case EventTypeChatMessage, EventTypeAdminComment, EventTypeTweet, EventTypeSocialPost:
		return CategorySocial
	case EventTypePoll, EventTypeQuiz, EventTypeTrivia, EventTypePrediction,
		EventTypeVoting, EventTypeContest:
		return CategoryInteractive
	case EventTypeProductHighlight, EventTypeOfferBanner:
		return CategoryCommerce
	default:
		return CategoryContent
	}
}

// TeamSide identifies which side of the fixture a match event belongs to.
type TeamSide string

const (
	TeamHome TeamSide = "home"
	TeamAway TeamSide = "away"
)

// MatchPhase is the coarse match state derived from the current video time.
type MatchPhase string

const (
	PhasePreMatch   MatchPhase = "pre_match"
	PhaseFirstHalf  MatchPhase = "first_half"
	PhaseHalfTime   MatchPhase = "half_time"
	PhaseSecondHalf MatchPhase = "second_half"
	PhasePostMatch  MatchPhase = "post_match"
)

// Nominal phase durations in video-relative seconds. Video time 0 is kickoff;
// pre-roll time is negative, down to -PreMatchDuration.
const (
	PreMatchDuration   float64 = 900
	FirstHalfDuration  float64 = 2700
	HalfTimeDuration   float64 = 900
	SecondHalfDuration float64 = 2700
	PostMatchDuration  float64 = 900
	TotalMatchDuration float64 = 7200
)
