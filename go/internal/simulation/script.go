package simulation

import (
	"github.com/google/uuid"

	"github.com/sidecast/sidecast/go/internal/timeline"
)

// MatchEventType tags the raw feed events the producer emits.
type MatchEventType string

const (
	EventKickOff      MatchEventType = "kickoff"
	EventGoal         MatchEventType = "goal"
	EventYellowCard   MatchEventType = "yellow_card"
	EventRedCard      MatchEventType = "red_card"
	EventSubstitution MatchEventType = "substitution"
	EventHalfTime     MatchEventType = "half_time"
	EventFullTime     MatchEventType = "full_time"
)

// MatchEvent is one raw event from the (simulated) match feed.
type MatchEvent struct {
	ID          uuid.UUID
	Minute      int
	Type        MatchEventType
	Player      string
	PlayerOn    string
	PlayerOff   string
	Team        timeline.TeamSide
	Description string
	Score       string
}

// defaultScript is the fixed fixture the simulation replays: a 3-1 home win
// with the usual beats (kickoff, goals, cards, substitutions, half time,
// full time). Minutes are match minutes; IDs are assigned when the script is
// materialized.
var defaultScript = []MatchEvent{
	{Minute: 0, Type: EventKickOff, Team: timeline.TeamHome, Score: "0-0"},
	{Minute: 5, Type: EventSubstitution, Player: "A. Scott", PlayerOn: "A. Scott", PlayerOff: "T. Adams", Team: timeline.TeamAway},
	{Minute: 13, Type: EventGoal, Player: "A. Diallo", Team: timeline.TeamHome, Score: "1-0"},
	{Minute: 18, Type: EventYellowCard, Player: "Casemiro", Team: timeline.TeamHome},
	{Minute: 25, Type: EventYellowCard, Player: "M. Tavernier", Team: timeline.TeamAway},
	{Minute: 32, Type: EventGoal, Player: "B. Mbeumo", Team: timeline.TeamHome, Score: "2-0"},
	{Minute: 45, Type: EventHalfTime, Team: timeline.TeamHome, Score: "2-0"},
	{Minute: 47, Type: EventGoal, Player: "J. Kluivert", Team: timeline.TeamAway, Score: "2-1"},
	{Minute: 58, Type: EventSubstitution, Player: "Bruno Fernandes", PlayerOn: "Bruno Fernandes", PlayerOff: "A. Diallo", Team: timeline.TeamHome},
	{Minute: 65, Type: EventYellowCard, Player: "Álex Jiménez", Team: timeline.TeamAway},
	{Minute: 72, Type: EventGoal, Player: "Matheus Cunha", Team: timeline.TeamHome, Score: "3-1"},
	{Minute: 78, Type: EventSubstitution, Player: "M. Mount", PlayerOn: "M. Mount", PlayerOff: "B. Mbeumo", Team: timeline.TeamHome},
	{Minute: 85, Type: EventRedCard, Player: "T. Adams", Team: timeline.TeamAway},
	{Minute: 90, Type: EventFullTime, Team: timeline.TeamHome, Score: "3-1"},
}
