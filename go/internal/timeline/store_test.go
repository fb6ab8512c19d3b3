package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goalAt(id string, ts float64) MatchGoalEvent {
	return MatchGoalEvent{
		Base:   Base{ID: id, VideoTime: ts},
		Player: "A. Diallo",
		Team:   TeamHome,
		Score:  "1-0",
	}
}

func chatAt(id string, ts float64) ChatMessageEvent {
	return ChatMessageEvent{
		Base:     Base{ID: id, VideoTime: ts},
		Username: "viewer",
		Text:     "what a match",
	}
}

func TestAddEventsKeepsAscendingOrder(t *testing.T) {
	s := NewStore()
	s.AddEvent(goalAt("g2", 600))
	s.AddEvent(chatAt("c1", 30))
	s.AddEvent(goalAt("g1", 300))

	all := s.AllEvents()
	require.Len(t, all, 3)
	assert.Equal(t, "c1", all[0].ID)
	assert.Equal(t, "g1", all[1].ID)
	assert.Equal(t, "g2", all[2].ID)
}

func TestRemoveEventDropsAllWithID(t *testing.T) {
	s := NewStore()
	s.AddEvent(chatAt("dup", 10))
	s.AddEvent(chatAt("dup", 20))
	s.AddEvent(chatAt("keep", 30))

	s.RemoveEvent("dup")

	all := s.AllEvents()
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].ID)

	// Removing an absent id is a no-op
	s.RemoveEvent("missing")
	assert.Len(t, s.AllEvents(), 1)
}

func TestClearAllEventsLeavesClockUntouched(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(1200)
	s.UpdateVideoTime(900)
	s.AddEvent(chatAt("c1", 30))

	s.ClearAllEvents()

	assert.Empty(t, s.AllEvents())
	assert.Equal(t, 900.0, s.CurrentVideoTime())
	assert.Equal(t, 1200.0, s.LiveVideoTime())
}

func TestUpdateVideoTimeClampedToLiveEdge(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(600)

	s.UpdateVideoTime(5000)
	assert.Equal(t, 600.0, s.CurrentVideoTime())

	s.UpdateVideoTime(-5000)
	assert.Equal(t, -PreMatchDuration, s.CurrentVideoTime())
}

func TestUpdateLiveTimeClampedToMatchDuration(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(TotalMatchDuration + 500)
	assert.Equal(t, TotalMatchDuration, s.LiveVideoTime())

	s.UpdateLiveTime(-100)
	assert.Equal(t, 0.0, s.LiveVideoTime())
}

func TestLiveViewerFollowsAdvancingEdge(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(1000)
	s.GoToLive()
	require.True(t, s.IsLive())

	// A jump past the live window still carries a live viewer along
	s.UpdateLiveTime(1030)
	assert.Equal(t, 1030.0, s.CurrentVideoTime())
	assert.True(t, s.IsLive())
}

func TestScrubbedBackViewerKeepsPosition(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(1000)
	s.UpdateVideoTime(400)

	s.UpdateLiveTime(1030)

	assert.Equal(t, 400.0, s.CurrentVideoTime())
	assert.False(t, s.IsLive())
	assert.Equal(t, 630.0, s.TimeBehindLive())
}

func TestLiveEdgeRegressionClampsPlayhead(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(1000)
	s.UpdateVideoTime(900)

	// Edge moves backwards below the playhead; playhead may not exceed it
	s.UpdateLiveTime(800)

	assert.Equal(t, 800.0, s.CurrentVideoTime())
}

func TestVisibleEventsOrderedNewestFirstThenPriority(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(2000)
	s.AddEvent(chatAt("c1", 100))
	s.AddEvent(goalAt("g1", 500))
	// Simultaneous events: goal (priority 10) outranks chat (priority 1)
	s.AddEvent(chatAt("c2", 500))
	s.AddEvent(goalAt("future", 1500))

	s.UpdateVideoTime(500)

	visible := s.VisibleEvents()
	require.Len(t, visible, 3)
	assert.Equal(t, "g1", visible[0].ID)
	assert.Equal(t, "c2", visible[1].ID)
	assert.Equal(t, "c1", visible[2].ID)
}

func TestScrubBackHidesLaterEvents(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(1200)
	s.AddEvent(goalAt("goal13", 780))
	s.AddEvent(MatchCardEvent{
		Base:     Base{ID: "card18", VideoTime: 1080},
		Player:   "Casemiro",
		Team:     TeamHome,
		CardType: CardYellow,
	})
	s.GoToLive()
	require.Len(t, s.VisibleEvents(), 2)

	s.UpdateVideoTime(900)

	visible := s.VisibleEvents()
	require.Len(t, visible, 1)
	assert.Equal(t, "goal13", visible[0].ID)
}

func TestMatchPhaseBoundaries(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(TotalMatchDuration)

	cases := []struct {
		seconds float64
		phase   MatchPhase
	}{
		{-1, PhasePreMatch},
		{0, PhaseFirstHalf},
		{2699, PhaseFirstHalf},
		{2700, PhaseHalfTime},
		{3599, PhaseHalfTime},
		{3600, PhaseSecondHalf},
		{6299, PhaseSecondHalf},
		{6300, PhasePostMatch},
	}
	for _, tc := range cases {
		s.UpdateVideoTime(tc.seconds)
		assert.Equal(t, tc.phase, s.CurrentMatchPhase(), "at %v seconds", tc.seconds)
	}
}

func TestIsLiveWindow(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(1000)

	s.UpdateVideoTime(996)
	assert.True(t, s.IsLive())

	s.UpdateVideoTime(995)
	assert.False(t, s.IsLive())
}

func TestDisplayTime(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(TotalMatchDuration)

	s.UpdateVideoTime(754)
	assert.Equal(t, "12:34", s.DisplayTime())

	s.JumpToMinute(45)
	assert.Equal(t, "45:00", s.DisplayTime())
	assert.Equal(t, 45, s.CurrentMinute())
}

func TestEventsOfTypeAndCategory(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(2000)
	s.AddEvent(goalAt("g1", 500))
	s.AddEvent(chatAt("c1", 600))
	s.AddEvent(TweetEvent{Base: Base{ID: "t1", VideoTime: 700}, AuthorHandle: "@mufc"})
	s.GoToLive()

	goals := s.EventsOfType(EventTypeMatchGoal)
	require.Len(t, goals, 1)
	assert.Equal(t, "g1", goals[0].ID)

	social := s.EventsOfCategory(CategorySocial)
	require.Len(t, social, 2)

	match := s.EventsOfCategory(CategoryMatch)
	require.Len(t, match, 1)
}

func TestTypedVisibleAccessors(t *testing.T) {
	s := NewStore()
	s.UpdateLiveTime(2000)
	s.AddEvent(goalAt("g1", 500))
	s.AddEvent(chatAt("c1", 600))
	s.GoToLive()

	goals := s.VisibleMatchGoals()
	require.Len(t, goals, 1)
	assert.Equal(t, "A. Diallo", goals[0].Player)

	chats := s.VisibleChatMessages()
	require.Len(t, chats, 1)
	assert.Equal(t, "viewer", chats[0].Username)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := NewStore()
	s.AddEvent(goalAt("g1", 780))
	s.AddEvent(chatAt("c1", 30))

	data, err := s.ExportEvents()
	require.NoError(t, err)

	restored := NewStore()
	require.NoError(t, restored.ImportEvents(data))

	all := restored.AllEvents()
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0].ID)
	assert.Equal(t, EventTypeChatMessage, all[0].Type)
	assert.Equal(t, "g1", all[1].ID)
	assert.Equal(t, EventTypeMatchGoal, all[1].Type)
	assert.Equal(t, 780.0, all[1].VideoTimestamp)
}

func TestImportRejectsMalformedData(t *testing.T) {
	s := NewStore()
	err := s.ImportEvents([]byte(`{"not":"an array"`))
	require.Error(t, err)
	assert.Empty(t, s.AllEvents())
}
