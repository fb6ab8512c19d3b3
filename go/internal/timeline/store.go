package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// liveWindow is how close (seconds) the playhead must be to the live edge to
// count as watching live.
const liveWindow = 5

// Store holds every timeline event for one broadcast together with the
// playback clock: the viewer's position (current video time) and the live
// edge. All mutations serialize through one mutex so no reader ever observes
// a partially sorted list or a mid-update clock; reads return snapshots.
//
// Clock invariants, enforced on every update:
//
//	-PreMatchDuration <= currentVideoTime <= liveVideoTime
//	0 <= liveVideoTime <= TotalMatchDuration
//
// Events are kept sorted ascending by video timestamp after every mutation.
// Duplicate ids are permitted and not merged on insert; RemoveEvent drops
// every event carrying the id.
type Store struct {
	mu               sync.RWMutex
	events           []Event
	currentVideoTime float64
	liveVideoTime    float64
}

// NewStore returns an empty store with both clocks at kickoff.
func NewStore() *Store {
	return &Store{}
}

// AddEvent wraps and inserts a single event.
func (s *Store) AddEvent(ev TimelineEvent) {
	s.AddWrappedEvents([]Event{Wrap(ev)})
}

// AddEvents wraps and inserts a batch of events.
func (s *Store) AddEvents(evs []TimelineEvent) {
	wrapped := make([]Event, 0, len(evs))
	for _, ev := range evs {
		wrapped = append(wrapped, Wrap(ev))
	}
	s.AddWrappedEvents(wrapped)
}

// AddWrappedEvents inserts pre-wrapped events and restores the ascending
// timestamp order.
func (s *Store) AddWrappedEvents(evs []Event) {
	if len(evs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evs...)
	sortAscending(s.events)
}

// RemoveEvent drops every event with the given id. No-op if absent.
func (s *Store) RemoveEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, e := range s.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
}

// ClearAllEvents empties the store. The clock is left untouched.
func (s *Store) ClearAllEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// UpdateVideoTime moves the viewer's playhead. This is the scrub/seek entry
// point; the value is clamped to [-PreMatchDuration, liveVideoTime].
func (s *Store) UpdateVideoTime(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentVideoTime = clamp(seconds, -PreMatchDuration, s.liveVideoTime)
}

// UpdateLiveTime advances the live edge, clamped to [0, TotalMatchDuration].
// A viewer watching at the live edge is carried along to the new edge; a
// viewer who scrubbed back keeps their position.
func (s *Store) UpdateLiveTime(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasLive := s.isLiveLocked()
	s.liveVideoTime = clamp(seconds, 0, TotalMatchDuration)
	if wasLive || s.currentVideoTime > s.liveVideoTime {
		s.currentVideoTime = s.liveVideoTime
	}
}

// JumpToMinute seeks to the start of the given match minute.
func (s *Store) JumpToMinute(minute int) {
	s.UpdateVideoTime(float64(minute) * 60)
}

// GoToLive snaps the playhead to the live edge.
func (s *Store) GoToLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentVideoTime = s.liveVideoTime
}

// CurrentVideoTime returns the viewer's position in video-relative seconds.
func (s *Store) CurrentVideoTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentVideoTime
}

// LiveVideoTime returns the live edge in video-relative seconds.
func (s *Store) LiveVideoTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveVideoTime
}

// CurrentMinute is the viewer's position in whole match minutes.
func (s *Store) CurrentMinute() int {
	return int(s.CurrentVideoTime() / 60)
}

// LiveMinute is the live edge in whole match minutes.
func (s *Store) LiveMinute() int {
	return int(s.LiveVideoTime() / 60)
}

// DisplayTime formats the viewer's position as m:ss.
func (s *Store) DisplayTime() string {
	t := s.CurrentVideoTime()
	return fmt.Sprintf("%d:%02d", int(t)/60, abs(int(t)%60))
}

// IsLive reports whether the viewer is within the live window of the edge.
func (s *Store) IsLive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLiveLocked()
}

func (s *Store) isLiveLocked() bool {
	return math.Abs(s.currentVideoTime-s.liveVideoTime) < liveWindow
}

// TimeBehindLive is how many seconds the viewer trails the live edge.
func (s *Store) TimeBehindLive() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return math.Max(0, s.liveVideoTime-s.currentVideoTime)
}

// AllEvents returns a snapshot of every event in ascending timestamp order.
func (s *Store) AllEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// VisibleEvents returns the events at or before the viewer's position, most
// recent first; simultaneous events are ordered by display priority. This is
// deliberately the reverse of storage order: storage stays ascending for range
// scans and monotonic export, while display surfaces the newest and most
// important events first.
func (s *Store) VisibleEvents() []Event {
	s.mu.RLock()
	var visible []Event
	for _, e := range s.events {
		if e.VideoTimestamp <= s.currentVideoTime {
			visible = append(visible, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].VideoTimestamp == visible[j].VideoTimestamp {
			return visible[i].DisplayPriority > visible[j].DisplayPriority
		}
		return visible[i].VideoTimestamp > visible[j].VideoTimestamp
	})
	return visible
}

// CurrentMatchPhase derives the match phase from the viewer's position.
func (s *Store) CurrentMatchPhase() MatchPhase {
	t := s.CurrentVideoTime()
	switch {
	case t < 0:
		return PhasePreMatch
	case t < FirstHalfDuration:
		return PhaseFirstHalf
	case t < FirstHalfDuration+HalfTimeDuration:
		return PhaseHalfTime
	case t < FirstHalfDuration+HalfTimeDuration+SecondHalfDuration:
		return PhaseSecondHalf
	default:
		return PhasePostMatch
	}
}

// EventsOfType filters the visible events by tag.
func (s *Store) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range s.VisibleEvents() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// EventsOfCategory filters the visible events by category.
func (s *Store) EventsOfCategory(c Category) []Event {
	var out []Event
	for _, e := range s.VisibleEvents() {
		if CategoryOf(e.Type) == c {
			out = append(out, e)
		}
	}
	return out
}

// VisibleChatMessages unwraps the visible chat messages.
func (s *Store) VisibleChatMessages() []ChatMessageEvent {
	return unwrapAll[ChatMessageEvent](s.EventsOfType(EventTypeChatMessage))
}

// VisibleMatchGoals unwraps the visible goals.
func (s *Store) VisibleMatchGoals() []MatchGoalEvent {
	return unwrapAll[MatchGoalEvent](s.EventsOfType(EventTypeMatchGoal))
}

// VisiblePolls unwraps the visible poll events.
func (s *Store) VisiblePolls() []PollEvent {
	return unwrapAll[PollEvent](s.EventsOfType(EventTypePoll))
}

// VisibleTweets unwraps the visible tweets.
func (s *Store) VisibleTweets() []TweetEvent {
	return unwrapAll[TweetEvent](s.EventsOfType(EventTypeTweet))
}

// VisibleProducts unwraps the visible product highlights.
func (s *Store) VisibleProducts() []ProductHighlightEvent {
	return unwrapAll[ProductHighlightEvent](s.EventsOfType(EventTypeProductHighlight))
}

// VisibleAdminComments unwraps the visible admin comments.
func (s *Store) VisibleAdminComments() []AdminCommentEvent {
	return unwrapAll[AdminCommentEvent](s.EventsOfType(EventTypeAdminComment))
}

// VisibleAnnouncements unwraps the visible announcements.
func (s *Store) VisibleAnnouncements() []AnnouncementEvent {
	return unwrapAll[AnnouncementEvent](s.EventsOfType(EventTypeAnnouncement))
}

// ExportEvents serializes every stored event as a flat JSON array of
// backend-neutral records, in ascending timestamp order.
func (s *Store) ExportEvents() ([]byte, error) {
	events := s.AllEvents()
	records := make([]ExportRecord, 0, len(events))
	for _, e := range events {
		records = append(records, ExportRecord{
			ID:             e.ID,
			VideoTimestamp: e.VideoTimestamp,
			EventType:      string(e.Type),
			Metadata:       e.Metadata,
		})
	}
	return json.Marshal(records)
}

// ImportEvents loads flat backend records into the store. Payload specifics
// are not reconstructed; each record becomes a RecordEvent carrying the tag
// and metadata, so round-tripping through export is lossless for the common
// fields.
func (s *Store) ImportEvents(data []byte) error {
	var records []ExportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode timeline records: %w", err)
	}
	wrapped := make([]Event, 0, len(records))
	for _, r := range records {
		wrapped = append(wrapped, Wrap(RecordEvent{
			Base: Base{ID: r.ID, VideoTime: r.VideoTimestamp, Metadata: r.Metadata},
			Tag:  EventType(r.EventType),
		}))
	}
	s.AddWrappedEvents(wrapped)
	log.Debug().Int("count", len(wrapped)).Msg("imported timeline records")
	return nil
}

func unwrapAll[T TimelineEvent](events []Event) []T {
	var out []T
	for _, e := range events {
		p, err := PayloadAs[T](e)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortAscending(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].VideoTimestamp < events[j].VideoTimestamp
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
