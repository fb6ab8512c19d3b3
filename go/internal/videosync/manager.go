// Package videosync decides which polls and contests are live at a given
// moment of playback. It keeps its own playhead, fed by the actual video
// player, independent of the timeline store's clock: the two may be driven by
// different signals (scrub UI vs. live player) and are allowed to disagree
// transiently.
package videosync

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/sidecast/sidecast/go/internal/models"
)

// Manager maps wall-clock broadcast start times to video-relative seconds per
// broadcast and evaluates poll/contest activation windows. Safe for concurrent
// use; state mutations serialize through one mutex.
type Manager struct {
	mu                  sync.RWMutex
	clock               clockwork.Clock
	currentVideoTime    *int
	broadcastStartTimes map[string]time.Time
}

// NewManager returns a resolver using the given clock for the wall-clock
// fallback checks. Pass clockwork.NewRealClock() in production.
func NewManager(clock clockwork.Clock) *Manager {
	return &Manager{
		clock:               clock,
		broadcastStartTimes: make(map[string]time.Time),
	}
}

// UpdateVideoTime records the latest playback position reported by the
// player, in video-relative seconds.
func (m *Manager) UpdateVideoTime(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentVideoTime = &seconds
}

// CurrentVideoTime returns the last reported playback position, if any.
func (m *Manager) CurrentVideoTime() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.currentVideoTime == nil {
		return 0, false
	}
	return *m.currentVideoTime, true
}

// SetBroadcastStartTime records the absolute start time of a broadcast.
func (m *Manager) SetBroadcastStartTime(start time.Time, broadcastID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastStartTimes[broadcastID] = start
	log.Debug().Str("broadcast_id", broadcastID).Time("start", start).Msg("set broadcast start time")
}

// BroadcastStartTime returns the recorded start time for a broadcast.
func (m *Manager) BroadcastStartTime(broadcastID string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.broadcastStartTimes[broadcastID]
	return t, ok
}

// ClearBroadcastStartTime forgets the start time for a broadcast.
func (m *Manager) ClearBroadcastStartTime(broadcastID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.broadcastStartTimes, broadcastID)
}

// IsPollActive reports whether a poll should currently be surfaced.
//
// Evaluation order:
//  1. An explicitly deactivated poll is never active.
//  2. When the poll carries video-relative bounds and a video time is known,
//     the window check wins: videoStartTime <= t < videoEndTime. Video bounds
//     are immune to paused, rewound or desynced playback.
//  3. Otherwise fall back to the wall clock: active while now < endTime. Only
//     the end boundary is checked.
//  4. With no bounds at all, the isActive flag decides.
//
// videoTime may be nil; the manager's own playhead is used when it is.
func (m *Manager) IsPollActive(poll models.Poll, videoTime *int) bool {
	if !poll.IsActive {
		return false
	}
	t := m.resolveVideoTime(videoTime)
	if poll.VideoStartTime != nil && poll.VideoEndTime != nil && t != nil {
		return *t >= *poll.VideoStartTime && *t < *poll.VideoEndTime
	}
	if poll.EndTime != nil {
		return m.clock.Now().Before(*poll.EndTime)
	}
	return poll.IsActive
}

// IsContestActive reports whether a contest should currently be surfaced.
// Same decision policy as IsPollActive.
func (m *Manager) IsContestActive(contest models.Contest, videoTime *int) bool {
	if !contest.IsActive {
		return false
	}
	t := m.resolveVideoTime(videoTime)
	if contest.VideoStartTime != nil && contest.VideoEndTime != nil && t != nil {
		return *t >= *contest.VideoStartTime && *t < *contest.VideoEndTime
	}
	if contest.EndTime != nil {
		return m.clock.Now().Before(*contest.EndTime)
	}
	return contest.IsActive
}

// ActivePolls filters polls down to the currently active ones.
func (m *Manager) ActivePolls(polls []models.Poll, videoTime *int) []models.Poll {
	t := m.resolveVideoTime(videoTime)
	var out []models.Poll
	for _, p := range polls {
		if m.IsPollActive(p, t) {
			out = append(out, p)
		}
	}
	return out
}

// ActiveContests filters contests down to the currently active ones.
func (m *Manager) ActiveContests(contests []models.Contest, videoTime *int) []models.Contest {
	t := m.resolveVideoTime(videoTime)
	var out []models.Contest
	for _, c := range contests {
		if m.IsContestActive(c, t) {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears all synchronization state. Used on broadcast teardown.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentVideoTime = nil
	m.broadcastStartTimes = make(map[string]time.Time)
}

func (m *Manager) resolveVideoTime(videoTime *int) *int {
	if videoTime != nil {
		return videoTime
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentVideoTime
}
