// Package simulation is a deterministic stand-in for a live match feed. It
// replays a fixed fixture script into the timeline and advances a simulated
// match clock, one minute every ten real seconds.
package simulation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/sidecast/sidecast/go/internal/timeline"
)

// tickInterval is how much real time passes per simulated match minute.
const tickInterval = 10 * time.Second

// matchDuration is the last simulated minute.
const matchDuration = 90

// TimelineSink receives the timeline events the producer materializes.
// *timeline.Store satisfies it directly.
type TimelineSink interface {
	AddEvent(ev timeline.TimelineEvent)
}

// Manager drives the simulated match. The clock is injected so tests can run
// the whole fixture on a fake clock.
type Manager struct {
	clock  clockwork.Clock
	sink   TimelineSink
	script []MatchEvent

	mu            sync.Mutex
	currentMinute int
	homeScore     int
	awayScore     int
	events        []MatchEvent
	playing       bool
	stopCh        chan struct{}
}

// NewManager returns a stopped simulation that will feed the given sink.
// A nil sink is allowed; events are then kept locally only.
func NewManager(clock clockwork.Clock, sink TimelineSink) *Manager {
	return &Manager{
		clock:  clock,
		sink:   sink,
		script: defaultScript,
	}
}

// StartSimulation seeds the event feed from the script (once — restarting
// after a stop without a reset must not duplicate events), forwards the
// scripted goals, cards and substitutions into the timeline, and starts the
// minute ticker. No-op when already running.
func (m *Manager) StartSimulation() {
	m.mu.Lock()
	if m.playing {
		m.mu.Unlock()
		return
	}
	m.playing = true

	var seeded []MatchEvent
	if len(m.events) == 0 {
		for _, entry := range m.script {
			ev := entry
			ev.ID = uuid.New()
			m.events = append(m.events, ev)
			seeded = append(seeded, ev)
		}
	}

	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.mu.Unlock()

	// Forward outside the lock: the sink may publish over the network, and
	// state reads must not block behind it.
	if len(seeded) > 0 {
		for _, ev := range seeded {
			m.forwardToTimeline(ev)
		}
		log.Info().Int("events", len(seeded)).Msg("seeded match script")
	}

	ticker := m.clock.NewTicker(tickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				m.tick()
			case <-stopCh:
				return
			}
		}
	}()
}

// tick advances the simulated clock one minute and recomputes the score.
func (m *Manager) tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return
	}
	if m.currentMinute >= matchDuration {
		m.stopLocked()
		return
	}
	m.currentMinute++
	m.recomputeScoreLocked()
}

// recomputeScoreLocked derives the score from the goals at or before the
// current minute, so a reset clock replays the scoreline faithfully.
func (m *Manager) recomputeScoreLocked() {
	home, away := 0, 0
	for _, ev := range m.events {
		if ev.Type != EventGoal || ev.Minute > m.currentMinute {
			continue
		}
		if ev.Team == timeline.TeamHome {
			home++
		} else {
			away++
		}
	}
	m.homeScore = home
	m.awayScore = away
}

// PauseSimulation cancels the ticker but keeps the clock and feed.
func (m *Manager) PauseSimulation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// StopSimulation cancels the ticker and clears the playing flag.
func (m *Manager) StopSimulation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.playing = false
}

// ResetSimulation stops the clock and zeroes all state, including the seeded
// feed, so the next start reseeds the script.
func (m *Manager) ResetSimulation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.currentMinute = 0
	m.homeScore = 0
	m.awayScore = 0
	m.events = nil
}

// CurrentMinute returns the simulated match minute.
func (m *Manager) CurrentMinute() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentMinute
}

// IsPlaying reports whether the ticker is running.
func (m *Manager) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Events returns a snapshot of the seeded feed.
func (m *Manager) Events() []MatchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MatchEvent, len(m.events))
	copy(out, m.events)
	return out
}

// CurrentScore formats the score as "home-away".
func (m *Manager) CurrentScore() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("%d-%d", m.homeScore, m.awayScore)
}

// forwardToTimeline maps a feed event onto its timeline variant. Only goals,
// cards and substitutions are forwarded; kickoff, half time and full time stay
// in the raw feed.
func (m *Manager) forwardToTimeline(ev MatchEvent) {
	if m.sink == nil {
		return
	}
	base := timeline.Base{ID: ev.ID.String(), VideoTime: float64(ev.Minute * 60)}
	switch ev.Type {
	case EventGoal:
		m.sink.AddEvent(timeline.MatchGoalEvent{
			Base:   base,
			Player: ev.Player,
			Team:   ev.Team,
			Score:  ev.Score,
		})
	case EventYellowCard, EventRedCard:
		card := timeline.CardYellow
		if ev.Type == EventRedCard {
			card = timeline.CardRed
		}
		m.sink.AddEvent(timeline.MatchCardEvent{
			Base:     base,
			Player:   ev.Player,
			Team:     ev.Team,
			CardType: card,
			Reason:   ev.Description,
		})
	case EventSubstitution:
		m.sink.AddEvent(timeline.MatchSubstitutionEvent{
			Base:      base,
			PlayerIn:  ev.PlayerOn,
			PlayerOut: ev.PlayerOff,
			Team:      ev.Team,
		})
	}
}
