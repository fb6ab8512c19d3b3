// Package participation keeps the durable record of which polls the viewer
// has voted in and which contests they have entered. The record is the gate
// the engagement flow consults before any vote or entry reaches the backend.
package participation

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store is what the ledger needs from the durable layer. *SQLiteStore
// implements it; tests substitute an in-memory fake.
type Store interface {
	LoadPollVotes(ctx context.Context) (map[string]string, error)
	LoadContestEntries(ctx context.Context) (map[string]struct{}, error)
	UpsertPollVote(ctx context.Context, pollID, optionID string) error
	InsertContestEntry(ctx context.Context, contestID string) error
	DeleteAll(ctx context.Context) error
}

// Ledger is the in-memory participation record backed by a durable Store.
// State is loaded eagerly at construction and persisted synchronously,
// best-effort, on every mutation: a persistence failure is logged and the
// in-memory record keeps the write, so a crash in between can leave the two
// out of sync until the next successful save.
//
// RecordPollVote overwrites an existing vote rather than rejecting it.
// Exactly-once voting is the caller's responsibility: check HasVotedInPoll
// before submitting anything to the backend.
type Ledger struct {
	mu        sync.RWMutex
	store     Store
	pollVotes map[string]string
	contests  map[string]struct{}
}

// NewLedger loads the persisted record and returns a ready ledger.
func NewLedger(ctx context.Context, store Store) (*Ledger, error) {
	votes, err := store.LoadPollVotes(ctx)
	if err != nil {
		return nil, err
	}
	contests, err := store.LoadContestEntries(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("poll_votes", len(votes)).
		Int("contest_entries", len(contests)).
		Msg("loaded participation record")
	return &Ledger{store: store, pollVotes: votes, contests: contests}, nil
}

// HasVotedInPoll reports whether a vote for the poll has been recorded.
func (l *Ledger) HasVotedInPoll(pollID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.pollVotes[pollID]
	return ok
}

// GetVote returns the recorded option for a poll.
func (l *Ledger) GetVote(pollID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	optionID, ok := l.pollVotes[pollID]
	return optionID, ok
}

// RecordPollVote marks the poll as voted and stores the chosen option. A
// repeated call for the same poll overwrites the stored option.
func (l *Ledger) RecordPollVote(ctx context.Context, pollID, optionID string) {
	l.mu.Lock()
	l.pollVotes[pollID] = optionID
	l.mu.Unlock()

	if err := l.store.UpsertPollVote(ctx, pollID, optionID); err != nil {
		log.Error().Err(err).Str("poll_id", pollID).Msg("failed to persist poll vote")
	}
}

// HasParticipatedInContest reports whether an entry for the contest has been
// recorded.
func (l *Ledger) HasParticipatedInContest(contestID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.contests[contestID]
	return ok
}

// RecordContestParticipation marks the contest as entered.
func (l *Ledger) RecordContestParticipation(ctx context.Context, contestID string) {
	l.mu.Lock()
	l.contests[contestID] = struct{}{}
	l.mu.Unlock()

	if err := l.store.InsertContestEntry(ctx, contestID); err != nil {
		log.Error().Err(err).Str("contest_id", contestID).Msg("failed to persist contest entry")
	}
}

// ResetAll wipes the record, in memory and durable. Intended for tests.
func (l *Ledger) ResetAll(ctx context.Context) {
	l.mu.Lock()
	l.pollVotes = make(map[string]string)
	l.contests = make(map[string]struct{})
	l.mu.Unlock()

	if err := l.store.DeleteAll(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear participation record")
	}
}
