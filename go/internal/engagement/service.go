// Package engagement owns the per-broadcast poll and contest state: loading
// it from the backend, deciding what is currently active, and running the
// vote/entry flows with their validation gates.
package engagement

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sidecast/sidecast/go/internal/models"
	"github.com/sidecast/sidecast/go/internal/participation"
	"github.com/sidecast/sidecast/go/internal/videosync"
)

// Repository is the backend the service loads from and submits to. The REST
// client in clients/engagement_client implements it.
type Repository interface {
	LoadPolls(ctx context.Context, bc models.BroadcastContext) ([]models.Poll, error)
	LoadContests(ctx context.Context, bc models.BroadcastContext) ([]models.Contest, error)
	SubmitPollVote(ctx context.Context, pollID, optionID string, bc models.BroadcastContext) error
	SubmitContestEntry(ctx context.Context, contestID string, answers map[string]string, bc models.BroadcastContext) error
}

// Service caches polls and contests per broadcast id and gates every
// interaction through the window resolver and the participation ledger.
//
// Loads are last-writer-wins per broadcast id: a generation counter is bumped
// when a load starts, and a response arriving after a newer load began is
// discarded instead of clobbering fresher data. Load failures are logged and
// leave the previous cached lists untouched.
type Service struct {
	repo   Repository
	sync   *videosync.Manager
	ledger *participation.Ledger

	mu                  sync.RWMutex
	pollsByBroadcast    map[string][]models.Poll
	contestsByBroadcast map[string][]models.Contest
	pollResults         map[string]models.PollResults
	loadGen             map[string]uint64
}

// NewService wires the service to its collaborators.
func NewService(repo Repository, syncMgr *videosync.Manager, ledger *participation.Ledger) *Service {
	return &Service{
		repo:                repo,
		sync:                syncMgr,
		ledger:              ledger,
		pollsByBroadcast:    make(map[string][]models.Poll),
		contestsByBroadcast: make(map[string][]models.Contest),
		pollResults:         make(map[string]models.PollResults),
		loadGen:             make(map[string]uint64),
	}
}

// LoadEngagement fetches polls and contests for a broadcast, concurrently,
// and records the broadcast start time into the window resolver. Failures are
// logged, never returned: stale cached data plus a later retry beats erroring
// the caller.
func (s *Service) LoadEngagement(ctx context.Context, bc models.BroadcastContext) {
	if bc.StartTime != nil {
		s.sync.SetBroadcastStartTime(*bc.StartTime, bc.BroadcastID)
	}

	s.mu.Lock()
	s.loadGen[bc.BroadcastID]++
	gen := s.loadGen[bc.BroadcastID]
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loadPolls(ctx, bc, gen)
	}()
	go func() {
		defer wg.Done()
		s.loadContests(ctx, bc, gen)
	}()
	wg.Wait()
}

func (s *Service) loadPolls(ctx context.Context, bc models.BroadcastContext, gen uint64) {
	polls, err := s.repo.LoadPolls(ctx, bc)
	if err != nil {
		log.Error().Err(err).Str("broadcast_id", bc.BroadcastID).Msg("failed to load polls")
		return
	}

	s.mu.Lock()
	if s.loadGen[bc.BroadcastID] != gen {
		s.mu.Unlock()
		log.Debug().Str("broadcast_id", bc.BroadcastID).Msg("discarding stale poll load")
		return
	}
	s.pollsByBroadcast[bc.BroadcastID] = polls
	s.mu.Unlock()

	for _, p := range polls {
		if p.BroadcastStartTime != nil {
			s.sync.SetBroadcastStartTime(*p.BroadcastStartTime, bc.BroadcastID)
			break
		}
	}
	log.Debug().Int("count", len(polls)).Str("broadcast_id", bc.BroadcastID).Msg("loaded polls")
}

func (s *Service) loadContests(ctx context.Context, bc models.BroadcastContext, gen uint64) {
	contests, err := s.repo.LoadContests(ctx, bc)
	if err != nil {
		log.Error().Err(err).Str("broadcast_id", bc.BroadcastID).Msg("failed to load contests")
		return
	}

	s.mu.Lock()
	if s.loadGen[bc.BroadcastID] != gen {
		s.mu.Unlock()
		log.Debug().Str("broadcast_id", bc.BroadcastID).Msg("discarding stale contest load")
		return
	}
	s.contestsByBroadcast[bc.BroadcastID] = contests
	s.mu.Unlock()

	for _, c := range contests {
		if c.BroadcastStartTime != nil {
			s.sync.SetBroadcastStartTime(*c.BroadcastStartTime, bc.BroadcastID)
			break
		}
	}
	log.Debug().Int("count", len(contests)).Str("broadcast_id", bc.BroadcastID).Msg("loaded contests")
}

// Polls returns the cached polls for a broadcast.
func (s *Service) Polls(bc models.BroadcastContext) []models.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Poll(nil), s.pollsByBroadcast[bc.BroadcastID]...)
}

// Contests returns the cached contests for a broadcast.
func (s *Service) Contests(bc models.BroadcastContext) []models.Contest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Contest(nil), s.contestsByBroadcast[bc.BroadcastID]...)
}

// ActivePolls returns the cached polls whose window covers the resolver's
// current video time.
func (s *Service) ActivePolls(bc models.BroadcastContext) []models.Poll {
	return s.sync.ActivePolls(s.Polls(bc), nil)
}

// ActiveContests returns the cached contests whose window covers the
// resolver's current video time.
func (s *Service) ActiveContests(bc models.BroadcastContext) []models.Contest {
	return s.sync.ActiveContests(s.Contests(bc), nil)
}

// HasVotedInPoll exposes the ledger gate to callers.
func (s *Service) HasVotedInPoll(pollID string) bool {
	return s.ledger.HasVotedInPoll(pollID)
}

// HasParticipatedInContest exposes the ledger gate to callers.
func (s *Service) HasParticipatedInContest(contestID string) bool {
	return s.ledger.HasParticipatedInContest(contestID)
}

// VoteInPoll submits a vote. Validation runs before the network call, in
// order: the poll must exist in this broadcast's cache, its window must still
// be open, and the ledger must not already hold a vote. On backend success
// the vote is recorded in the ledger and the local tallies are bumped
// optimistically; on backend failure nothing local changes and ErrVoteFailed
// is returned. Optimistic tallies are not rolled back by anything except a
// later reload.
func (s *Service) VoteInPoll(ctx context.Context, pollID, optionID string, bc models.BroadcastContext) error {
	poll, ok := s.findPoll(bc.BroadcastID, pollID)
	if !ok {
		return ErrPollNotFound
	}
	if !s.sync.IsPollActive(poll, nil) {
		return ErrPollClosed
	}
	if s.ledger.HasVotedInPoll(pollID) {
		return ErrAlreadyVoted
	}

	if err := s.repo.SubmitPollVote(ctx, pollID, optionID, bc); err != nil {
		return fmt.Errorf("%w: %v", ErrVoteFailed, err)
	}

	s.ledger.RecordPollVote(ctx, pollID, optionID)
	s.bumpPollResults(pollID, optionID)
	log.Info().Str("poll_id", pollID).Str("option_id", optionID).Msg("vote recorded")
	return nil
}

// ParticipateInContest submits a contest entry. The contest must exist in
// this broadcast's cache; a backend failure returns ErrParticipationFailed
// with nothing recorded locally.
func (s *Service) ParticipateInContest(ctx context.Context, contestID string, answers map[string]string, bc models.BroadcastContext) error {
	if _, ok := s.findContest(bc.BroadcastID, contestID); !ok {
		return ErrContestNotFound
	}

	if err := s.repo.SubmitContestEntry(ctx, contestID, answers, bc); err != nil {
		return fmt.Errorf("%w: %v", ErrParticipationFailed, err)
	}

	s.ledger.RecordContestParticipation(ctx, contestID)
	log.Info().Str("contest_id", contestID).Msg("contest entry recorded")
	return nil
}

// UpdatePollResults replaces the cached tallies for a poll. This is the entry
// point for pushed result updates.
func (s *Service) UpdatePollResults(pollID string, results models.PollResults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollResults[pollID] = results
}

// PollResults returns the cached tallies for a poll, if any.
func (s *Service) PollResults(pollID string) (models.PollResults, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.pollResults[pollID]
	return r, ok
}

// bumpPollResults applies the optimistic local increment after a successful
// vote. Real tallies arrive later as pushed updates; with no cached results
// there is nothing to bump.
func (s *Service) bumpPollResults(pollID, optionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.pollResults[pollID]
	if !ok {
		return
	}
	total := existing.TotalVotes + 1
	options := make([]models.PollOptionResults, len(existing.Options))
	for i, opt := range existing.Options {
		count := opt.VoteCount
		if opt.OptionID == optionID {
			count++
		}
		options[i] = models.PollOptionResults{
			OptionID:   opt.OptionID,
			VoteCount:  count,
			Percentage: float64(count) / float64(total) * 100,
		}
	}
	s.pollResults[pollID] = models.PollResults{
		PollID:     pollID,
		TotalVotes: total,
		Options:    options,
	}
}

func (s *Service) findPoll(broadcastID, pollID string) (models.Poll, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pollsByBroadcast[broadcastID] {
		if p.ID == pollID {
			return p, true
		}
	}
	return models.Poll{}, false
}

func (s *Service) findContest(broadcastID, contestID string) (models.Contest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contestsByBroadcast[broadcastID] {
		if c.ID == contestID {
			return c, true
		}
	}
	return models.Contest{}, false
}
