package engagement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidecast/sidecast/go/internal/models"
	"github.com/sidecast/sidecast/go/internal/participation"
	"github.com/sidecast/sidecast/go/internal/videosync"
)

// fakeRepo is an in-memory Repository with scriptable failures.
type fakeRepo struct {
	polls    []models.Poll
	contests []models.Contest

	loadPollsErr error
	voteErr      error
	entryErr     error

	votes   []string
	entries []string
}

func (f *fakeRepo) LoadPolls(ctx context.Context, bc models.BroadcastContext) ([]models.Poll, error) {
	if f.loadPollsErr != nil {
		return nil, f.loadPollsErr
	}
	return f.polls, nil
}

func (f *fakeRepo) LoadContests(ctx context.Context, bc models.BroadcastContext) ([]models.Contest, error) {
	return f.contests, nil
}

func (f *fakeRepo) SubmitPollVote(ctx context.Context, pollID, optionID string, bc models.BroadcastContext) error {
	if f.voteErr != nil {
		return f.voteErr
	}
	f.votes = append(f.votes, pollID+"/"+optionID)
	return nil
}

func (f *fakeRepo) SubmitContestEntry(ctx context.Context, contestID string, answers map[string]string, bc models.BroadcastContext) error {
	if f.entryErr != nil {
		return f.entryErr
	}
	f.entries = append(f.entries, contestID)
	return nil
}

type memStore struct{}

func (memStore) LoadPollVotes(ctx context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}
func (memStore) LoadContestEntries(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}
func (memStore) UpsertPollVote(ctx context.Context, pollID, optionID string) error { return nil }
func (memStore) InsertContestEntry(ctx context.Context, contestID string) error    { return nil }
func (memStore) DeleteAll(ctx context.Context) error                               { return nil }

func newTestService(t *testing.T, repo Repository) (*Service, *videosync.Manager) {
	t.Helper()
	ledger, err := participation.NewLedger(context.Background(), memStore{})
	require.NoError(t, err)
	syncMgr := videosync.NewManager(clockwork.NewFakeClock())
	return NewService(repo, syncMgr, ledger), syncMgr
}

func activePoll(id string) models.Poll {
	return models.Poll{
		ID:          id,
		BroadcastID: "match-1",
		Question:    "Man of the match?",
		Options: []models.PollOption{
			{ID: "optA", Text: "A. Diallo"},
			{ID: "optB", Text: "B. Mbeumo"},
		},
		IsActive: true,
	}
}

func broadcast() models.BroadcastContext {
	return models.BroadcastContext{BroadcastID: "match-1"}
}

func TestLoadEngagementCachesPollsAndContests(t *testing.T) {
	repo := &fakeRepo{
		polls:    []models.Poll{activePoll("p1")},
		contests: []models.Contest{{ID: "c1", BroadcastID: "match-1", IsActive: true}},
	}
	svc, _ := newTestService(t, repo)

	svc.LoadEngagement(context.Background(), broadcast())

	require.Len(t, svc.Polls(broadcast()), 1)
	require.Len(t, svc.Contests(broadcast()), 1)
	require.Len(t, svc.ActivePolls(broadcast()), 1)
}

func TestLoadFailureKeepsPreviousCache(t *testing.T) {
	repo := &fakeRepo{polls: []models.Poll{activePoll("p1")}}
	svc, _ := newTestService(t, repo)
	svc.LoadEngagement(context.Background(), broadcast())
	require.Len(t, svc.Polls(broadcast()), 1)

	repo.loadPollsErr = errors.New("backend down")
	svc.LoadEngagement(context.Background(), broadcast())

	assert.Len(t, svc.Polls(broadcast()), 1)
}

// gatedRepo serves a different poll list per LoadPolls call and can hold the
// first call open, so tests can interleave overlapping loads.
type gatedRepo struct {
	mu      sync.Mutex
	calls   int
	byCall  [][]models.Poll
	started chan struct{}
	release chan struct{}
}

func (g *gatedRepo) LoadPolls(ctx context.Context, bc models.BroadcastContext) ([]models.Poll, error) {
	g.mu.Lock()
	n := g.calls
	g.calls++
	g.mu.Unlock()
	if n == 0 {
		g.started <- struct{}{}
		<-g.release
	}
	return g.byCall[n], nil
}

func (g *gatedRepo) LoadContests(ctx context.Context, bc models.BroadcastContext) ([]models.Contest, error) {
	return nil, nil
}

func (g *gatedRepo) SubmitPollVote(ctx context.Context, pollID, optionID string, bc models.BroadcastContext) error {
	return nil
}

func (g *gatedRepo) SubmitContestEntry(ctx context.Context, contestID string, answers map[string]string, bc models.BroadcastContext) error {
	return nil
}

func TestOverlappingLoadsKeepNewestPolls(t *testing.T) {
	repo := &gatedRepo{
		byCall:  [][]models.Poll{{activePoll("old")}, {activePoll("new")}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		svc.LoadEngagement(ctx, broadcast())
		close(done)
	}()
	<-repo.started

	// A second load starts and finishes while the first response is still in
	// flight; the first response must not clobber it.
	svc.LoadEngagement(ctx, broadcast())

	close(repo.release)
	<-done

	polls := svc.Polls(broadcast())
	require.Len(t, polls, 1)
	assert.Equal(t, "new", polls[0].ID)
}

func TestLoadEngagementRecordsBroadcastStartTime(t *testing.T) {
	start := time.Date(2025, 8, 16, 17, 30, 0, 0, time.UTC)
	poll := activePoll("p1")
	poll.BroadcastStartTime = &start
	repo := &fakeRepo{polls: []models.Poll{poll}}
	svc, syncMgr := newTestService(t, repo)

	svc.LoadEngagement(context.Background(), broadcast())

	got, ok := syncMgr.BroadcastStartTime("match-1")
	require.True(t, ok)
	assert.Equal(t, start, got)
}

func TestVoteValidationOrder(t *testing.T) {
	repo := &fakeRepo{polls: []models.Poll{activePoll("p1")}}
	svc, _ := newTestService(t, repo)
	svc.LoadEngagement(context.Background(), broadcast())
	ctx := context.Background()

	// Unknown poll fails before anything else
	err := svc.VoteInPoll(ctx, "missing", "optA", broadcast())
	require.ErrorIs(t, err, ErrPollNotFound)
	assert.Empty(t, repo.votes)

	// Closed poll fails before the ledger check
	closed := activePoll("p2")
	closed.IsActive = false
	repo.polls = append(repo.polls, closed)
	svc.LoadEngagement(ctx, broadcast())
	err = svc.VoteInPoll(ctx, "p2", "optA", broadcast())
	require.ErrorIs(t, err, ErrPollClosed)
	assert.Empty(t, repo.votes)

	// First vote succeeds, second hits the ledger
	require.NoError(t, svc.VoteInPoll(ctx, "p1", "optA", broadcast()))
	require.Len(t, repo.votes, 1)
	err = svc.VoteInPoll(ctx, "p1", "optB", broadcast())
	require.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Len(t, repo.votes, 1)
}

func TestVoteBackendFailureRecordsNothing(t *testing.T) {
	repo := &fakeRepo{polls: []models.Poll{activePoll("p1")}, voteErr: errors.New("503")}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	svc.LoadEngagement(ctx, broadcast())

	err := svc.VoteInPoll(ctx, "p1", "optA", broadcast())
	require.ErrorIs(t, err, ErrVoteFailed)

	assert.False(t, svc.HasVotedInPoll("p1"))

	// The viewer can retry once the backend recovers
	repo.voteErr = nil
	require.NoError(t, svc.VoteInPoll(ctx, "p1", "optA", broadcast()))
	assert.True(t, svc.HasVotedInPoll("p1"))
}

func TestOptimisticResultsBumpAfterVote(t *testing.T) {
	repo := &fakeRepo{polls: []models.Poll{activePoll("p1")}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	svc.LoadEngagement(ctx, broadcast())

	svc.UpdatePollResults("p1", models.PollResults{
		PollID:     "p1",
		TotalVotes: 3,
		Options: []models.PollOptionResults{
			{OptionID: "optA", VoteCount: 2},
			{OptionID: "optB", VoteCount: 1},
		},
	})

	require.NoError(t, svc.VoteInPoll(ctx, "p1", "optB", broadcast()))

	results, ok := svc.PollResults("p1")
	require.True(t, ok)
	assert.Equal(t, 4, results.TotalVotes)
	assert.Equal(t, 2, results.Options[0].VoteCount)
	assert.Equal(t, 2, results.Options[1].VoteCount)
	assert.InDelta(t, 50.0, results.Options[0].Percentage, 0.01)
	assert.InDelta(t, 50.0, results.Options[1].Percentage, 0.01)
}

func TestVoteWithoutCachedResultsSkipsBump(t *testing.T) {
	repo := &fakeRepo{polls: []models.Poll{activePoll("p1")}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	svc.LoadEngagement(ctx, broadcast())

	require.NoError(t, svc.VoteInPoll(ctx, "p1", "optA", broadcast()))

	_, ok := svc.PollResults("p1")
	assert.False(t, ok)
}

func TestParticipateInContest(t *testing.T) {
	repo := &fakeRepo{contests: []models.Contest{{ID: "c1", BroadcastID: "match-1", IsActive: true}}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	svc.LoadEngagement(ctx, broadcast())

	err := svc.ParticipateInContest(ctx, "missing", nil, broadcast())
	require.ErrorIs(t, err, ErrContestNotFound)

	require.NoError(t, svc.ParticipateInContest(ctx, "c1", map[string]string{"q1": "a"}, broadcast()))
	assert.True(t, svc.HasParticipatedInContest("c1"))
	assert.Equal(t, []string{"c1"}, repo.entries)

	repo.entryErr = errors.New("503")
	err = svc.ParticipateInContest(ctx, "c1", nil, broadcast())
	require.ErrorIs(t, err, ErrParticipationFailed)
}
