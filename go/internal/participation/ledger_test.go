package participation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with optional write failure.
type fakeStore struct {
	votes    map[string]string
	contests map[string]struct{}
	failing  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		votes:    make(map[string]string),
		contests: make(map[string]struct{}),
	}
}

func (f *fakeStore) LoadPollVotes(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(f.votes))
	for k, v := range f.votes {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) LoadContestEntries(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(f.contests))
	for k := range f.contests {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) UpsertPollVote(ctx context.Context, pollID, optionID string) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.votes[pollID] = optionID
	return nil
}

func (f *fakeStore) InsertContestEntry(ctx context.Context, contestID string) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.contests[contestID] = struct{}{}
	return nil
}

func (f *fakeStore) DeleteAll(ctx context.Context) error {
	f.votes = make(map[string]string)
	f.contests = make(map[string]struct{})
	return nil
}

func TestRecordPollVoteOverwrites(t *testing.T) {
	ctx := context.Background()
	ledger, err := NewLedger(ctx, newFakeStore())
	require.NoError(t, err)

	ledger.RecordPollVote(ctx, "p1", "optA")
	require.True(t, ledger.HasVotedInPoll("p1"))

	ledger.RecordPollVote(ctx, "p1", "optB")

	vote, ok := ledger.GetVote("p1")
	require.True(t, ok)
	assert.Equal(t, "optB", vote)
	assert.True(t, ledger.HasVotedInPoll("p1"))
}

func TestUnknownKeysReportNothing(t *testing.T) {
	ctx := context.Background()
	ledger, err := NewLedger(ctx, newFakeStore())
	require.NoError(t, err)

	assert.False(t, ledger.HasVotedInPoll("p1"))
	_, ok := ledger.GetVote("p1")
	assert.False(t, ok)
	assert.False(t, ledger.HasParticipatedInContest("c1"))
}

func TestContestParticipation(t *testing.T) {
	ctx := context.Background()
	ledger, err := NewLedger(ctx, newFakeStore())
	require.NoError(t, err)

	ledger.RecordContestParticipation(ctx, "c1")
	assert.True(t, ledger.HasParticipatedInContest("c1"))

	// Re-recording is harmless
	ledger.RecordContestParticipation(ctx, "c1")
	assert.True(t, ledger.HasParticipatedInContest("c1"))
}

func TestPersistFailureKeepsInMemoryWrite(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	ledger, err := NewLedger(ctx, store)
	require.NoError(t, err)

	store.failing = true
	ledger.RecordPollVote(ctx, "p1", "optA")

	assert.True(t, ledger.HasVotedInPoll("p1"))
	assert.Empty(t, store.votes)
}

func TestResetAllClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	ledger, err := NewLedger(ctx, store)
	require.NoError(t, err)

	ledger.RecordPollVote(ctx, "p1", "optA")
	ledger.RecordContestParticipation(ctx, "c1")

	ledger.ResetAll(ctx)

	assert.False(t, ledger.HasVotedInPoll("p1"))
	assert.False(t, ledger.HasParticipatedInContest("c1"))
	assert.Empty(t, store.votes)
	assert.Empty(t, store.contests)
}

func TestLedgerSurvivesRestartWithSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "participation.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)

	ledger, err := NewLedger(ctx, store)
	require.NoError(t, err)
	ledger.RecordPollVote(ctx, "p1", "optA")
	ledger.RecordPollVote(ctx, "p1", "optB")
	ledger.RecordContestParticipation(ctx, "c1")
	require.NoError(t, store.Close())

	// Reopen as a fresh process would
	store, err = OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	ledger, err = NewLedger(ctx, store)
	require.NoError(t, err)

	vote, ok := ledger.GetVote("p1")
	require.True(t, ok)
	assert.Equal(t, "optB", vote)
	assert.True(t, ledger.HasParticipatedInContest("c1"))
}
