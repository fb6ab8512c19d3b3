package engagement_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidecast/sidecast/go/internal/engagement"
	"github.com/sidecast/sidecast/go/internal/models"
)

func TestNewClientRejectsInvalidURL(t *testing.T) {
	_, err := NewClient("not a url", "key")
	require.ErrorIs(t, err, engagement.ErrInvalidURL)
}

func TestLoadPollsParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PollsEndpoint, r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "match-1", r.URL.Query().Get("matchId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"polls":[{"id":"p1","matchId":"match-1","question":"MOTM?","isActive":true}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "key")
	require.NoError(t, err)

	polls, err := client.LoadPolls(context.Background(), models.BroadcastContext{BroadcastID: "match-1"})
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, "p1", polls[0].ID)
	assert.True(t, polls[0].IsActive)
}

func TestSubmitPollVotePostsBody(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "key")
	require.NoError(t, err)

	err = client.SubmitPollVote(context.Background(), "p1", "optA", models.BroadcastContext{BroadcastID: "match-1"})
	require.NoError(t, err)
	assert.Equal(t, PollsEndpoint+"/p1/vote", gotPath)
}

func TestSubmitVoteSurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "poll closed", http.StatusConflict)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "key")
	require.NoError(t, err)

	err = client.SubmitPollVote(context.Background(), "p1", "optA", models.BroadcastContext{BroadcastID: "match-1"})
	require.Error(t, err)
}
