package engagement_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sidecast/sidecast/go/internal/models"
)

type PollsResponse struct {
	Polls []models.Poll `json:"polls"`
}

type voteRequest struct {
	APIKey   string `json:"apiKey"`
	MatchID  string `json:"matchId"`
	OptionID string `json:"optionId"`
}

func (c *Client) LoadPolls(ctx context.Context, bc models.BroadcastContext) ([]models.Poll, error) {
	endpoint := fmt.Sprintf("%s?apiKey=%s&matchId=%s",
		PollsEndpoint, url.QueryEscape(c.apiKey), url.QueryEscape(bc.BroadcastID))
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to load polls: %w", err)
	}

	var response PollsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return response.Polls, nil
}

func (c *Client) SubmitPollVote(ctx context.Context, pollID, optionID string, bc models.BroadcastContext) error {
	payload, err := json.Marshal(voteRequest{
		APIKey:   c.apiKey,
		MatchID:  bc.BroadcastID,
		OptionID: optionID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal vote request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/vote", PollsEndpoint, url.PathEscape(pollID))
	if _, err := c.Post(ctx, endpoint, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to submit vote: %w", err)
	}
	return nil
}
