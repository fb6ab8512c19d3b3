package engagement_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sidecast/sidecast/go/internal/models"
)

type ContestsResponse struct {
	Contests []models.Contest `json:"contests"`
}

type participateRequest struct {
	APIKey  string            `json:"apiKey"`
	MatchID string            `json:"matchId"`
	Answers map[string]string `json:"answers,omitempty"`
}

func (c *Client) LoadContests(ctx context.Context, bc models.BroadcastContext) ([]models.Contest, error) {
	endpoint := fmt.Sprintf("%s?apiKey=%s&matchId=%s",
		ContestsEndpoint, url.QueryEscape(c.apiKey), url.QueryEscape(bc.BroadcastID))
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to load contests: %w", err)
	}

	var response ContestsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return response.Contests, nil
}

func (c *Client) SubmitContestEntry(ctx context.Context, contestID string, answers map[string]string, bc models.BroadcastContext) error {
	payload, err := json.Marshal(participateRequest{
		APIKey:  c.apiKey,
		MatchID: bc.BroadcastID,
		Answers: answers,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal participation request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/participate", ContestsEndpoint, url.PathEscape(contestID))
	if _, err := c.Post(ctx, endpoint, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to submit participation: %w", err)
	}
	return nil
}
