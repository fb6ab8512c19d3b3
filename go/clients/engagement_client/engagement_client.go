package engagement_client

import (
	"fmt"
	"net/url"

	"github.com/sidecast/sidecast/go/clients"
	"github.com/sidecast/sidecast/go/internal/engagement"
)

// Client talks to the engagement backend. It implements
// engagement.Repository.
type Client struct {
	*clients.BaseClient
	apiKey string
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %q", engagement.ErrInvalidURL, baseURL)
	}

	client := &Client{
		BaseClient: clients.NewBaseClient(baseURL),
		apiKey:     apiKey,
	}

	client.SetHeader("Content-Type", "application/json")

	return client, nil
}
