package engagement_client

const (
	// Base URL
	DefaultBaseURL = "https://engagement.sidecast.tv"

	// API Endpoints
	PollsEndpoint    = "/v1/engagement/polls"
	ContestsEndpoint = "/v1/engagement/contests"
)
