package engagement

import "errors"

// Validation failures are surfaced synchronously, before any network call is
// attempted. Backend failures wrap ErrVoteFailed / ErrParticipationFailed.
var (
	ErrPollNotFound        = errors.New("engagement: poll not found for this broadcast")
	ErrContestNotFound     = errors.New("engagement: contest not found for this broadcast")
	ErrPollClosed          = errors.New("engagement: poll is no longer active")
	ErrAlreadyVoted        = errors.New("engagement: already voted in this poll")
	ErrVoteFailed          = errors.New("engagement: vote submission failed")
	ErrParticipationFailed = errors.New("engagement: contest entry failed")
	ErrInvalidURL          = errors.New("engagement: invalid backend URL")
)
