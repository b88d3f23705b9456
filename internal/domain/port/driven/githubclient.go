package driven

import (
	"context"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// GitHubClient defines the driven port for reading pull request state from GitHub.
type GitHubClient interface {
	FetchPullRequest(ctx context.Context, key model.PRKey) (model.PullRequest, error)
	// FetchReviews returns the complete review history, oldest first.
	FetchReviews(ctx context.Context, key model.PRKey) ([]model.Review, error)
}
