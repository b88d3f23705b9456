// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  2. revalidation (every request asks GitHub whether its cached copy is current)
//  3. httpcache (ETag-based conditional request caching)
//  4. go-github (GitHub REST API client, PAT auth when token is set)
//
// An empty token yields an unauthenticated client, which is enough for public repositories.
func NewClient(token string) *Client {
	client := gh.NewClient(newCachingHTTPClient(nil))
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// newCachingHTTPClient builds the rate-limited, revalidating cache stack on
// top of base. A nil base uses http.DefaultTransport.
func newCachingHTTPClient(base http.RoundTripper) *http.Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = base
	return github_ratelimit.NewClient(revalidatingTransport{next: cacheTransport})
}

// revalidatingTransport marks every request max-age=0 so httpcache never
// answers from a cache entry GitHub still calls fresh. The entry's ETag is
// sent instead, and an unchanged resource comes back as a 304 that does not
// count against the primary rate limit.
type revalidatingTransport struct {
	next http.RoundTripper
}

// RoundTrip sets the request's Cache-Control header on a clone and delegates.
func (t revalidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Cache-Control", "max-age=0")
	return t.next.RoundTrip(req)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchPullRequest retrieves the current state of a single pull request.
func (c *Client) FetchPullRequest(ctx context.Context, key model.PRKey) (model.PullRequest, error) {
	if err := validateKey(key); err != nil {
		return model.PullRequest{}, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, key.Owner, key.Repository, key.Number)
	if err != nil {
		return model.PullRequest{}, fmt.Errorf("fetching pull request %s: %w", key, err)
	}

	logRateLimit(resp, key.FullName()+"/pull", 0, 1)

	return mapPullRequest(pr, key), nil
}

// FetchReviews retrieves all reviews for a pull request.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) FetchReviews(ctx context.Context, key model.PRKey) ([]model.Review, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	allReviews := []model.Review{}

	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, key.Owner, key.Repository, key.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for %s (page %d): %w", key, opts.Page, err)
		}

		logRateLimit(resp, key.FullName()+"/reviews", opts.Page, len(reviews))

		for _, r := range reviews {
			allReviews = append(allReviews, mapReview(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allReviews, nil
}

// mapReview converts a go-github PullRequestReview to a domain model Review.
func mapReview(r *gh.PullRequestReview) model.Review {
	return model.Review{
		ID:            r.GetID(),
		ReviewerLogin: r.GetUser().GetLogin(),
		State:         model.ReviewState(strings.ToLower(r.GetState())),
		SubmittedAt:   r.GetSubmittedAt().Time,
	}
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapPullRequest(pr *gh.PullRequest, key model.PRKey) model.PullRequest {
	status := model.PRStatusOpen
	if pr.GetMerged() || !pr.GetMergedAt().IsZero() {
		status = model.PRStatusMerged
	} else if pr.GetState() == "closed" {
		status = model.PRStatusClosed
	}

	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, r.GetLogin())
	}

	teamSlugs := make([]string, 0, len(pr.RequestedTeams))
	for _, t := range pr.RequestedTeams {
		teamSlugs = append(teamSlugs, t.GetSlug())
	}

	return model.PullRequest{
		Owner:              key.Owner,
		Repository:         key.Repository,
		Number:             key.Number,
		Title:              pr.GetTitle(),
		URL:                pr.GetHTMLURL(),
		Author:             pr.GetUser().GetLogin(),
		Status:             status,
		IsDraft:            pr.GetDraft(),
		UpdatedAt:          pr.GetUpdatedAt().Time,
		RequestedReviewers: reviewers,
		RequestedTeamSlugs: teamSlugs,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func validateKey(key model.PRKey) error {
	if key.Owner == "" || key.Repository == "" || key.Number <= 0 {
		return fmt.Errorf("invalid pull request %q: expected owner/repo#number", key.String())
	}
	return nil
}
