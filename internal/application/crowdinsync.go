package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// CrowdinSyncDescription is the description carried by every translation-sync PTAL.
const CrowdinSyncDescription = "Crowdin Sync Request"

// pullRequestURLKey is the client_payload field holding the sync pull request.
const pullRequestURLKey = "pull_request_url"

var (
	// ErrUnregisteredRepository indicates a sync request for a repository no channel subscribed to.
	ErrUnregisteredRepository = errors.New("repository has no registrations")

	// ErrInvalidPullRequestURL indicates the client payload did not name a pull request.
	ErrInvalidPullRequestURL = errors.New("invalid pull request url")
)

// SyncResult counts the outcome of fanning a sync request out to registered channels.
type SyncResult struct {
	Registrations int
	Created       int
	Skipped       int
	Failed        int
}

// CrowdinSyncService announces translation-sync pull requests in every
// channel registered for the repository.
type CrowdinSyncService struct {
	regs   driven.RegistrationStore
	gh     driven.GitHubClient
	ptal   *PTALService
	action string
}

// NewCrowdinSyncService creates a CrowdinSyncService reacting to repository
// dispatch events whose action equals action.
func NewCrowdinSyncService(regs driven.RegistrationStore, gh driven.GitHubClient, ptal *PTALService, action string) *CrowdinSyncService {
	return &CrowdinSyncService{regs: regs, gh: gh, ptal: ptal, action: action}
}

// HandleEvent is the event bus entry point. Dispatch events with a
// different action are ignored.
func (s *CrowdinSyncService) HandleEvent(ctx context.Context, ev model.Event) error {
	dispatch, ok := ev.(model.RepositoryDispatchEvent)
	if !ok || dispatch.Action != s.action {
		return nil
	}

	result, err := s.Sync(ctx, dispatch)
	if errors.Is(err, ErrUnregisteredRepository) {
		slog.Warn("sync request for unregistered repository", "repo", dispatch.Owner+"/"+dispatch.Repository)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("sync request fanned out",
		"repo", dispatch.Owner+"/"+dispatch.Repository,
		"registrations", result.Registrations,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return nil
}

// Sync posts one PTAL per registration of the dispatching repository. The
// pull request is fetched once; each registration then succeeds or fails on its own.
func (s *CrowdinSyncService) Sync(ctx context.Context, ev model.RepositoryDispatchEvent) (SyncResult, error) {
	regs, err := s.regs.FindByRepo(ctx, ev.Owner, ev.Repository)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load registrations: %w", err)
	}
	if len(regs) == 0 {
		return SyncResult{}, ErrUnregisteredRepository
	}

	raw, _ := ev.ClientPayload[pullRequestURLKey].(string)
	number, err := ParsePullRequestNumber(raw)
	if err != nil {
		return SyncResult{}, err
	}

	key := model.PRKey{Owner: ev.Owner, Repository: ev.Repository, Number: number}
	pr, reviews, err := fetchPullRequestState(ctx, s.gh, key)
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync %s: %w", key, err)
	}
	summary := SummarizeReviews(pr, reviews)

	result := SyncResult{Registrations: len(regs)}
	for _, reg := range regs {
		_, err := s.ptal.post(ctx, pr, summary, reg.GuildID, reg.ChannelID, CrowdinSyncDescription)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, ErrNotInGuild):
			result.Skipped++
			slog.Warn("skipping registration, guild not joined", "pr", key.String(), "guild", reg.GuildID, "channel", reg.ChannelID)
		default:
			result.Failed++
			slog.Error("sync ptal failed", "pr", key.String(), "channel", reg.ChannelID, "error", err)
		}
	}

	return result, nil
}

// ParsePullRequestNumber extracts the number from a pull request URL in either
// web form (.../owner/repo/pull/42) or API form (.../repos/owner/repo/pulls/42).
func ParsePullRequestNumber(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPullRequestURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidPullRequestURL, raw, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPullRequestURL, raw)
	}

	kind, last := segments[len(segments)-2], segments[len(segments)-1]
	if kind != "pull" && kind != "pulls" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPullRequestURL, raw)
	}

	number, err := strconv.Atoi(last)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPullRequestURL, raw)
	}

	return number, nil
}
