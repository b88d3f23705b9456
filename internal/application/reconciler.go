// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// ErrNotInGuild indicates the bot no longer belongs to the workspace a
// message lives in, so the message cannot be touched.
var ErrNotInGuild = errors.New("bot is not a member of the guild")

// ReconcileResult counts the outcome of one reconciliation pass over a pull request.
type ReconcileResult struct {
	Records int
	Edited  int
	Skipped int
	Failed  int
}

// ReconcileService brings every chat message tracking a pull request in line
// with the pull request's current review state on GitHub.
type ReconcileService struct {
	ptals  driven.PTALStore
	guilds driven.GuildStore
	gh     driven.GitHubClient
	chat   driven.ChatClient
}

// NewReconcileService creates a ReconcileService.
func NewReconcileService(
	ptals driven.PTALStore,
	guilds driven.GuildStore,
	gh driven.GitHubClient,
	chat driven.ChatClient,
) *ReconcileService {
	return &ReconcileService{ptals: ptals, guilds: guilds, gh: gh, chat: chat}
}

// Reconcile re-renders every message tracking key. A pull request nobody
// tracks is a no-op. Records are handled independently: a failure on one is
// logged and counted, and the rest still proceed. The returned error is
// non-nil only when the records themselves cannot be loaded.
func (s *ReconcileService) Reconcile(ctx context.Context, key model.PRKey) (ReconcileResult, error) {
	records, err := s.ptals.FindByKey(ctx, key)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("load ptal records for %s: %w", key, err)
	}

	result := ReconcileResult{Records: len(records)}
	if len(records) == 0 {
		slog.Debug("no ptal records for pull request", "pr", key.String())
		return result, nil
	}

	for _, rec := range records {
		err := s.ReconcileRecord(ctx, rec)
		switch {
		case err == nil:
			result.Edited++
		case errors.Is(err, ErrNotInGuild):
			result.Skipped++
			slog.Warn("skipping ptal record, guild not joined",
				"pr", key.String(), "guild", rec.GuildID, "channel", rec.ChannelID, "message", rec.MessageID)
		default:
			result.Failed++
			slog.Error("ptal reconcile failed",
				"pr", key.String(), "channel", rec.ChannelID, "message", rec.MessageID, "error", err)
		}
	}

	slog.Info("pull request reconciled",
		"pr", key.String(),
		"records", result.Records,
		"edited", result.Edited,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, nil
}

// Pacer blocks until the next outbound edit may be sent.
type Pacer func(ctx context.Context) error

// ReconcileRecord fetches the latest state of the record's pull request and
// edits its message. Webhook payloads are never trusted for review state.
func (s *ReconcileService) ReconcileRecord(ctx context.Context, rec model.PTALRecord) error {
	return s.ReconcileRecordPaced(ctx, rec, nil)
}

// ReconcileRecordPaced is ReconcileRecord with pace called immediately
// before the edit, after the pull request has been fetched. A pace error
// aborts the record without editing. A nil pace does not wait.
func (s *ReconcileService) ReconcileRecordPaced(ctx context.Context, rec model.PTALRecord, pace Pacer) error {
	ok, err := s.guilds.Exists(ctx, rec.GuildID)
	if err != nil {
		return fmt.Errorf("check guild %s: %w", rec.GuildID, err)
	}
	if !ok {
		return fmt.Errorf("guild %s: %w", rec.GuildID, ErrNotInGuild)
	}

	embed, err := s.render(ctx, rec.Key(), rec.Description)
	if err != nil {
		return err
	}

	if pace != nil {
		if err := pace(ctx); err != nil {
			return fmt.Errorf("wait for edit slot: %w", err)
		}
	}

	if err := s.chat.EditMessage(ctx, rec.ChannelID, rec.MessageID, embed); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}

	return nil
}

func (s *ReconcileService) render(ctx context.Context, key model.PRKey, description string) (model.StatusEmbed, error) {
	pr, reviews, err := fetchPullRequestState(ctx, s.gh, key)
	if err != nil {
		return model.StatusEmbed{}, err
	}
	return RenderStatusEmbed(pr, SummarizeReviews(pr, reviews), description), nil
}

func fetchPullRequestState(ctx context.Context, gh driven.GitHubClient, key model.PRKey) (model.PullRequest, []model.Review, error) {
	pr, err := gh.FetchPullRequest(ctx, key)
	if err != nil {
		return model.PullRequest{}, nil, fmt.Errorf("fetch pull request: %w", err)
	}

	reviews, err := gh.FetchReviews(ctx, key)
	if err != nil {
		return model.PullRequest{}, nil, fmt.Errorf("fetch reviews: %w", err)
	}

	return pr, reviews, nil
}
