package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// ErrInvalidRequest indicates a review request is missing required fields.
var ErrInvalidRequest = errors.New("invalid review request")

// ReviewRequest asks for a pull request to be announced in a channel.
type ReviewRequest struct {
	PR          model.PRKey
	GuildID     string
	ChannelID   string
	Description string
}

// PTALService posts new status messages and records them for later reconciliation.
type PTALService struct {
	ptals  driven.PTALStore
	guilds driven.GuildStore
	gh     driven.GitHubClient
	chat   driven.ChatClient
}

// NewPTALService creates a PTALService.
func NewPTALService(
	ptals driven.PTALStore,
	guilds driven.GuildStore,
	gh driven.GitHubClient,
	chat driven.ChatClient,
) *PTALService {
	return &PTALService{ptals: ptals, guilds: guilds, gh: gh, chat: chat}
}

// RequestReview announces req.PR in req.ChannelID and stores the resulting record.
func (s *PTALService) RequestReview(ctx context.Context, req ReviewRequest) (model.PTALRecord, error) {
	if req.ChannelID == "" || req.GuildID == "" || req.PR.Owner == "" || req.PR.Repository == "" || req.PR.Number <= 0 {
		return model.PTALRecord{}, ErrInvalidRequest
	}

	pr, reviews, err := fetchPullRequestState(ctx, s.gh, req.PR)
	if err != nil {
		return model.PTALRecord{}, err
	}

	return s.post(ctx, pr, SummarizeReviews(pr, reviews), req.GuildID, req.ChannelID, req.Description)
}

// post sends the initial embed and stores the record. The message is
// created before the record, so a store failure leaves an untracked message
// behind; that failure is logged with the message ID.
func (s *PTALService) post(
	ctx context.Context,
	pr model.PullRequest,
	summary model.ReviewSummary,
	guildID, channelID, description string,
) (model.PTALRecord, error) {
	ok, err := s.guilds.Exists(ctx, guildID)
	if err != nil {
		return model.PTALRecord{}, fmt.Errorf("check guild %s: %w", guildID, err)
	}
	if !ok {
		return model.PTALRecord{}, fmt.Errorf("guild %s: %w", guildID, ErrNotInGuild)
	}

	messageID, err := s.chat.CreateMessage(ctx, channelID, RenderStatusEmbed(pr, summary, description))
	if err != nil {
		return model.PTALRecord{}, fmt.Errorf("create message: %w", err)
	}

	rec, err := s.ptals.Insert(ctx, model.PTALRecord{
		ChannelID:   channelID,
		MessageID:   messageID,
		Owner:       pr.Owner,
		Repository:  pr.Repository,
		PR:          pr.Number,
		GuildID:     guildID,
		Description: description,
	})
	if err != nil {
		slog.Error("posted message is untracked", "pr", pr.Key().String(), "channel", channelID, "message", messageID, "error", err)
		return model.PTALRecord{}, fmt.Errorf("store ptal record: %w", err)
	}

	slog.Info("ptal posted", "pr", pr.Key().String(), "channel", channelID, "message", messageID)

	return rec, nil
}
