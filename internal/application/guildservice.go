package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// errEventStreamClosed is returned by Run when the gateway closes its event channel.
var errEventStreamClosed = errors.New("guild event stream closed")

// GuildService mirrors the bot's workspace memberships into the store.
type GuildService struct {
	guilds driven.GuildStore
	chat   driven.ChatClient
}

// NewGuildService creates a GuildService.
func NewGuildService(guilds driven.GuildStore, chat driven.ChatClient) *GuildService {
	return &GuildService{guilds: guilds, chat: chat}
}

// SyncGuilds replaces the stored memberships with what the chat platform
// reports, covering joins and leaves missed while offline.
func (s *GuildService) SyncGuilds(ctx context.Context) error {
	current, err := s.chat.ListGuilds(ctx)
	if err != nil {
		return fmt.Errorf("list guilds: %w", err)
	}

	stored, err := s.guilds.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list stored guilds: %w", err)
	}

	present := make(map[string]bool, len(current))
	for _, g := range current {
		present[g.ID] = true
		if err := s.guilds.Upsert(ctx, g); err != nil {
			return err
		}
	}

	removed := 0
	for _, g := range stored {
		if present[g.ID] {
			continue
		}
		if err := s.guilds.Remove(ctx, g.ID); err != nil {
			return err
		}
		removed++
	}

	slog.Info("guilds synced", "guilds", len(current), "removed", removed)

	return nil
}

// Run applies gateway membership events until ctx is cancelled. It returns
// an error when the store fails or the stream closes so a supervisor can
// restart it.
func (s *GuildService) Run(ctx context.Context, events <-chan model.GuildEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errEventStreamClosed
			}
			if err := s.Apply(ctx, ev); err != nil {
				return err
			}
		}
	}
}

// Apply records a single join or leave.
func (s *GuildService) Apply(ctx context.Context, ev model.GuildEvent) error {
	switch ev.Kind {
	case model.GuildJoined:
		if err := s.guilds.Upsert(ctx, ev.Guild); err != nil {
			return err
		}
		slog.Info("guild joined", "guild", ev.Guild.ID, "name", ev.Guild.Name)
	case model.GuildLeft:
		if err := s.guilds.Remove(ctx, ev.Guild.ID); err != nil {
			return err
		}
		slog.Info("guild left", "guild", ev.Guild.ID)
	default:
		slog.Warn("unknown guild event", "kind", ev.Kind, "guild", ev.Guild.ID)
	}
	return nil
}
