package driven

import (
	"context"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// GuildStore defines the driven port for the set of workspaces the bot belongs to.
// Remove is a no-op for unknown guilds.
type GuildStore interface {
	Exists(ctx context.Context, guildID string) (bool, error)
	Upsert(ctx context.Context, guild model.Guild) error
	Remove(ctx context.Context, guildID string) error
	ListAll(ctx context.Context) ([]model.Guild, error)
}
