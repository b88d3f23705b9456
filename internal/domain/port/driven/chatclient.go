package driven

import (
	"context"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// ChatClient defines the driven port for posting and editing status messages.
type ChatClient interface {
	// CreateMessage posts embed to the channel and returns the new message ID.
	CreateMessage(ctx context.Context, channelID string, embed model.StatusEmbed) (string, error)
	// EditMessage replaces the embed of an existing message.
	EditMessage(ctx context.Context, channelID, messageID string, embed model.StatusEmbed) error
	// ListGuilds returns every workspace the bot currently belongs to.
	ListGuilds(ctx context.Context) ([]model.Guild, error)
}
