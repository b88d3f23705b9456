// Package discord implements the ChatClient port and gateway membership events
// on top of discordgo.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ChatClient = (*Client)(nil)

// guildPageSize is the maximum page size accepted by the current-user guilds endpoint.
const guildPageSize = 200

// session is the subset of *discordgo.Session the client uses.
type session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error)
}

// Client posts and edits status embeds and relays guild membership changes
// received over the gateway.
type Client struct {
	session session
	gateway *discordgo.Session
	events  chan model.GuildEvent
	logger  *slog.Logger
}

// NewClient creates a bot session for token. The gateway is not connected
// until Open is called.
func NewClient(token string, logger *slog.Logger) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	c := newClient(s, logger)
	c.gateway = s
	s.AddHandler(c.onGuildCreate)
	s.AddHandler(c.onGuildDelete)

	return c, nil
}

func newClient(s session, logger *slog.Logger) *Client {
	return &Client{
		session: s,
		events:  make(chan model.GuildEvent, 64),
		logger:  logger,
	}
}

// Open connects the gateway websocket.
func (c *Client) Open() error {
	if err := c.gateway.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects the gateway websocket.
func (c *Client) Close() error {
	if err := c.gateway.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

// Events returns the stream of guild join and leave notifications.
func (c *Client) Events() <-chan model.GuildEvent {
	return c.events
}

// CreateMessage posts embed to channelID and returns the new message ID.
func (c *Client) CreateMessage(ctx context.Context, channelID string, embed model.StatusEmbed) (string, error) {
	msg, err := c.session.ChannelMessageSendEmbed(channelID, toMessageEmbed(embed), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message to channel %s: %w", channelID, err)
	}
	return msg.ID, nil
}

// EditMessage replaces the embed of messageID in channelID.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, embed model.StatusEmbed) error {
	if _, err := c.session.ChannelMessageEditEmbed(channelID, messageID, toMessageEmbed(embed), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit message %s in channel %s: %w", messageID, channelID, err)
	}
	return nil
}

// ListGuilds pages through every guild the bot belongs to.
func (c *Client) ListGuilds(ctx context.Context) ([]model.Guild, error) {
	guilds := []model.Guild{}
	after := ""

	for {
		page, err := c.session.UserGuilds(guildPageSize, "", after, false, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list guilds after %q: %w", after, err)
		}

		for _, g := range page {
			guilds = append(guilds, model.Guild{ID: g.ID, Name: g.Name})
		}

		if len(page) < guildPageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	return guilds, nil
}

func (c *Client) onGuildCreate(_ *discordgo.Session, e *discordgo.GuildCreate) {
	if e.Guild == nil || e.Unavailable {
		return
	}
	c.emit(model.GuildEvent{
		Kind:  model.GuildJoined,
		Guild: model.Guild{ID: e.ID, Name: e.Name, JoinedAt: e.JoinedAt},
	})
}

// onGuildDelete ignores outages, which the gateway reports as unavailable guilds.
func (c *Client) onGuildDelete(_ *discordgo.Session, e *discordgo.GuildDelete) {
	if e.Guild == nil || e.Unavailable {
		return
	}
	c.emit(model.GuildEvent{Kind: model.GuildLeft, Guild: model.Guild{ID: e.ID}})
}

func (c *Client) emit(ev model.GuildEvent) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("guild event dropped, consumer is behind", "kind", ev.Kind, "guild", ev.Guild.ID)
	}
}

// toMessageEmbed maps the platform-neutral embed onto discordgo's wire type.
func toMessageEmbed(e model.StatusEmbed) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
		Color:       e.Color,
		Fields:      fields,
	}
	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}

	return embed
}
