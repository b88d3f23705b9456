package model

import "time"

// Guild is a chat workspace the bot is a member of.
type Guild struct {
	ID       string
	Name     string
	JoinedAt time.Time
}

// GuildEvent reports the bot joining or leaving a workspace.
type GuildEvent struct {
	Kind  GuildEventKind
	Guild Guild
}
