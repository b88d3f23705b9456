package model

import "time"

// Registration subscribes a chat channel to translation-sync requests for a repository.
type Registration struct {
	ID         int64
	Owner      string
	Repository string
	GuildID    string
	ChannelID  string
	CreatedAt  time.Time
}

// FullName returns "owner/repo".
func (r Registration) FullName() string {
	return r.Owner + "/" + r.Repository
}
