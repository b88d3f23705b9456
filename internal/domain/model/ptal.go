package model

import "time"

// PTALRecord links a chat message to the pull request it reports on.
// Several records may share the same PRKey; each is reconciled on its own.
type PTALRecord struct {
	ID          int64
	ChannelID   string
	MessageID   string
	Owner       string
	Repository  string
	PR          int
	GuildID     string
	Description string
	CreatedAt   time.Time
}

// Key returns the pull request the record tracks.
func (r PTALRecord) Key() PRKey {
	return PRKey{Owner: r.Owner, Repository: r.Repository, Number: r.PR}
}
