package model

// StatusEmbed is the platform-neutral rich message body posted for a PTAL.
// Two embeds built from the same inputs compare equal.
type StatusEmbed struct {
	Title       string
	URL         string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
}

// EmbedField is a single titled block within a StatusEmbed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}
