package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GuildStore = (*GuildRepo)(nil)

// GuildRepo is the SQLite implementation of the GuildStore port interface.
type GuildRepo struct {
	db *DB
}

// NewGuildRepo creates a new GuildRepo backed by the given DB.
func NewGuildRepo(db *DB) *GuildRepo {
	return &GuildRepo{db: db}
}

// Exists reports whether the bot is recorded as a member of guildID.
func (r *GuildRepo) Exists(ctx context.Context, guildID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM guilds WHERE id = ?)`

	var exists bool
	if err := r.db.Reader.QueryRowContext(ctx, query, guildID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check guild %s: %w", guildID, err)
	}

	return exists, nil
}

// Upsert records membership of a guild, refreshing its name if already known.
// The original joined_at is preserved on conflict.
func (r *GuildRepo) Upsert(ctx context.Context, guild model.Guild) error {
	const query = `INSERT INTO guilds (id, name, joined_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`

	joinedAt := guild.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, guild.ID, guild.Name, joinedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert guild %s: %w", guild.ID, err)
	}

	return nil
}

// Remove forgets a guild. Unknown IDs are ignored.
func (r *GuildRepo) Remove(ctx context.Context, guildID string) error {
	const query = `DELETE FROM guilds WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, guildID); err != nil {
		return fmt.Errorf("remove guild %s: %w", guildID, err)
	}

	return nil
}

// ListAll returns every known guild ordered by ID.
func (r *GuildRepo) ListAll(ctx context.Context) ([]model.Guild, error) {
	const query = `SELECT id, name, joined_at FROM guilds ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	defer rows.Close()

	guilds := []model.Guild{}
	for rows.Next() {
		var g model.Guild
		var joinedAt string
		if err := rows.Scan(&g.ID, &g.Name, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan guild: %w", err)
		}
		if g.JoinedAt, err = parseTime(joinedAt); err != nil {
			return nil, fmt.Errorf("parse joined_at: %w", err)
		}
		guilds = append(guilds, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guilds: %w", err)
	}

	return guilds, nil
}
