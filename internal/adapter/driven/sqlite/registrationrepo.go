package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RegistrationStore = (*RegistrationRepo)(nil)

// RegistrationRepo is the SQLite implementation of the RegistrationStore port.
// Rows live in the crowdin_embed table.
type RegistrationRepo struct {
	db *DB
}

// NewRegistrationRepo creates a new RegistrationRepo backed by the given DB.
func NewRegistrationRepo(db *DB) *RegistrationRepo {
	return &RegistrationRepo{db: db}
}

// FindByRepo returns every channel registered for owner/repo.
func (r *RegistrationRepo) FindByRepo(ctx context.Context, owner, repo string) ([]model.Registration, error) {
	const query = `SELECT id, owner, repo, guild_id, channel_id, created_at FROM crowdin_embed
		WHERE owner = ? AND repo = ? ORDER BY id`

	regs, err := r.queryRegistrations(ctx, query, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("find registrations for %s/%s: %w", owner, repo, err)
	}

	return regs, nil
}

// Add stores a registration. Returns ErrRegistrationExists when the channel is
// already registered for the repository.
func (r *RegistrationRepo) Add(ctx context.Context, reg model.Registration) (model.Registration, error) {
	const query = `INSERT INTO crowdin_embed (owner, repo, channel_id, guild_id, created_at) VALUES (?, ?, ?, ?, ?)`

	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		reg.Owner, reg.Repository, reg.ChannelID, reg.GuildID, reg.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Registration{}, fmt.Errorf("add registration %s -> %s: %w", reg.FullName(), reg.ChannelID, driven.ErrRegistrationExists)
		}
		return model.Registration{}, fmt.Errorf("add registration %s -> %s: %w", reg.FullName(), reg.ChannelID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Registration{}, fmt.Errorf("get registration id: %w", err)
	}
	reg.ID = id

	return reg, nil
}

// Remove deletes the registration of channelID for owner/repo.
func (r *RegistrationRepo) Remove(ctx context.Context, owner, repo, channelID string) error {
	const query = `DELETE FROM crowdin_embed WHERE owner = ? AND repo = ? AND channel_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, owner, repo, channelID)
	if err != nil {
		return fmt.Errorf("remove registration %s/%s -> %s: %w", owner, repo, channelID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove registration %s/%s -> %s: %w", owner, repo, channelID, driven.ErrRegistrationNotFound)
	}

	return nil
}

// ListAll returns every registration ordered by repository.
func (r *RegistrationRepo) ListAll(ctx context.Context) ([]model.Registration, error) {
	const query = `SELECT id, owner, repo, guild_id, channel_id, created_at FROM crowdin_embed ORDER BY owner, repo, id`

	regs, err := r.queryRegistrations(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	return regs, nil
}

func (r *RegistrationRepo) queryRegistrations(ctx context.Context, query string, args ...any) ([]model.Registration, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []model.Registration{}
	for rows.Next() {
		var reg model.Registration
		var createdAt string
		if err := rows.Scan(&reg.ID, &reg.Owner, &reg.Repository, &reg.GuildID, &reg.ChannelID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		if reg.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	return regs, nil
}
