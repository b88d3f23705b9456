package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PTALStore = (*PTALRepo)(nil)

const ptalColumns = `id, channel_id, message_id, owner, repository, pr, guild_id, description, created_at`

// PTALRepo is the SQLite implementation of the PTALStore port interface.
type PTALRepo struct {
	db *DB
}

// NewPTALRepo creates a new PTALRepo backed by the given DB.
func NewPTALRepo(db *DB) *PTALRepo {
	return &PTALRepo{db: db}
}

// FindByKey returns every record tracking the given pull request, oldest first.
func (r *PTALRepo) FindByKey(ctx context.Context, key model.PRKey) ([]model.PTALRecord, error) {
	const query = `SELECT ` + ptalColumns + ` FROM ptal
		WHERE owner = ? AND repository = ? AND pr = ? ORDER BY id`

	records, err := r.queryRecords(ctx, query, key.Owner, key.Repository, key.Number)
	if err != nil {
		return nil, fmt.Errorf("find ptal records for %s: %w", key, err)
	}

	return records, nil
}

// Insert appends a record and returns it with its assigned ID.
func (r *PTALRepo) Insert(ctx context.Context, rec model.PTALRecord) (model.PTALRecord, error) {
	const query = `INSERT INTO ptal (channel_id, message_id, owner, repository, pr, guild_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		rec.ChannelID, rec.MessageID, rec.Owner, rec.Repository, rec.PR,
		rec.GuildID, rec.Description, rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return model.PTALRecord{}, fmt.Errorf("insert ptal record for %s: %w", rec.Key(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.PTALRecord{}, fmt.Errorf("get ptal record id: %w", err)
	}
	rec.ID = id

	return rec, nil
}

// ListAll returns every record in insertion order.
func (r *PTALRepo) ListAll(ctx context.Context) ([]model.PTALRecord, error) {
	const query = `SELECT ` + ptalColumns + ` FROM ptal ORDER BY id`

	records, err := r.queryRecords(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ptal records: %w", err)
	}

	return records, nil
}

// DeleteByKey removes every record of the pull request and reports how many were removed.
func (r *PTALRepo) DeleteByKey(ctx context.Context, key model.PRKey) (int, error) {
	const query = `DELETE FROM ptal WHERE owner = ? AND repository = ? AND pr = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, key.Owner, key.Repository, key.Number)
	if err != nil {
		return 0, fmt.Errorf("delete ptal records for %s: %w", key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return int(rows), nil
}

func (r *PTALRepo) queryRecords(ctx context.Context, query string, args ...any) ([]model.PTALRecord, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.PTALRecord{}
	for rows.Next() {
		rec, err := scanPTALRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ptal record: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ptal records: %w", err)
	}

	return records, nil
}

func scanPTALRecord(s scanner) (*model.PTALRecord, error) {
	var rec model.PTALRecord
	var createdAt string

	err := s.Scan(&rec.ID, &rec.ChannelID, &rec.MessageID, &rec.Owner, &rec.Repository,
		&rec.PR, &rec.GuildID, &rec.Description, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &rec, nil
}
