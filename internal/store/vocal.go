package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

const vocalColumns = `id, title, audio_file, duration, notes, song_id, created_by, created_at, updated_at`

// VocalRecordingRepository handles persistence for vocal recordings.
type VocalRecordingRepository struct {
	db *sql.DB
}

func NewVocalRecordingRepository(db *sql.DB) *VocalRecordingRepository {
	return &VocalRecordingRepository{db: db}
}

func scanVocal(row rowScanner) (types.VocalRecording, error) {
	var vocal types.VocalRecording
	err := row.Scan(
		&vocal.ID,
		&vocal.Title,
		&vocal.AudioFile,
		&vocal.Duration,
		&vocal.Notes,
		&vocal.SongID,
		&vocal.CreatedBy,
		&vocal.CreatedAt,
		&vocal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.VocalRecording{}, ErrNotFound
		}
		return types.VocalRecording{}, err
	}
	return vocal, nil
}

func (r *VocalRecordingRepository) List(ctx context.Context) ([]types.VocalRecording, error) {
	const query = `SELECT ` + vocalColumns + ` FROM vocal_recordings ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vocals := make([]types.VocalRecording, 0)
	for rows.Next() {
		vocal, err := scanVocal(rows)
		if err != nil {
			return nil, err
		}
		vocals = append(vocals, vocal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vocals, nil
}

func (r *VocalRecordingRepository) Get(ctx context.Context, id uuid.UUID) (types.VocalRecording, error) {
	const query = `SELECT ` + vocalColumns + ` FROM vocal_recordings WHERE id = $1`
	return scanVocal(r.db.QueryRowContext(ctx, query, id))
}

func (r *VocalRecordingRepository) Create(ctx context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	now := dbNow()
	if vocal.ID == uuid.Nil {
		vocal.ID = uuid.New()
	}
	vocal.CreatedAt = now
	vocal.UpdatedAt = now

	const query = `
		INSERT INTO vocal_recordings (id, title, audio_file, duration, notes, song_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		vocal.ID,
		vocal.Title,
		vocal.AudioFile,
		vocal.Duration,
		vocal.Notes,
		vocal.SongID,
		vocal.CreatedBy,
		vocal.CreatedAt,
		vocal.UpdatedAt,
	); err != nil {
		return types.VocalRecording{}, mapWriteError(err)
	}
	return vocal, nil
}

func (r *VocalRecordingRepository) Update(ctx context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	vocal.UpdatedAt = dbNow()

	const query = `
		UPDATE vocal_recordings
		SET title = $1,
			audio_file = $2,
			duration = $3,
			notes = $4,
			song_id = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		vocal.Title,
		vocal.AudioFile,
		vocal.Duration,
		vocal.Notes,
		vocal.SongID,
		vocal.UpdatedAt,
		vocal.ID,
	)
	if err != nil {
		return types.VocalRecording{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.VocalRecording{}, err
	}
	if affected == 0 {
		return types.VocalRecording{}, ErrNotFound
	}
	return vocal, nil
}

// Delete removes the vocal recording and returns the deleted row.
func (r *VocalRecordingRepository) Delete(ctx context.Context, id uuid.UUID) (types.VocalRecording, error) {
	const query = `DELETE FROM vocal_recordings WHERE id = $1 RETURNING ` + vocalColumns
	return scanVocal(r.db.QueryRowContext(ctx, query, id))
}

func (r *VocalRecordingRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM vocal_recordings`).Scan(&total)
	return total, err
}

// CountByMediaKey counts vocal recordings whose audio file is key.
func (r *VocalRecordingRepository) CountByMediaKey(ctx context.Context, key string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM vocal_recordings WHERE audio_file = $1`, key).Scan(&total)
	return total, err
}
