package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

const recordingColumns = `id, song_id, title, type, audio_file, notes, created_by, created_at, updated_at`

// RecordingRepository handles persistence for practice recordings.
type RecordingRepository struct {
	db *sql.DB
}

func NewRecordingRepository(db *sql.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

func scanRecording(row rowScanner) (types.Recording, error) {
	var rec types.Recording
	err := row.Scan(
		&rec.ID,
		&rec.SongID,
		&rec.Title,
		&rec.Type,
		&rec.AudioFile,
		&rec.Notes,
		&rec.CreatedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Recording{}, ErrNotFound
		}
		return types.Recording{}, err
	}
	return rec, nil
}

// ListBySong returns the recordings of a song, newest first.
func (r *RecordingRepository) ListBySong(ctx context.Context, songID uuid.UUID) ([]types.Recording, error) {
	const query = `SELECT ` + recordingColumns + ` FROM recordings WHERE song_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recordings := make([]types.Recording, 0)
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recordings, nil
}

func (r *RecordingRepository) Get(ctx context.Context, id uuid.UUID) (types.Recording, error) {
	const query = `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1`
	return scanRecording(r.db.QueryRowContext(ctx, query, id))
}

func (r *RecordingRepository) Create(ctx context.Context, rec types.Recording) (types.Recording, error) {
	now := dbNow()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	const query = `
		INSERT INTO recordings (id, song_id, title, type, audio_file, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.SongID,
		rec.Title,
		rec.Type,
		rec.AudioFile,
		rec.Notes,
		rec.CreatedBy,
		rec.CreatedAt,
		rec.UpdatedAt,
	); err != nil {
		return types.Recording{}, mapWriteError(err)
	}
	return rec, nil
}

func (r *RecordingRepository) Update(ctx context.Context, rec types.Recording) (types.Recording, error) {
	rec.UpdatedAt = dbNow()

	const query = `
		UPDATE recordings
		SET title = $1,
			type = $2,
			audio_file = $3,
			notes = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, rec.Title, rec.Type, rec.AudioFile, rec.Notes, rec.UpdatedAt, rec.ID)
	if err != nil {
		return types.Recording{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Recording{}, err
	}
	if affected == 0 {
		return types.Recording{}, ErrNotFound
	}
	return rec, nil
}

func (r *RecordingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM recordings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByMediaKey counts recordings whose audio file is key.
func (r *RecordingRepository) CountByMediaKey(ctx context.Context, key string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM recordings WHERE audio_file = $1`, key).Scan(&total)
	return total, err
}
