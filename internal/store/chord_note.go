package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

const chordNoteColumns = `id, song_id, chord_progression, position, notes, created_by, created_at, updated_at`

// ChordNoteRepository handles persistence for chord notes.
type ChordNoteRepository struct {
	db *sql.DB
}

func NewChordNoteRepository(db *sql.DB) *ChordNoteRepository {
	return &ChordNoteRepository{db: db}
}

func scanChordNote(row rowScanner) (types.ChordNote, error) {
	var note types.ChordNote
	err := row.Scan(
		&note.ID,
		&note.SongID,
		&note.ChordProgression,
		&note.Position,
		&note.Notes,
		&note.CreatedBy,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ChordNote{}, ErrNotFound
		}
		return types.ChordNote{}, err
	}
	return note, nil
}

// ListBySong returns chord notes ordered by position within the song;
// notes without a position come last.
func (r *ChordNoteRepository) ListBySong(ctx context.Context, songID uuid.UUID) ([]types.ChordNote, error) {
	const query = `SELECT ` + chordNoteColumns + ` FROM chord_notes WHERE song_id = $1 ORDER BY position ASC NULLS LAST, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]types.ChordNote, 0)
	for rows.Next() {
		note, err := scanChordNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *ChordNoteRepository) Get(ctx context.Context, id uuid.UUID) (types.ChordNote, error) {
	const query = `SELECT ` + chordNoteColumns + ` FROM chord_notes WHERE id = $1`
	return scanChordNote(r.db.QueryRowContext(ctx, query, id))
}

func (r *ChordNoteRepository) Create(ctx context.Context, note types.ChordNote) (types.ChordNote, error) {
	now := dbNow()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = now
	note.UpdatedAt = now

	const query = `
		INSERT INTO chord_notes (id, song_id, chord_progression, position, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.SongID,
		note.ChordProgression,
		note.Position,
		note.Notes,
		note.CreatedBy,
		note.CreatedAt,
		note.UpdatedAt,
	); err != nil {
		return types.ChordNote{}, mapWriteError(err)
	}
	return note, nil
}

func (r *ChordNoteRepository) Update(ctx context.Context, note types.ChordNote) (types.ChordNote, error) {
	note.UpdatedAt = dbNow()

	const query = `
		UPDATE chord_notes
		SET chord_progression = $1,
			position = $2,
			notes = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, note.ChordProgression, note.Position, note.Notes, note.UpdatedAt, note.ID)
	if err != nil {
		return types.ChordNote{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.ChordNote{}, err
	}
	if affected == 0 {
		return types.ChordNote{}, ErrNotFound
	}
	return note, nil
}

func (r *ChordNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM chord_notes WHERE id = $1`
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
