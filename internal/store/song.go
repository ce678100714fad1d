package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

const songColumns = `id, title, artist, cover_image, audio_file, duration, genre, created_by, created_at, updated_at`

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SongRepository handles persistence for songs.
type SongRepository struct {
	db *sql.DB
}

func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

func scanSong(row rowScanner) (types.Song, error) {
	var song types.Song
	err := row.Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&song.CoverImage,
		&song.AudioFile,
		&song.Duration,
		&song.Genre,
		&song.CreatedBy,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Song{}, ErrNotFound
		}
		return types.Song{}, err
	}
	return song, nil
}

// List returns songs matching filter, newest first.
func (r *SongRepository) List(ctx context.Context, filter types.SongFilter) ([]types.Song, error) {
	var (
		conditions []string
		args       []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		conditions = append(conditions, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR artist ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		args = append(args, genre)
		conditions = append(conditions, fmt.Sprintf("genre = $%d", len(args)))
	}

	query := `SELECT ` + songColumns + ` FROM songs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := make([]types.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *SongRepository) Get(ctx context.Context, id uuid.UUID) (types.Song, error) {
	const query = `SELECT ` + songColumns + ` FROM songs WHERE id = $1`
	return scanSong(r.db.QueryRowContext(ctx, query, id))
}

func (r *SongRepository) Create(ctx context.Context, song types.Song) (types.Song, error) {
	now := dbNow()
	if song.ID == uuid.Nil {
		song.ID = uuid.New()
	}
	song.CreatedAt = now
	song.UpdatedAt = now

	const query = `
		INSERT INTO songs (id, title, artist, cover_image, audio_file, duration, genre, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		song.ID,
		song.Title,
		song.Artist,
		song.CoverImage,
		song.AudioFile,
		song.Duration,
		song.Genre,
		song.CreatedBy,
		song.CreatedAt,
		song.UpdatedAt,
	); err != nil {
		return types.Song{}, mapWriteError(err)
	}
	return song, nil
}

func (r *SongRepository) Update(ctx context.Context, song types.Song) (types.Song, error) {
	song.UpdatedAt = dbNow()

	const query = `
		UPDATE songs
		SET title = $1,
			artist = $2,
			cover_image = $3,
			audio_file = $4,
			duration = $5,
			genre = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		song.Title,
		song.Artist,
		song.CoverImage,
		song.AudioFile,
		song.Duration,
		song.Genre,
		song.UpdatedAt,
		song.ID,
	)
	if err != nil {
		return types.Song{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Song{}, err
	}
	if affected == 0 {
		return types.Song{}, ErrNotFound
	}
	return song, nil
}

// Delete removes the song and returns the deleted row.
func (r *SongRepository) Delete(ctx context.Context, id uuid.UUID) (types.Song, error) {
	const query = `DELETE FROM songs WHERE id = $1 RETURNING ` + songColumns
	return scanSong(r.db.QueryRowContext(ctx, query, id))
}

func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM songs`).Scan(&total)
	return total, err
}

// CountByMediaKey counts songs whose audio file or cover image is key.
func (r *SongRepository) CountByMediaKey(ctx context.Context, key string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM songs WHERE audio_file = $1 OR cover_image = $1`, key).Scan(&total)
	return total, err
}
