package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultCoverImage is used when a song is created without a cover.
const DefaultCoverImage = "default-cover.jpg"

// Genres lists the accepted values for Song.Genre.
var Genres = []string{"Pop", "Rock", "Hip-Hop", "Classique", "Jazz", "Autre"}

// Song is a piece the user is learning or performing.
type Song struct {
	// ID is the unique identifier of the song.
	ID uuid.UUID `json:"id" db:"id"`

	// Title is at most 100 characters.
	Title string `json:"title" db:"title"`

	Artist string `json:"artist" db:"artist"`

	// CoverImage references an image; defaults to DefaultCoverImage.
	CoverImage string `json:"coverImage" db:"cover_image"`

	// AudioFile references the original audio. Only mp3, wav and ogg
	// files are accepted.
	AudioFile string `json:"audioFile" db:"audio_file"`

	// Duration is the length of the song in seconds.
	Duration *int `json:"duration,omitempty" db:"duration"`

	Genre *string `json:"genre,omitempty" db:"genre"`

	// CreatedBy is the owning user, or nil when created anonymously.
	CreatedBy *uuid.UUID `json:"createdBy" db:"created_by"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// FormattedDuration renders Duration as "3m 25s".
func (s Song) FormattedDuration() string {
	if s.Duration == nil {
		return ""
	}
	return fmt.Sprintf("%dm %ds", *s.Duration/60, *s.Duration%60)
}

// SongFilter narrows song listings.
type SongFilter struct {
	// Query matches a substring of the title or artist, case-insensitively.
	Query string
	Genre string
}

// SongUpdate is the allow-listed set of fields a client may change.
type SongUpdate struct {
	Title      *string `json:"title"`
	Artist     *string `json:"artist"`
	CoverImage *string `json:"coverImage"`
	AudioFile  *string `json:"audioFile"`
	Duration   *int    `json:"duration"`
	Genre      *string `json:"genre"`
}

// Apply merges the non-nil fields of u onto s.
func (u SongUpdate) Apply(s Song) Song {
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.Artist != nil {
		s.Artist = *u.Artist
	}
	if u.CoverImage != nil {
		s.CoverImage = *u.CoverImage
	}
	if u.AudioFile != nil {
		s.AudioFile = *u.AudioFile
	}
	if u.Duration != nil {
		s.Duration = u.Duration
	}
	if u.Genre != nil {
		s.Genre = u.Genre
	}
	return s
}
