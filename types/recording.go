package types

import (
	"time"

	"github.com/google/uuid"
)

// VocalRecording is a standalone vocal take. It lives in its own table
// but is listed next to songs in the combined feed.
type VocalRecording struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	AudioFile string     `json:"audioFile" db:"audio_file"`
	Duration  *int       `json:"duration,omitempty" db:"duration"`
	Notes     *string    `json:"notes,omitempty" db:"notes"`
	SongID    *uuid.UUID `json:"songId,omitempty" db:"song_id"`
	CreatedBy *uuid.UUID `json:"createdBy" db:"created_by"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// VocalRecordingUpdate is the allow-listed set of mutable vocal fields.
type VocalRecordingUpdate struct {
	Title     *string    `json:"title"`
	AudioFile *string    `json:"audioFile"`
	Duration  *int       `json:"duration"`
	Notes     *string    `json:"notes"`
	SongID    *uuid.UUID `json:"songId"`
}

func (u VocalRecordingUpdate) Apply(v VocalRecording) VocalRecording {
	if u.Title != nil {
		v.Title = *u.Title
	}
	if u.AudioFile != nil {
		v.AudioFile = *u.AudioFile
	}
	if u.Duration != nil {
		v.Duration = u.Duration
	}
	if u.Notes != nil {
		v.Notes = u.Notes
	}
	if u.SongID != nil {
		v.SongID = u.SongID
	}
	return v
}

// Recording types.
const (
	RecordingTypeSession = "session"
	RecordingTypeIntro   = "intro"
	RecordingTypeBreak   = "break"
)

// Recording is a practice take attached to a song.
type Recording struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	SongID    uuid.UUID  `json:"songId" db:"song_id"`
	Title     string     `json:"title" db:"title"`
	Type      string     `json:"type" db:"type"`
	AudioFile string     `json:"audioFile" db:"audio_file"`
	Notes     *string    `json:"notes,omitempty" db:"notes"`
	CreatedBy *uuid.UUID `json:"createdBy" db:"created_by"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

type RecordingUpdate struct {
	Title     *string `json:"title"`
	Type      *string `json:"type"`
	AudioFile *string `json:"audioFile"`
	Notes     *string `json:"notes"`
}

func (u RecordingUpdate) Apply(r Recording) Recording {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Type != nil {
		r.Type = *u.Type
	}
	if u.AudioFile != nil {
		r.AudioFile = *u.AudioFile
	}
	if u.Notes != nil {
		r.Notes = u.Notes
	}
	return r
}

// ChordNote records a chord progression, optionally at a position
// (in seconds) within the song.
type ChordNote struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	SongID           uuid.UUID  `json:"songId" db:"song_id"`
	ChordProgression string     `json:"chordProgression" db:"chord_progression"`
	Position         *int       `json:"position,omitempty" db:"position"`
	Notes            *string    `json:"notes,omitempty" db:"notes"`
	CreatedBy        *uuid.UUID `json:"createdBy" db:"created_by"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

type ChordNoteUpdate struct {
	ChordProgression *string `json:"chordProgression"`
	Position         *int    `json:"position"`
	Notes            *string `json:"notes"`
}

func (u ChordNoteUpdate) Apply(c ChordNote) ChordNote {
	if u.ChordProgression != nil {
		c.ChordProgression = *u.ChordProgression
	}
	if u.Position != nil {
		c.Position = u.Position
	}
	if u.Notes != nil {
		c.Notes = u.Notes
	}
	return c
}
