package services

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/musiccompanion/apiserver/types"
)

const (
	maxTitleLength    = 100
	minPasswordLength = 6
)

var audioFilePattern = regexp.MustCompile(`(?i)\.(mp3|wav|ogg)$`)

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalid("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	return nil
}

func validateAudioFile(audioFile string) error {
	if audioFile == "" {
		return invalid("audioFile", "is required")
	}
	if !audioFilePattern.MatchString(audioFile) {
		return invalid("audioFile", "unsupported audio format (mp3, wav, ogg)")
	}
	return nil
}

func validateDuration(duration *int) error {
	if duration != nil && *duration < 1 {
		return invalid("duration", "must be at least 1 second")
	}
	return nil
}

func normalizeSong(song types.Song) types.Song {
	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)
	song.CoverImage = strings.TrimSpace(song.CoverImage)
	song.AudioFile = strings.TrimSpace(song.AudioFile)
	if song.CoverImage == "" {
		song.CoverImage = types.DefaultCoverImage
	}
	if song.Genre != nil && strings.TrimSpace(*song.Genre) == "" {
		song.Genre = nil
	}
	return song
}

func validateSong(song types.Song) error {
	if err := validateTitle(song.Title); err != nil {
		return err
	}
	if song.Artist == "" {
		return invalid("artist", "is required")
	}
	if err := validateAudioFile(song.AudioFile); err != nil {
		return err
	}
	if err := validateDuration(song.Duration); err != nil {
		return err
	}
	if song.Genre != nil && !slices.Contains(types.Genres, *song.Genre) {
		return invalid("genre", "must be one of "+strings.Join(types.Genres, ", "))
	}
	return nil
}

func normalizeVocal(vocal types.VocalRecording) types.VocalRecording {
	vocal.Title = strings.TrimSpace(vocal.Title)
	vocal.AudioFile = strings.TrimSpace(vocal.AudioFile)
	return vocal
}

func validateVocal(vocal types.VocalRecording) error {
	if err := validateTitle(vocal.Title); err != nil {
		return err
	}
	if err := validateAudioFile(vocal.AudioFile); err != nil {
		return err
	}
	return validateDuration(vocal.Duration)
}

var recordingTypes = []string{types.RecordingTypeSession, types.RecordingTypeIntro, types.RecordingTypeBreak}

func normalizeRecording(rec types.Recording) types.Recording {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.AudioFile = strings.TrimSpace(rec.AudioFile)
	rec.Type = strings.ToLower(strings.TrimSpace(rec.Type))
	if rec.Type == "" {
		rec.Type = types.RecordingTypeSession
	}
	return rec
}

func validateRecording(rec types.Recording) error {
	if err := validateTitle(rec.Title); err != nil {
		return err
	}
	if !slices.Contains(recordingTypes, rec.Type) {
		return invalid("type", "must be one of "+strings.Join(recordingTypes, ", "))
	}
	return validateAudioFile(rec.AudioFile)
}

func normalizeChordNote(note types.ChordNote) types.ChordNote {
	note.ChordProgression = strings.TrimSpace(note.ChordProgression)
	return note
}

func validateChordNote(note types.ChordNote) error {
	if note.ChordProgression == "" {
		return invalid("chordProgression", "is required")
	}
	if note.Position != nil && *note.Position < 0 {
		return invalid("position", "must not be negative")
	}
	return nil
}
