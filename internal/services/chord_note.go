package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

// ChordNoteRepository defines persistence operations for chord notes.
type ChordNoteRepository interface {
	ListBySong(ctx context.Context, songID uuid.UUID) ([]types.ChordNote, error)
	Get(ctx context.Context, id uuid.UUID) (types.ChordNote, error)
	Create(ctx context.Context, note types.ChordNote) (types.ChordNote, error)
	Update(ctx context.Context, note types.ChordNote) (types.ChordNote, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChordNoteService encapsulates chord note use-cases.
type ChordNoteService struct {
	repo  ChordNoteRepository
	songs SongGetter
}

func NewChordNoteService(repo ChordNoteRepository, songs SongGetter) *ChordNoteService {
	return &ChordNoteService{repo: repo, songs: songs}
}

func (s *ChordNoteService) ListBySong(ctx context.Context, songID uuid.UUID) ([]types.ChordNote, error) {
	if _, err := s.songs.Get(ctx, songID); err != nil {
		return nil, err
	}
	return s.repo.ListBySong(ctx, songID)
}

func (s *ChordNoteService) Get(ctx context.Context, id uuid.UUID) (types.ChordNote, error) {
	return s.repo.Get(ctx, id)
}

func (s *ChordNoteService) Create(ctx context.Context, note types.ChordNote) (types.ChordNote, error) {
	if _, err := s.songs.Get(ctx, note.SongID); err != nil {
		return types.ChordNote{}, err
	}
	note = normalizeChordNote(note)
	if err := validateChordNote(note); err != nil {
		return types.ChordNote{}, err
	}
	return s.repo.Create(ctx, note)
}

func (s *ChordNoteService) Update(ctx context.Context, id uuid.UUID, update types.ChordNoteUpdate) (types.ChordNote, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.ChordNote{}, err
	}
	merged := normalizeChordNote(update.Apply(current))
	if err := validateChordNote(merged); err != nil {
		return types.ChordNote{}, err
	}
	return s.repo.Update(ctx, merged)
}

func (s *ChordNoteService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
