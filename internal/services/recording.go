package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

// SongGetter resolves a parent song.
type SongGetter interface {
	Get(ctx context.Context, id uuid.UUID) (types.Song, error)
}

// RecordingRepository defines persistence operations for practice recordings.
type RecordingRepository interface {
	ListBySong(ctx context.Context, songID uuid.UUID) ([]types.Recording, error)
	Get(ctx context.Context, id uuid.UUID) (types.Recording, error)
	Create(ctx context.Context, rec types.Recording) (types.Recording, error)
	Update(ctx context.Context, rec types.Recording) (types.Recording, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecordingService encapsulates practice recording use-cases.
type RecordingService struct {
	repo  RecordingRepository
	songs SongGetter
}

func NewRecordingService(repo RecordingRepository, songs SongGetter) *RecordingService {
	return &RecordingService{repo: repo, songs: songs}
}

// ListBySong returns store.ErrNotFound when the song does not exist.
func (s *RecordingService) ListBySong(ctx context.Context, songID uuid.UUID) ([]types.Recording, error) {
	if _, err := s.songs.Get(ctx, songID); err != nil {
		return nil, err
	}
	return s.repo.ListBySong(ctx, songID)
}

func (s *RecordingService) Get(ctx context.Context, id uuid.UUID) (types.Recording, error) {
	return s.repo.Get(ctx, id)
}

func (s *RecordingService) Create(ctx context.Context, rec types.Recording) (types.Recording, error) {
	if _, err := s.songs.Get(ctx, rec.SongID); err != nil {
		return types.Recording{}, err
	}
	rec = normalizeRecording(rec)
	if err := validateRecording(rec); err != nil {
		return types.Recording{}, err
	}
	return s.repo.Create(ctx, rec)
}

func (s *RecordingService) Update(ctx context.Context, id uuid.UUID, update types.RecordingUpdate) (types.Recording, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Recording{}, err
	}
	merged := normalizeRecording(update.Apply(current))
	if err := validateRecording(merged); err != nil {
		return types.Recording{}, err
	}
	return s.repo.Update(ctx, merged)
}

func (s *RecordingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
