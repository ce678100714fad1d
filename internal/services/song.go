package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

// SongRepository defines persistence operations for songs.
type SongRepository interface {
	List(ctx context.Context, filter types.SongFilter) ([]types.Song, error)
	Get(ctx context.Context, id uuid.UUID) (types.Song, error)
	Create(ctx context.Context, song types.Song) (types.Song, error)
	Update(ctx context.Context, song types.Song) (types.Song, error)
	Delete(ctx context.Context, id uuid.UUID) (types.Song, error)
	Count(ctx context.Context) (int, error)
}

// SongService encapsulates song use-cases.
type SongService struct {
	repo   SongRepository
	events *EventPublisher
}

func NewSongService(repo SongRepository, events *EventPublisher) *SongService {
	return &SongService{repo: repo, events: events}
}

func (s *SongService) List(ctx context.Context, filter types.SongFilter) ([]types.Song, error) {
	return s.repo.List(ctx, filter)
}

func (s *SongService) Get(ctx context.Context, id uuid.UUID) (types.Song, error) {
	return s.repo.Get(ctx, id)
}

func (s *SongService) Create(ctx context.Context, song types.Song) (types.Song, error) {
	song = normalizeSong(song)
	if err := validateSong(song); err != nil {
		return types.Song{}, err
	}
	created, err := s.repo.Create(ctx, song)
	if err != nil {
		return types.Song{}, err
	}
	s.events.Publish(ctx, Event{Type: EventSongCreated, ID: created.ID, ActorID: created.CreatedBy})
	return created, nil
}

// Update merges the allow-listed fields onto the stored song and
// validates the result before writing it.
func (s *SongService) Update(ctx context.Context, id uuid.UUID, update types.SongUpdate) (types.Song, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Song{}, err
	}
	merged := normalizeSong(update.Apply(current))
	if err := validateSong(merged); err != nil {
		return types.Song{}, err
	}
	return s.repo.Update(ctx, merged)
}

func (s *SongService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.events.Publish(ctx, Event{
		Type:      EventSongDeleted,
		ID:        deleted.ID,
		ActorID:   actor,
		MediaKeys: []string{deleted.AudioFile, deleted.CoverImage},
	})
	return nil
}

func (s *SongService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
