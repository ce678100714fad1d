package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

// VocalRecordingRepository defines persistence operations for vocal recordings.
type VocalRecordingRepository interface {
	List(ctx context.Context) ([]types.VocalRecording, error)
	Get(ctx context.Context, id uuid.UUID) (types.VocalRecording, error)
	Create(ctx context.Context, vocal types.VocalRecording) (types.VocalRecording, error)
	Update(ctx context.Context, vocal types.VocalRecording) (types.VocalRecording, error)
	Delete(ctx context.Context, id uuid.UUID) (types.VocalRecording, error)
	Count(ctx context.Context) (int, error)
}

// VocalRecordingService encapsulates vocal recording use-cases.
type VocalRecordingService struct {
	repo   VocalRecordingRepository
	events *EventPublisher
}

func NewVocalRecordingService(repo VocalRecordingRepository, events *EventPublisher) *VocalRecordingService {
	return &VocalRecordingService{repo: repo, events: events}
}

func (s *VocalRecordingService) List(ctx context.Context) ([]types.VocalRecording, error) {
	return s.repo.List(ctx)
}

func (s *VocalRecordingService) Get(ctx context.Context, id uuid.UUID) (types.VocalRecording, error) {
	return s.repo.Get(ctx, id)
}

func (s *VocalRecordingService) Create(ctx context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	vocal = normalizeVocal(vocal)
	if err := validateVocal(vocal); err != nil {
		return types.VocalRecording{}, err
	}
	return s.repo.Create(ctx, vocal)
}

func (s *VocalRecordingService) Update(ctx context.Context, id uuid.UUID, update types.VocalRecordingUpdate) (types.VocalRecording, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.VocalRecording{}, err
	}
	merged := normalizeVocal(update.Apply(current))
	if err := validateVocal(merged); err != nil {
		return types.VocalRecording{}, err
	}
	return s.repo.Update(ctx, merged)
}

func (s *VocalRecordingService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.events.Publish(ctx, Event{
		Type:      EventVocalDeleted,
		ID:        deleted.ID,
		ActorID:   actor,
		MediaKeys: []string{deleted.AudioFile},
	})
	return nil
}

func (s *VocalRecordingService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
