package services

import (
	"context"
	"sort"

	"github.com/musiccompanion/apiserver/types"
)

// FeedService merges songs and vocal recordings into one listing.
type FeedService struct {
	songs  SongRepository
	vocals VocalRecordingRepository
}

func NewFeedService(songs SongRepository, vocals VocalRecordingRepository) *FeedService {
	return &FeedService{songs: songs, vocals: vocals}
}

// All returns every song and vocal recording tagged with its origin,
// newest first.
func (s *FeedService) All(ctx context.Context) ([]types.FeedItem, error) {
	songs, err := s.songs.List(ctx, types.SongFilter{})
	if err != nil {
		return nil, err
	}
	vocals, err := s.vocals.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]types.FeedItem, 0, len(songs)+len(vocals))
	for i := range songs {
		items = append(items, types.FeedItem{Type: types.FeedTypeSong, Song: &songs[i]})
	}
	for i := range vocals {
		items = append(items, types.FeedItem{Type: types.FeedTypeVocal, Vocal: &vocals[i]})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt().After(items[j].CreatedAt())
	})
	return items, nil
}
