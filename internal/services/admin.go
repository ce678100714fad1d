package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

// Counter reports the size of a collection.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AdminService implements moderation and the admin dashboard.
type AdminService struct {
	users  UserRepository
	songs  Counter
	vocals Counter
	events *EventPublisher
}

func NewAdminService(users UserRepository, songs, vocals Counter, events *EventPublisher) *AdminService {
	return &AdminService{users: users, songs: songs, vocals: vocals, events: events}
}

func (s *AdminService) Dashboard(ctx context.Context) (types.Dashboard, error) {
	total, banned, err := s.users.Counts(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}
	songs, err := s.songs.Count(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}
	vocals, err := s.vocals.Count(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}
	return types.Dashboard{
		TotalUsers:           total,
		ActiveUsers:          total - banned,
		BannedUsers:          banned,
		TotalSongs:           songs,
		TotalVocalRecordings: vocals,
	}, nil
}

// Ban suspends a user. Tokens already issued to the user stay
// cryptographically valid but are refused by the auth middleware from the
// next request on, since it only resolves non-banned users.
func (s *AdminService) Ban(ctx context.Context, userID uuid.UUID, reason string, admin types.User) (types.User, error) {
	var reasonPtr *string
	if reason = strings.TrimSpace(reason); reason != "" {
		reasonPtr = &reason
	}
	user, err := s.users.Ban(ctx, userID, reasonPtr, admin.ID)
	if err != nil {
		return types.User{}, err
	}
	s.events.Publish(ctx, Event{Type: EventUserBanned, ID: user.ID, ActorID: &admin.ID})
	return user, nil
}

// Unban clears the ban state without checking that the user was banned.
func (s *AdminService) Unban(ctx context.Context, userID uuid.UUID, admin types.User) (types.User, error) {
	user, err := s.users.Unban(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	s.events.Publish(ctx, Event{Type: EventUserUnbanned, ID: user.ID, ActorID: &admin.ID})
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context, filter types.UserFilter) ([]types.User, error) {
	return s.users.List(ctx, filter)
}
