package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email,
// a wrong password, or a banned account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context, filter types.UserFilter) ([]types.User, error)
	Ban(ctx context.Context, id uuid.UUID, reason *string, bannedBy uuid.UUID) (types.User, error)
	Unban(ctx context.Context, id uuid.UUID) (types.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) (types.User, error)
	Counts(ctx context.Context) (total, banned int, err error)
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo       UserRepository
	events     *EventPublisher
	bcryptCost int
}

func NewUserService(repo UserRepository, events *EventPublisher) *UserService {
	return &UserService{repo: repo, events: events, bcryptCost: bcrypt.DefaultCost}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive loads a user that exists and is not banned.
func (s *UserService) GetActive(ctx context.Context, id uuid.UUID) (types.User, error) {
	return s.repo.GetActiveByID(ctx, id)
}

// Register creates an account. A taken email yields store.ErrConflict.
func (s *UserService) Register(ctx context.Context, name, email, password string) (types.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return types.User{}, invalid("name", "is required")
	}
	if email == "" {
		return types.User{}, invalid("email", "is required")
	}
	if len(password) < minPasswordLength {
		return types.User{}, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return types.User{}, err
	}

	s.events.Publish(ctx, Event{Type: EventUserRegistered, ID: user.ID})
	return user, nil
}

// Authenticate checks credentials and returns the matching active user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	if user.IsBanned {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SetAdmin grants or revokes the administrator flag by email.
func (s *UserService) SetAdmin(ctx context.Context, email string, isAdmin bool) (types.User, error) {
	return s.repo.SetAdmin(ctx, NormalizeEmail(email), isAdmin)
}
