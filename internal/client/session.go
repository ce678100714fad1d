package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/musiccompanion/apiserver/types"
)

// Session is the client's single authentication state: the current user
// and token, mirrored to a Store on every change.
type Session struct {
	api   *APIClient
	store Store

	mu      sync.RWMutex
	user    *types.User
	token   string
	loading bool
}

func NewSession(api *APIClient, store Store) *Session {
	return &Session{api: api, store: store, loading: true}
}

// Load restores the persisted user and token. Loading reports true until
// it returns. A corrupt user entry is discarded.
func (s *Session) Load() error {
	defer s.setLoading(false)

	userJSON, hasUser, err := s.store.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	token, _, err := s.store.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !hasUser {
		return nil
	}

	var user types.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		_ = s.store.Remove(KeyUser, KeyToken)
		return nil
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (types.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	res, err := s.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return types.User{}, err
	}
	return res.User, s.persist(res)
}

func (s *Session) Register(ctx context.Context, name, email, password string) (types.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	res, err := s.api.Register(ctx, name, strings.TrimSpace(email), password)
	if err != nil {
		return types.User{}, err
	}
	return res.User, s.persist(res)
}

// Logout forgets the user and token locally. Tokens are not revoked
// server side.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	return s.store.Remove(KeyUser, KeyToken)
}

func (s *Session) User() (types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return types.User{}, false
	}
	return *s.user, true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// API returns an API client authenticated as the current session.
func (s *Session) API() *APIClient {
	return s.api.WithToken(s.Token())
}

func (s *Session) persist(res AuthResult) error {
	if res.Token == "" {
		return errors.New("login response carried no token")
	}
	data, err := json.Marshal(res.User)
	if err != nil {
		return err
	}
	if err := s.store.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	if err := s.store.Set(KeyToken, res.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	user := res.User
	s.mu.Lock()
	s.user = &user
	s.token = res.Token
	s.mu.Unlock()
	return nil
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
