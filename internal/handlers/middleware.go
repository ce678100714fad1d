package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/internal/auth"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

var errNoToken = errors.New("missing authorization")

// ActiveUserLoader resolves a user id to a non-banned user.
type ActiveUserLoader interface {
	GetActive(ctx context.Context, id uuid.UUID) (types.User, error)
}

// Authenticator verifies bearer tokens and attaches the token's user to
// the request context. The user is reloaded on every request, so a ban
// takes effect on the next request even though the token stays valid.
type Authenticator struct {
	tokens *auth.TokenService
	users  ActiveUserLoader
	log    *zap.Logger
}

func NewAuthenticator(tokens *auth.TokenService, users ActiveUserLoader, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, users: users, log: log}
}

// RequireAuth rejects the request with 401 unless it carries a valid token
// of an existing, non-banned user.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// OptionalAuth lets anonymous requests through and attaches the user when
// a token is present. A token that is present but invalid is still a 401.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		switch {
		case errors.Is(err, errNoToken):
			next.ServeHTTP(w, r)
		case err != nil:
			writeError(w, http.StatusUnauthorized, "unauthorized")
		default:
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		}
	})
}

func (a *Authenticator) authenticate(r *http.Request) (types.User, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return types.User{}, err
	}

	identity, err := a.tokens.Verify(tokenString)
	if err != nil {
		return types.User{}, err
	}

	user, err := a.users.GetActive(r.Context(), identity.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.log.Error("load user for token", zap.Stringer("user_id", identity.UserID), zap.Error(err))
		}
		return types.User{}, err
	}
	return user, nil
}

// RequireAdmin must run after RequireAuth. It trusts the user record
// loaded by RequireAuth, not the admin claim in the token.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
