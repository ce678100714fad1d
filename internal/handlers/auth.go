package handlers

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/musiccompanion/apiserver/internal/auth"
	"github.com/musiccompanion/apiserver/internal/metrics"
	"github.com/musiccompanion/apiserver/internal/ratelimit"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

// AuthHandler provides registration, login and the current-user endpoint.
type AuthHandler struct {
	users    *services.UserService
	tokens   *auth.TokenService
	throttle *ratelimit.LoginThrottle
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewAuthHandler constructs an AuthHandler. throttle and m may be nil.
func NewAuthHandler(users *services.UserService, tokens *auth.TokenService, throttle *ratelimit.LoginThrottle, m *metrics.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, throttle: throttle, metrics: m, log: log}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, h *AuthHandler, requireAuth func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(requireAuth).Get("/me", h.Me)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates a new account and returns it with a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeServiceError(w, r, h.log, err, "user")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		writeServiceError(w, r, h.log, fmt.Errorf("issue token: %w", err), "token")
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login verifies credentials and returns a token. Unknown emails, wrong
// passwords and banned accounts are indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	key := ratelimit.Key(req.Email, clientIP(r))
	allowed, retryAfter, err := h.throttle.Allow(r.Context(), key)
	if err != nil {
		h.log.Warn("login throttle unavailable", zap.Error(err))
	}
	if !allowed {
		if h.metrics != nil {
			h.metrics.LoginThrottledTotal.Inc()
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retryAfter.Seconds()))))
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, r, h.log, err, "user")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		writeServiceError(w, r, h.log, fmt.Errorf("issue token: %w", err), "token")
		return
	}
	if err := h.throttle.Reset(r.Context(), key); err != nil {
		h.log.Warn("reset login throttle", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
