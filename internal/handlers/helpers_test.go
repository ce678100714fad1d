package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/musiccompanion/apiserver/internal/auth"
	"github.com/musiccompanion/apiserver/internal/metrics"
	"github.com/musiccompanion/apiserver/internal/ratelimit"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/internal/storage"
	"github.com/musiccompanion/apiserver/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	tokens  *auth.TokenService
	users   *memUsers
	songs   *memSongs
	vocals  *memVocals
	objects *storage.Memory
	media   *services.MediaService
	metrics *metrics.Metrics
}

type apiOptions struct {
	requireAuthForWrites bool
	throttle             *ratelimit.LoginThrottle
}

func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()
	api := &testAPI{
		t:       t,
		tokens:  auth.NewTokenService(testSecret, time.Hour),
		users:   newMemUsers(),
		songs:   newMemSongs(),
		vocals:  newMemVocals(),
		objects: storage.NewMemory("test"),
		metrics: metrics.New(),
	}
	api.media = services.NewMediaService(api.objects).WithReferences(api.songs, api.vocals)
	userSvc := services.NewUserService(api.users, nil)
	songSvc := services.NewSongService(api.songs, nil)
	api.handler = NewRouter(Dependencies{
		Metrics:              api.metrics,
		Tokens:               api.tokens,
		Throttle:             opts.throttle,
		Users:                userSvc,
		Admin:                services.NewAdminService(api.users, api.songs, api.vocals, nil),
		Songs:                songSvc,
		Vocals:               services.NewVocalRecordingService(api.vocals, nil),
		Recordings:           services.NewRecordingService(newMemRecordings(), api.songs),
		ChordNotes:           services.NewChordNoteService(newMemChordNotes(), api.songs),
		Feed:                 services.NewFeedService(api.songs, api.vocals),
		Media:                api.media,
		RequireAuthForWrites: opts.requireAuthForWrites,
	})
	return api
}

// seedUser stores a user directly and returns it with a valid token.
func (a *testAPI) seedUser(email string, isAdmin bool) (types.User, string) {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(a.t, err)
	user, err := a.users.Create(context.Background(), types.User{
		Name:         "Seeded",
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	})
	require.NoError(a.t, err)
	token, err := a.tokens.Issue(user.ID, isAdmin)
	require.NoError(a.t, err)
	return user, token
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[ErrorResponse](t, rec).Error
}
