package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/musiccompanion/apiserver/internal/auth"
	"github.com/musiccompanion/apiserver/internal/logger"
	"github.com/musiccompanion/apiserver/internal/metrics"
	"github.com/musiccompanion/apiserver/internal/ratelimit"
	"github.com/musiccompanion/apiserver/internal/services"
	"go.uber.org/zap"
)

// Dependencies is everything the API router needs. Metrics, Throttle,
// Media and DB are optional.
type Dependencies struct {
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Tokens   *auth.TokenService
	Throttle *ratelimit.LoginThrottle
	DB       Pinger

	Users      *services.UserService
	Admin      *services.AdminService
	Songs      *services.SongService
	Vocals     *services.VocalRecordingService
	Recordings *services.RecordingService
	ChordNotes *services.ChordNoteService
	Feed       *services.FeedService
	Media      *services.MediaService

	// RequireAuthForWrites puts POST, PUT and DELETE content routes behind
	// RequireAuth. Otherwise they accept anonymous callers.
	RequireAuthForWrites bool
}

// NewRouter builds the full HTTP handler, middleware included.
func NewRouter(deps Dependencies) *chi.Mux {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	authn := NewAuthenticator(deps.Tokens, deps.Users, log)
	read := authn.OptionalAuth
	write := authn.OptionalAuth
	if deps.RequireAuthForWrites {
		write = authn.RequireAuth
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logger.RequestLogging(log),
		middleware.Recoverer,
	)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
		router.Handle("/metrics", deps.Metrics.Handler())
	}
	router.NotFound(NotFound)
	router.MethodNotAllowed(MethodNotAllowed)
	router.Get("/healthz", Healthz(deps.DB))

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/ping", Ping)

		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, NewAuthHandler(deps.Users, deps.Tokens, deps.Throttle, deps.Metrics, log), authn.RequireAuth)
		})
		r.Route("/admin", func(r chi.Router) {
			AdminRouter(r, NewAdminHandler(deps.Admin, log), authn.RequireAuth)
		})

		songs := NewSongHandler(deps.Songs, deps.Feed, log)
		vocals := NewVocalRecordingHandler(deps.Vocals, log)
		recordings := NewRecordingHandler(deps.Recordings, log)
		chords := NewChordNoteHandler(deps.ChordNotes, log)

		r.Route("/songs", func(r chi.Router) {
			r.With(read).Get("/", songs.ListSongs)
			r.With(write).Post("/", songs.CreateSong)
			r.With(read).Get("/all", songs.Feed)

			r.Route("/vocal", func(r chi.Router) {
				r.With(read).Get("/", vocals.List)
				r.With(write).Post("/", vocals.Create)
				r.With(read).Get("/{vocalID}", vocals.Get)
				r.With(write).Put("/{vocalID}", vocals.Update)
				r.With(write).Delete("/{vocalID}", vocals.Delete)
			})

			r.Route("/{songID}", func(r chi.Router) {
				r.With(read).Get("/", songs.GetSong)
				r.With(write).Put("/", songs.UpdateSong)
				r.With(write).Delete("/", songs.DeleteSong)
				r.With(read).Get("/recordings", recordings.ListBySong)
				r.With(write).Post("/recordings", recordings.Create)
				r.With(read).Get("/chords", chords.ListBySong)
				r.With(write).Post("/chords", chords.Create)
			})
		})
		r.Route("/recordings/{recordingID}", func(r chi.Router) {
			r.With(read).Get("/", recordings.Get)
			r.With(write).Put("/", recordings.Update)
			r.With(write).Delete("/", recordings.Delete)
		})
		r.Route("/chords/{chordID}", func(r chi.Router) {
			r.With(read).Get("/", chords.Get)
			r.With(write).Put("/", chords.Update)
			r.With(write).Delete("/", chords.Delete)
		})

		if deps.Media != nil {
			r.Route("/media", func(r chi.Router) {
				MediaRouter(r, NewMediaHandler(deps.Media, deps.Metrics, log), authn.RequireAuth)
			})
		}
	})

	return router
}
