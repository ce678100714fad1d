package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/musiccompanion/apiserver/config"
	"github.com/musiccompanion/apiserver/internal/auth"
	"github.com/musiccompanion/apiserver/internal/db"
	"github.com/musiccompanion/apiserver/internal/handlers"
	"github.com/musiccompanion/apiserver/internal/metrics"
	"github.com/musiccompanion/apiserver/internal/mq"
	"github.com/musiccompanion/apiserver/internal/ratelimit"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/internal/storage"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/internal/worker"
	"go.uber.org/zap"
)

// Server wraps the HTTP server, the router and every connection it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *zap.Logger
	db         *sql.DB
	bus        mq.Backend
	redis      *redis.Client
	cleaner    *worker.MediaCleaner
	stopWorker context.CancelFunc
}

// New connects to every configured backend and builds the router.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (_ *Server, err error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{log: log}
	defer func() {
		if err != nil {
			s.closeBackends()
		}
	}()

	s.db, err = db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s.bus, err = mq.Open(ctx, cfg.MQ)
	if err != nil {
		return nil, fmt.Errorf("open mq: %w", err)
	}
	var bus services.Publisher
	if s.bus != nil {
		bus = s.bus
	}
	events := services.NewEventPublisher(bus, log)

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	userRepo := store.NewUserRepository(s.db)
	songRepo := store.NewSongRepository(s.db)
	vocalRepo := store.NewVocalRecordingRepository(s.db)
	recordingRepo := store.NewRecordingRepository(s.db)

	var media *services.MediaService
	if objects != nil {
		media = services.NewMediaService(objects).WithReferences(songRepo, vocalRepo, recordingRepo)
		log.Info("media storage enabled", zap.String("backend", cfg.Storage.Backend), zap.String("bucket", objects.Bucket()))
	}

	s.redis, err = ratelimit.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	throttle := ratelimit.NewLoginThrottle(s.redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	if throttle == nil {
		log.Warn("REDIS_ADDR not set, login throttling disabled")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	songs := services.NewSongService(songRepo, events)
	vocals := services.NewVocalRecordingService(vocalRepo, events)

	s.router = handlers.NewRouter(handlers.Dependencies{
		Log:                  log,
		Metrics:              m,
		Tokens:               auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Throttle:             throttle,
		DB:                   s.db,
		Users:                services.NewUserService(userRepo, events),
		Admin:                services.NewAdminService(userRepo, songs, vocals, events),
		Songs:                songs,
		Vocals:               vocals,
		Recordings:           services.NewRecordingService(recordingRepo, songRepo),
		ChordNotes:           services.NewChordNoteService(store.NewChordNoteRepository(s.db), songRepo),
		Feed:                 services.NewFeedService(songRepo, vocalRepo),
		Media:                media,
		RequireAuthForWrites: cfg.Auth.RequireAuthForWrites,
	})

	// The in-process bus has no other consumers, so media cleanup runs here.
	if cfg.MQ.Backend == config.MQBackendMemory && media != nil {
		s.cleaner = worker.NewMediaCleaner(s.bus, media, log.Named("cleanup"))
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	if s.cleaner != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopWorker = cancel
		go func() {
			if err := s.cleaner.Run(ctx); err != nil {
				s.log.Error("media cleanup stopped", zap.Error(err))
			}
		}()
	}

	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and then closes every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.stopWorker != nil {
		s.stopWorker()
	}
	s.closeBackends()
	return err
}

func (s *Server) closeBackends() {
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.log.Warn("close mq", zap.Error(err))
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
