// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/secador-solar/sensorhub/api"
	"github.com/secador-solar/sensorhub/api/middleware"
	"github.com/secador-solar/sensorhub/internal/auth"
	"github.com/secador-solar/sensorhub/internal/cleanup"
	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/hubservice"
	"github.com/secador-solar/sensorhub/internal/locking"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/monitoring"
	"github.com/secador-solar/sensorhub/internal/repository/postgres"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	version    string
	srv        *http.Server
	db         database.DB
	redis      *redis.Client
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	handler    http.Handler
}

// New creates a new server instance
func New(cfg *config.Config, version string) *Server {
	return &Server{
		config:  cfg,
		version: version,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start initializes services, begins listening and blocks until SIGINT or
// SIGTERM.
func (s *Server) Start() error {
	if err := s.Setup(context.Background()); err != nil {
		return err
	}
	defer s.Close()

	// Start server
	go func() {
		logging.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// Setup opens the store, applies migrations and wires services and routes.
func (s *Server) Setup(ctx context.Context) error {
	db, err := OpenDatabase(ctx, s.config.Database)
	if err != nil {
		return err
	}
	s.db = db

	var locker locking.Locker
	if s.config.Redis.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     s.config.Redis.Addr(),
			Password: s.config.Redis.Password,
			DB:       s.config.Redis.DB,
		})
		redisLocker := locking.NewRedisLocker(s.redis, s.config.Redis.LockTTL)
		if err := redisLocker.Ping(ctx); err != nil {
			s.Close()
			return fmt.Errorf("failed to reach redis at %s: %w", s.config.Redis.Addr(), err)
		}
		logging.L.Infof("[Server] Using redis locks at %s", s.config.Redis.Addr())
		locker = redisLocker
	}

	s.monitoring = monitoring.NewService()
	s.hubservice, err = NewHubService(s.config, db, locker, s.monitoring)
	if err != nil {
		s.Close()
		return err
	}

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	router := api.NewRouter(s.hubservice, api.Options{
		Health:         s.handleHealth(),
		Metrics:        s.monitoring.Handler(),
		MetricsPath:    s.config.Monitoring.MetricsPath,
		Recorder:       s.monitoring,
		AllowedOrigins: s.config.CORS.AllowedOrigins,
	})
	s.handler = router.Handler()
	s.srv.Handler = s.handler
	return nil
}

// Handler returns the fully wrapped HTTP handler. Valid after Setup.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// HubService returns the wired service. Valid after Setup.
func (s *Server) HubService() *hubservice.HubService {
	return s.hubservice
}

// Close releases the store and redis connections.
func (s *Server) Close() error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logging.L.Warnf("[Server] Failed to close redis client: %v", err)
		}
		s.redis = nil
	}
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	logging.L.Infof("[Server] Server shut down successfully")
	return nil
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// handleHealth reports liveness and store reachability
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Version: s.version, Database: "ok"}
		code := http.StatusOK
		if err := s.db.Ping(ctx); err != nil {
			logging.L.Warnf("[Server] Health check failed to ping database: %v", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			code = http.StatusServiceUnavailable
		}
		middleware.WriteJSON(w, code, resp)
	}
}

func (s *Server) setupCleanupHandlers() {
	s.hubservice.Cleanup.OnCleanup(cleanup.EventControllerDeleted, func(id string) {
		logging.L.Infof("[Cleanup] Controller %s deleted", id)
		s.monitoring.RecordEvent(cleanup.EventControllerDeleted, map[string]string{
			"controller_id": id,
		})
	})

	s.hubservice.Cleanup.OnCleanup(cleanup.EventEnsayoDeleted, func(id string) {
		logging.L.Infof("[Cleanup] Ensayo %s deleted", id)
		s.monitoring.RecordEvent(cleanup.EventEnsayoDeleted, map[string]string{
			"ensayo_id": id,
		})
	})

	s.hubservice.Cleanup.OnCleanup(cleanup.EventReadingsDeleted, func(id string) {
		logging.L.Infof("[Cleanup] All readings of controller %s deleted", id)
		s.monitoring.RecordEvent(cleanup.EventReadingsDeleted, map[string]string{
			"controller_id": id,
		})
	})

	s.hubservice.Cleanup.OnCleanup(cleanup.EventReadingDeleted, func(id string) {
		s.monitoring.RecordEvent(cleanup.EventReadingDeleted, map[string]string{
			"reading_id": id,
		})
	})
}

// OpenDatabase connects to the configured store and brings its schema up
// to date.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if applied > 0 {
		logging.L.Infof("[Server] Applied %d migration(s), schema at version %d", applied, database.LatestVersion())
	}
	return db, nil
}

// NewHubService creates the repositories and the hub service on db. A nil
// locker selects the in-process keyed mutex; mon may be nil.
func NewHubService(cfg *config.Config, db database.DB, locker locking.Locker, mon *monitoring.Service) (*hubservice.HubService, error) {
	zone, err := cfg.Time.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid time zone: %w", err)
	}
	stamp := clock.NewStamper(clock.System{}, zone)

	svc := hubservice.New(
		postgres.NewControllerRepository(db, stamp),
		postgres.NewEnsayoRepository(db, stamp),
		postgres.NewReadingRepository(db, stamp),
		postgres.NewUserRepository(db, stamp),
		hubservice.Options{
			Locker:     locker,
			Tokens:     auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil),
			Monitoring: mon,
		},
	)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}
