package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/capture"
	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/events"
	"github.com/kozaktomas/smart-attendance/internal/logger"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/kozaktomas/smart-attendance/internal/storage"
	"github.com/kozaktomas/smart-attendance/internal/storage/mariadb"
	"github.com/kozaktomas/smart-attendance/internal/storage/postgres"
	"github.com/kozaktomas/smart-attendance/internal/storage/redis"
	"github.com/kozaktomas/smart-attendance/internal/storage/sqlite"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds everything an intent needs. Close releases backends in reverse order.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	backend storage.Backend
	oracle  ai.FaceComparer
	camera  camera.Camera
	service *attendance.Service
	closers []io.Closer
}

// newApp wires the service from configuration. reporter receives every Status update.
func newApp(ctx context.Context, cfg *config.Config, reporter status.Reporter) (*app, error) {
	log := logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})
	a := &app{cfg: cfg, log: log}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		redisClient = client
		a.closers = append(a.closers, client)
	}

	backend, err := openBackend(ctx, cfg, redisClient, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.backend = backend
	a.closers = append(a.closers, backend)

	oracle, err := newOracle(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.oracle = oracle

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c, ok := publisher.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.camera = newCamera(&cfg.Camera)
	a.service = attendance.NewService(attendance.Deps{
		Roster:    storage.NewRosterStore(backend, logger.Component(log, "roster")),
		Records:   storage.NewRecordStore(backend, logger.Component(log, "records")),
		Capturer:  capture.New(reporter, capture.WithLogger(logger.Component(log, "capture"))),
		Camera:    a.camera,
		Resolver:  attendance.NewResolver(oracle, logger.Component(log, "resolver")),
		Locker:    newLocker(cfg, redisClient, logger.Component(log, "lock")),
		Publisher: publisher,
		Reporter:  reporter,
		Logger:    logger.Component(log, "attendance"),
	})
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// openBackend opens the blob backend named by STORAGE_BACKEND.
func openBackend(ctx context.Context, cfg *config.Config, redisClient *goredis.Client, log zerolog.Logger) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case constants.BackendFile:
		return storage.NewFileBackend(cfg.Storage.Dir)
	case constants.BackendMemory:
		return storage.NewMemoryBackend(), nil
	case constants.BackendSQLite:
		return sqlite.Open(cfg.Storage.SQLitePath)
	case constants.BackendPostgres:
		if cfg.Database.URL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required for the postgres backend")
		}
		return postgres.Open(&cfg.Database, logger.Component(log, "postgres"))
	case constants.BackendMariaDB:
		if cfg.MariaDB.DSN == "" {
			return nil, errors.New("MARIADB_DSN environment variable is required for the mariadb backend")
		}
		return mariadb.Open(cfg.MariaDB.DSN)
	case constants.BackendRedis:
		if redisClient == nil {
			return nil, errors.New("REDIS_ADDR environment variable is required for the redis backend")
		}
		return redis.NewBackend(redisClient), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use %s, %s, %s, %s, %s or %s)", cfg.Storage.Backend,
			constants.BackendFile, constants.BackendSQLite, constants.BackendPostgres,
			constants.BackendMariaDB, constants.BackendRedis, constants.BackendMemory)
	}
}

// newOracle creates the face comparison provider named by ORACLE_PROVIDER behind a circuit breaker.
func newOracle(cfg *config.Config, log zerolog.Logger) (ai.FaceComparer, error) {
	mode := cfg.Oracle.MatchMode
	var provider ai.FaceComparer
	switch cfg.Oracle.Provider {
	case constants.ProviderGemini:
		provider = ai.NewGeminiProvider(cfg.Gemini.APIKey, pricing(cfg, ai.GeminiModel), mode)
	case constants.ProviderOpenAI:
		provider = ai.NewOpenAIProvider(cfg.OpenAI.Token, pricing(cfg, string(ai.OpenAIModel)), mode)
	case constants.ProviderOllama:
		provider = ai.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model, pricing(cfg, cfg.Ollama.Model), mode)
	case constants.ProviderLlamaCpp:
		p, err := ai.NewLlamaCppProvider(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model, pricing(cfg, cfg.LlamaCpp.Model), mode)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unknown oracle provider %q (use %s, %s, %s or %s)", cfg.Oracle.Provider,
			constants.ProviderGemini, constants.ProviderOpenAI, constants.ProviderOllama, constants.ProviderLlamaCpp)
	}
	return ai.NewBreakerComparer(provider, constants.BreakerOpenTimeout, logger.Component(log, "oracle")), nil
}

func pricing(cfg *config.Config, model string) ai.RequestPricing {
	p := cfg.GetModelPricing(model)
	return ai.RequestPricing{Input: p.Input, Output: p.Output}
}

// newCamera picks the snapshot URL first, then the file path, else no camera.
func newCamera(cfg *config.CameraConfig) camera.Camera {
	switch {
	case cfg.URL != "":
		return camera.NewHTTPCamera(cfg.URL, cfg.Username, cfg.Password)
	case cfg.Path != "":
		return camera.NewFileCamera(cfg.Path)
	default:
		return camera.None{}
	}
}

// newLocker uses a Redis lock when Redis is configured, so several processes can share a backend.
func newLocker(cfg *config.Config, redisClient *goredis.Client, log zerolog.Logger) attendance.Locker {
	if redisClient == nil {
		return attendance.NewKeyedMutex()
	}
	return redis.NewLocker(redisClient, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second, log)
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (attendance.Publisher, error) {
	if cfg.AMQP.URL == "" {
		return events.Nop{}, nil
	}
	cb := events.NewCircuitBreaker("amqp-publisher", logger.Component(log, "events"))
	p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, cb)
	if err != nil {
		return nil, err
	}
	log.Info().Str("queue", cfg.AMQP.Queue).Msg("Publishing attendance events")
	return p, nil
}
