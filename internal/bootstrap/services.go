package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/positions-ui/config"
	redisadapter "github.com/target/positions-ui/internal/adapters/redis"
	"github.com/target/positions-ui/internal/apiclient"
	httpx "github.com/target/positions-ui/internal/http"
	"github.com/target/positions-ui/internal/observability/statsd"
	"github.com/target/positions-ui/internal/ports"
	"github.com/target/positions-ui/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	API       *apiclient.Client
	Sessions  *redisadapter.SessionStore
	Views     *redisadapter.ViewStateStore
	Auth      *service.AuthService
	Guard     *service.SessionGuard
	Positions *service.PositionsService
	// Health pings the session store for /healthz.
	Health httpx.Pinger
	// Metrics is never nil; it drops everything when metrics are disabled.
	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the API client, the Redis-backed stores and the services
// that sit on top of them.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require a config")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("service deps require a redis client")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	sink, err := statsd.NewClient(statsd.Config{
		Address: cfg.Observability.Metrics.Address(),
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("metrics: %w", err)
	}
	if sink.Enabled() {
		logger.Info("statsd metrics enabled", "addr", cfg.Observability.Metrics.StatsdAddress)
	}

	api, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		TokenPath:   cfg.API.TokenPath,
		MessagePath: cfg.API.MessagePath,
		Metrics:     sink,
		Logger:      logger,
	})
	if err != nil {
		_ = sink.Close()
		return ServiceContainer{}, fmt.Errorf("api client: %w", err)
	}

	sessions := redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, cfg.Session.KeyPrefix)
	views := redisadapter.NewViewStateStore(redisadapter.ViewStateStoreOptions{
		Client: deps.RedisClient,
		Prefix: cfg.Session.ViewStateKeyPrefix,
		TTL:    cfg.Session.TTL,
	})

	auth := service.NewAuthService(service.AuthServiceOptions{
		Accounts: apiclient.NewAccountClient(api),
		Sessions: sessions,
		Config: service.AuthServiceConfig{
			TTL:    cfg.Session.TTL,
			Logger: logger,
		},
	})

	positions := service.NewPositionsService(service.PositionsServiceOptions{
		Views: views,
		API: func(creds ports.CredentialStore) ports.PositionsAPI {
			return apiclient.NewPositionsClient(api, creds)
		},
		Logger: logger,
	})

	client := deps.RedisClient
	return ServiceContainer{
		API:       api,
		Sessions:  sessions,
		Views:     views,
		Auth:      auth,
		Guard:     service.NewSessionGuard(auth),
		Positions: positions,
		Health: httpx.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}),
		Metrics: sink,
	}, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown serves HTTP until SIGINT/SIGTERM or a server failure,
// then shuts down gracefully.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := cfg.Services.Metrics.Close(); err != nil {
			logger.Warn("statsd close failed", "error", err)
		}
	}()

	server, err := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return serveUntilDone(sigCtx, server, logger)
}

// serveUntilDone runs server until ctx is cancelled or ListenAndServe fails.
func serveUntilDone(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down services...")
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  server,
			Logger:  logger,
		})
	})

	return g.Wait()
}
