// Package app assembles CohortMap components from configuration and runs
// the HTTP and gRPC servers.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/config"
	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	redisinfra "github.com/turtacn/CohortMap/internal/infrastructure/database/redis"
	"github.com/turtacn/CohortMap/internal/infrastructure/filesource"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CohortMap/internal/infrastructure/storage/minio"
	grpcserver "github.com/turtacn/CohortMap/internal/interfaces/grpc"
	httpserver "github.com/turtacn/CohortMap/internal/interfaces/http"
	"github.com/turtacn/CohortMap/internal/interfaces/http/handlers"
	"github.com/turtacn/CohortMap/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App holds the assembled components of one process.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Service   orgchart.Service
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	source    *filesource.Source
	redis     *redisinfra.Client
	objects   *minio.Client
	checkers  []handlers.HealthChecker
	closers   []func() error
	closeOnce bool
}

// New connects the configured backends and builds the service.  Backends
// that fail to connect abort construction; everything already opened is
// closed again.
func New(cfg *config.Config, logger logging.Logger) (a *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config must not be nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		a.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableGoMetrics:      true,
			EnableProcessMetrics: true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
		a.Metrics = prometheus.NewAppMetrics(a.Collector)
	}

	if cfg.UsesRedis() {
		a.redis, err = redisinfra.NewClient(redisinfra.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.redis.Close)
		a.checkers = append(a.checkers, handlers.CheckFunc{ComponentName: "redis", Fn: a.redis.Ping})
	}

	var memo orgchart.Memo = orgchart.NewLRUMemo(cfg.Cache.Size, cfg.Cache.TTL)
	if cfg.Cache.Backend == config.BackendRedis {
		memo = redisinfra.NewMemoStore(a.redis, cfg.Cache.TTL, logger)
	}
	var sessions orgchart.SessionStore = orgchart.NewMemorySessionStore(cfg.Session.MaxSessions, cfg.Session.TTL)
	if cfg.Session.Backend == config.BackendRedis {
		sessions = redisinfra.NewSessionStore(a.redis, cfg.Session.TTL)
	}

	var artifacts orgchart.ArtifactStore
	if cfg.MinIO.Enabled {
		a.objects, err = minio.NewClient(minio.Config{
			Endpoint:      cfg.MinIO.Endpoint,
			AccessKey:     cfg.MinIO.AccessKey,
			SecretKey:     cfg.MinIO.SecretKey,
			UseSSL:        cfg.MinIO.UseSSL,
			Region:        cfg.MinIO.Region,
			Bucket:        cfg.MinIO.Bucket,
			PresignExpiry: cfg.MinIO.PresignExpiry,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.objects.Close)
		a.checkers = append(a.checkers, handlers.CheckFunc{ComponentName: "object_store", Fn: a.objects.HealthCheck})
		artifacts = minio.NewArtifactStore(a.objects, logger)
	}

	var source orgchart.Source
	if cfg.Sources.Configured() {
		a.source = filesource.New(cfg.Sources.InternsPath, cfg.Sources.LeadsPath)
		source = a.source
	}

	builder, err := NewBuilder(cfg.Hierarchy)
	if err != nil {
		return nil, err
	}

	deps := orgchart.Deps{
		Builder:   builder,
		Sessions:  sessions,
		Memo:      memo,
		Artifacts: artifacts,
		Source:    source,
		Settings: orgchart.Settings{
			Epsilon:          cfg.Hierarchy.DisplayEpsilon,
			PreviewRows:      cfg.Hierarchy.PreviewRows,
			DefaultThreshold: cfg.Hierarchy.DefaultThreshold,
			ThresholdOptions: cfg.Hierarchy.ThresholdOptions,
		},
	}
	if a.Metrics != nil {
		deps.Metrics = a.Metrics
	}
	a.Service = orgchart.NewService(deps, logger)
	a.checkers = append([]handlers.HealthChecker{handlers.CheckFunc{ComponentName: "sessions", Fn: a.Service.Ready}}, a.checkers...)
	return a, nil
}

// NewBuilder returns a hierarchy builder for the configured structure and
// duplicate policy.
func NewBuilder(cfg config.HierarchyConfig) (*hierarchy.Builder, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return hierarchy.NewBuilder(
		hierarchy.WithStructure(cfg.Structure()),
		hierarchy.WithDuplicatePolicy(policy),
	), nil
}

// LoadSources loads the configured files into the default session.  It is a
// no-op without configured sources.
func (a *App) LoadSources(ctx context.Context) error {
	if a.source == nil {
		return nil
	}
	res, err := a.Service.Reload(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("default dataset loaded",
		logging.Int("intern_rows", res.Interns.Rows),
		logging.Int("lead_rows", res.Leads.Rows),
		logging.Strings("regions", res.Regions),
	)
	return nil
}

// RouterConfig wires the HTTP handlers and middleware for the assembled
// service.
func (a *App) RouterConfig() httpserver.RouterConfig {
	cfg := a.Config
	session := middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
		TTL:        cfg.Session.TTL,
	}

	hierarchyHandler := handlers.NewHierarchyHandler(a.Service, session, cfg.Server.MaxUploadSize)
	healthHandler := handlers.NewHealthHandler(Version, a.checkers...)
	if a.Metrics != nil {
		m := a.Metrics
		hierarchyHandler.OnExport(func(kind string, stored bool) { prometheus.RecordExport(m, kind, stored) })
		healthHandler.OnCheck(func(component string, up bool) { prometheus.RecordHealth(m, component, up) })
	}

	routerCfg := httpserver.RouterConfig{
		HierarchyHandler: hierarchyHandler,
		HealthHandler:    healthHandler,
		Session:          session,
		Logger:           a.Logger,
		Metrics:          a.Metrics,
		MetricsCollector: a.Collector,
		MetricsPath:      cfg.Metrics.Path,
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.CORS.AllowedOrigins
		if len(cfg.CORS.AllowedMethods) > 0 {
			cors.AllowedMethods = cfg.CORS.AllowedMethods
		}
		if len(cfg.CORS.AllowedHeaders) > 0 {
			cors.AllowedHeaders = cfg.CORS.AllowedHeaders
		}
		cors.MaxAge = int(cfg.CORS.MaxAge / time.Second)
		routerCfg.CORS = &cors
	}
	if cfg.RateLimit.Enabled {
		routerCfg.UploadLimiter = middleware.NewTokenBucketLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 0)
	}
	return routerCfg
}

// Handler returns the complete HTTP route tree.
func (a *App) Handler() http.Handler {
	return httpserver.NewRouter(a.RouterConfig())
}

// Run serves HTTP, gRPC (when a port is configured) and the source watcher
// (when enabled) until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	cfg := a.Config
	if err := a.LoadSources(ctx); err != nil {
		a.Logger.Error("initial dataset load failed; serving uploads only", logging.Err(err))
	}

	httpSrv := httpserver.NewServer(cfg.Server, a.Handler(), a.Logger)

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCPort > 0 {
		var err error
		grpcSrv, err = grpcserver.NewServer(cfg.Server,
			grpcserver.WithLogger(a.Logger),
			grpcserver.WithMetrics(a.Metrics),
			grpcserver.WithReadiness(a.Service.Ready, 0),
		)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Start)
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}
	if a.source != nil && cfg.Sources.Watch {
		w := filesource.NewWatcher(a.source, a.LoadSources, cfg.Sources.Debounce, a.Logger)
		g.Go(func() error { return w.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		var firstErr error
		if err := httpSrv.Stop(shutdownCtx); err != nil {
			firstErr = err
		}
		if grpcSrv != nil {
			if err := grpcSrv.Stop(shutdownCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	a.Logger.Info("cohortmap started",
		logging.String("version", Version),
		logging.String("http_addr", cfg.Server.Addr()),
		logging.Int("grpc_port", cfg.Server.GRPCPort),
	)
	return g.Wait()
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close() error {
	if a.closeOnce {
		return nil
	}
	a.closeOnce = true
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

//Personal.AI order the ending
