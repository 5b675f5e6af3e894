// Package main is the entrypoint for the MakeX API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/makex/makex-api/internal/auth"
	"github.com/makex/makex-api/internal/config"
	"github.com/makex/makex-api/internal/dbquery"
	"github.com/makex/makex-api/internal/email"
	"github.com/makex/makex-api/internal/filebackend"
	"github.com/makex/makex-api/internal/handler"
	"github.com/makex/makex-api/internal/kv"
	"github.com/makex/makex-api/internal/metrics"
	"github.com/makex/makex-api/internal/middleware"
	"github.com/makex/makex-api/internal/project"
	"github.com/makex/makex-api/internal/push"
	"github.com/makex/makex-api/internal/repository"
	"github.com/makex/makex-api/internal/server"
	"github.com/makex/makex-api/internal/task"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Redis: proxy routes and task streams
	kvStore, err := kv.New(ctx, cfg.RedisURL, cfg.ProxyDomain)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer kvStore.Close()
	logger.Info("connected to Redis")

	// Outbound clients
	authClient := auth.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)
	fileClient := filebackend.New(cfg.FileBackendURL, cfg.FileBackendAPIKey)
	loopsClient := email.New(cfg.LoopsAPIKey)
	projectClient := project.New(cfg.ProjectAPIURL, cfg.ProjectAPIToken)

	var pushClient *push.Client
	if cfg.APNKeyPEM != "" {
		pushClient, err = push.New(push.Config{
			KeyPEM:   cfg.APNKeyPEM,
			KeyID:    cfg.APNKeyID,
			TeamID:   cfg.APNTeamID,
			BundleID: cfg.APNBundleID,
			Sandbox:  cfg.APNSandbox,
		})
		if err != nil {
			logger.Error("failed to initialize push client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("APN_KEY_CONTENTS not set, push notifications disabled")
	}

	recorder := metrics.NewInMemory()

	// Task runtime
	registry := task.NewRegistry()
	deps := task.Deps{
		Contacts: loopsClient,
		Store:    repo,
		Projects: projectClient,
		Devices:  repo,
	}
	if pushClient != nil {
		deps.Push = pushClient
	} else {
		deps.Push = noopPush{}
	}
	if err := task.RegisterAll(registry, deps); err != nil {
		logger.Error("failed to register tasks", "error", err)
		os.Exit(1)
	}

	publisher := task.NewPublisher(kvStore.Client(), registry, logger, recorder)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, kvStore)
	accountHandler := handler.NewAccountHandler(authClient, logger)
	appHandler := handler.NewAppHandler(repo, logger)
	deviceHandler := handler.NewDeviceHandler(repo, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(repo, logger)
	integrationHandler := handler.NewIntegrationHandler(repo, logger)
	shareHandler := handler.NewShareHandler(repo, logger)
	dbHandler := handler.NewDBHandler(dbquery.NewExecutor(), logger)
	fileHandler := handler.NewFileHandler(fileClient, logger)
	waitlistHandler := handler.NewWaitlistHandler(publisher, logger)
	opsHandler := handler.NewOpsHandler(repo, kvStore, cfg.StuckAppThreshold, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(routerDeps{
		cfg:          cfg,
		logger:       logger,
		authClient:   authClient,
		recorder:     recorder,
		health:       healthHandler,
		account:      accountHandler,
		app:          appHandler,
		device:       deviceHandler,
		subscription: subscriptionHandler,
		integration:  integrationHandler,
		share:        shareHandler,
		db:           dbHandler,
		file:         fileHandler,
		waitlist:     waitlistHandler,
		ops:          opsHandler,
		metrics:      metricsHandler,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Background worker shares the process with the API server.
	if cfg.TaskWorkerEnabled {
		worker := task.NewWorker(kvStore.Client(), registry, logger, task.NewConsumerID(), recorder)
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Error("task worker error", "error", err)
			}
		}()
		srv.OnShutdown("task_worker", worker.Shutdown)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"worker_enabled", cfg.TaskWorkerEnabled,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// noopPush stands in when APNs credentials are not configured.
type noopPush struct{}

func (noopPush) SendAlert(ctx context.Context, deviceToken string, alert push.Alert) error {
	return nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg        *config.Config
	logger     *slog.Logger
	authClient *auth.Client
	recorder   metrics.Recorder

	health       *handler.HealthHandler
	account      *handler.AccountHandler
	app          *handler.AppHandler
	device       *handler.DeviceHandler
	subscription *handler.SubscriptionHandler
	integration  *handler.IntegrationHandler
	share        *handler.ShareHandler
	db           *handler.DBHandler
	file         *handler.FileHandler
	waitlist     *handler.WaitlistHandler
	ops          *handler.OpsHandler
	metrics      *handler.MetricsHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.SecurityHeaders(d.cfg.IsDevelopment()))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	if origins := d.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	// Root info endpoint
	r.Get("/", handler.Hello)

	authCfg := middleware.AuthConfig{
		Logger:    d.logger,
		Validator: d.authClient,
		Metrics:   d.recorder,
	}

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Get("/share", d.share.Get)
		r.Post("/db", d.db.Query)
		r.Post("/waitlist", d.waitlist.Join)

		// Authenticated endpoints: one auth round trip per request
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Delete("/account", d.account.Delete)
			r.Post("/app/remix", d.app.Remix)
			r.Get("/apps", d.app.List)
			r.Post("/device", d.device.Register)
			r.Get("/integrations/supabase", d.integration.Supabase)
			r.Get("/subscription", d.subscription.Get)
			r.Get("/file", d.file.Get)
		})

		// Maintenance surface guarded by the ops service key
		r.Group(func(r chi.Router) {
			r.Use(middleware.ServiceKey(d.logger, d.cfg.OpsKeyHash))

			r.Post("/ops/reset-stuck-apps", d.ops.ResetStuckApps)
			r.Put("/ops/proxy-route", d.ops.SetProxyRoute)
			r.Delete("/ops/proxy-route", d.ops.DeleteProxyRoute)
			r.Get("/ops/metrics", d.metrics.Metrics)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
