package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"rpa-agent/internal/api"
	"rpa-agent/internal/auth"
	"rpa-agent/internal/config"
	"rpa-agent/internal/logging"
	"rpa-agent/internal/mcp"
	"rpa-agent/internal/repository"
	"rpa-agent/internal/runner"
	"rpa-agent/internal/services"
	"rpa-agent/internal/tls"
)

func main() {
	ctx := context.Background()

	logger := logging.NewLogger()
	defer logger.Sync()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		log.Fatalf("configuration loading failed: %v", err)
	}
	logger.Info("configuration loaded",
		"environment", cfg.Environment,
		"addr", cfg.Server.Addr,
		"store_driver", cfg.Store.Driver,
		"auth_enabled", cfg.Auth.Enable,
		"config_file", viper.ConfigFileUsed(),
	)

	logger.Info("starting rpa workflow control plane")

	// Runner environment: project root, script and log directories,
	// interpreter resolution.
	env, err := runner.NewEnvironment(
		cfg.Runner.ProjectRoot,
		cfg.Runner.ScriptsDir,
		cfg.Runner.LogsDir,
		cfg.Runner.Interpreter,
	)
	if err != nil {
		logger.Error("failed to initialize runner environment", "error", err)
		log.Fatalf("runner environment initialization failed: %v", err)
	}
	logger.Info("runner environment ready",
		"project_root", env.ProjectRoot(),
		"logs_dir", env.LogsDir(),
		"interpreter", env.Interpreter(),
	)

	// Workflow store: in-memory by default, postgres when configured.
	store, cleanup, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize workflow store", "error", err)
		log.Fatalf("workflow store initialization failed: %v", err)
	}
	defer cleanup()

	// Process tracking and dispatch.
	registry := runner.NewRegistry()
	history := runner.NewHistory()
	dispatcher := runner.NewDispatcher(env, registry, logger)
	reporter := runner.NewStatusReporter(registry)
	controller := runner.NewController(registry, logger)

	// Service layer.
	catalog := services.DefaultCatalog()
	taskService := services.NewTaskService(catalog, dispatcher, history, logger)
	workflowService := services.NewWorkflowService(store, dispatcher, history, logger)

	logger.Info("service layer initialized", "tasks", catalog.Names())

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("rpa-agent"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	// Initialize authentication
	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	// Mount REST API handlers behind auth (pass-through when disabled).
	apiServer := api.NewServer(store, taskService, workflowService, reporter, controller, registry, env, history, logger)
	apiServer.RegisterRoutes(e, echo.WrapMiddleware(authz.RequireAuth))

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(taskService, reporter, controller)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", "error", err)
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			log.Fatalf("server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("server close error", "error", err)
			}
		}

		// Children keep running deliberately; restarting the control plane
		// must not kill in-flight workflows.
		logger.Info("server stopped gracefully")
	}
}

// initStore builds the configured workflow store. The returned cleanup
// closes the database pool when one was opened.
func initStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (repository.WorkflowStore, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := initDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresWorkflowStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		logger.Info("database connected", "host", cfg.Store.DB.Host, "name", cfg.Store.DB.Name)
		return store, pool.Close, nil
	case "memory", "":
		logger.Info("using in-memory workflow store")
		return repository.NewMemoryWorkflowStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Store.DB.Host, cfg.Store.DB.Port, cfg.Store.DB.User,
		cfg.Store.DB.Password, cfg.Store.DB.Name, cfg.Store.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
