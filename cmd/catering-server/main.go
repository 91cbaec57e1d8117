package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mealtrace/catering/internal/config"
	"github.com/mealtrace/catering/internal/domain/assignment"
	"github.com/mealtrace/catering/internal/domain/audit"
	"github.com/mealtrace/catering/internal/domain/dietplan"
	"github.com/mealtrace/catering/internal/domain/diettype"
	"github.com/mealtrace/catering/internal/domain/hospital"
	"github.com/mealtrace/catering/internal/domain/menuitem"
	"github.com/mealtrace/catering/internal/domain/order"
	"github.com/mealtrace/catering/internal/domain/patient"
	"github.com/mealtrace/catering/internal/domain/reports"
	"github.com/mealtrace/catering/internal/jobs"
	"github.com/mealtrace/catering/internal/platform/auth"
	"github.com/mealtrace/catering/internal/platform/cache"
	"github.com/mealtrace/catering/internal/platform/db"
	"github.com/mealtrace/catering/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:           "catering-server",
		Short:         "Hospital catering and diet management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), migrateCmd(), generateOrdersCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return runServer(ctx, cfg, pool, logger)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) error {
	// Repositories
	auditRepo := audit.NewRepoPG(pool)
	hospitalRepo := hospital.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	dietTypeRepo := diettype.NewRepoPG(pool)
	menuItemRepo := menuitem.NewRepoPG(pool)
	planRepo := dietplan.NewRepoPG(pool)
	orderRepo := order.NewRepoPG(pool)
	assignmentRepo := assignment.NewRepoPG(pool)

	recorder := audit.NewService(auditRepo, logger)
	resolver := diettype.NewPriceResolver(dietTypeRepo)

	// Services
	hospitalSvc := hospital.NewService(hospitalRepo)
	patientSvc := patient.NewService(patientRepo, recorder)
	dietTypeSvc := diettype.NewService(dietTypeRepo)
	menuItemSvc := menuitem.NewService(menuItemRepo)
	planSvc := dietplan.NewService(planRepo, orderRepo, logger)
	orderSvc := order.NewService(orderRepo, recorder)
	assignmentSvc := assignment.NewService(assignmentRepo, patientRepo, resolver, recorder, logger)
	reportsSvc := reports.NewService(assignmentRepo, patientRepo, resolver, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Hospital-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set, using development auth (all requests are admin)")
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(cfg.JWTSecret))
	}

	// Report responses are cached briefly; Redis when configured, in-process
	// otherwise.
	var store middleware.CacheStore
	if cfg.RedisURL != "" {
		rs, err := cache.NewRedisStore(cfg.RedisURL, "catering")
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, falling back to in-memory cache")
			store = middleware.NewInMemoryCacheStore()
		} else {
			defer rs.Close()
			store = rs
		}
	} else {
		store = middleware.NewInMemoryCacheStore()
	}
	reportCache := middleware.ResponseCache(store, 60*time.Second)

	hospital.NewHandler(hospitalSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	diettype.NewHandler(dietTypeSvc).RegisterRoutes(api)
	menuitem.NewHandler(menuItemSvc).RegisterRoutes(api)
	dietplan.NewHandler(planSvc).RegisterRoutes(api)
	order.NewHandler(orderSvc).RegisterRoutes(api)
	assignment.NewHandler(assignmentSvc).RegisterRoutes(api)
	reports.NewHandler(reportsSvc).RegisterRoutes(api, reportCache)

	if cfg.GeneratorEnabled {
		gen := jobs.NewGenerator(planRepo, orderRepo, menuItemRepo, logger)
		sched := jobs.NewScheduler(gen, cfg.GeneratorHour, logger)
		go sched.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return cmd
}

func generateOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-orders",
		Short: "Run the daily order generation once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			gen := jobs.NewGenerator(
				dietplan.NewRepoPG(pool),
				order.NewRepoPG(pool),
				menuitem.NewRepoPG(pool),
				logger,
			)
			report, err := gen.Run(ctx)
			if err != nil {
				return err
			}
			created := 0
			for _, r := range report.Results {
				if r.Action == "created" {
					created++
				}
			}
			logger.Info().Int("plans", report.Count).Int("created", created).Msg("order generation finished")
			return nil
		},
	}
}
