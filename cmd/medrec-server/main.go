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

	"github.com/medrec/medrec/internal/config"
	"github.com/medrec/medrec/internal/domain/billing"
	"github.com/medrec/medrec/internal/domain/gateway"
	"github.com/medrec/medrec/internal/domain/identity"
	"github.com/medrec/medrec/internal/domain/imaging"
	"github.com/medrec/medrec/internal/domain/workflow"
	"github.com/medrec/medrec/internal/domain/worklog"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/internal/platform/db"
	"github.com/medrec/medrec/internal/platform/middleware"
	"github.com/medrec/medrec/internal/platform/objectstore"
	"github.com/medrec/medrec/internal/platform/token"
)

const version = "0.1.0"

var serviceDescriptions = map[string]string{
	"gateway":  "Directory page linking the platform services",
	"identity": "Users, patients, medical staff and login",
	"imaging":  "Medical image upload and retrieval",
	"workflow": "Diagnosis reports, medical tests, appointments and work logs",
	"billing":  "Billing records, totals and statistics",
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "medrec-server",
		Short: "Medical Records Platform services",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "serve <service>",
		Short:     "Start one of the platform services",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"gateway", "identity", "imaging", "workflow", "billing"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(args[0])
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, db.PoolConfig{
				URL:      cfg.DatabaseURL,
				AppName:  "medrec-migrate",
				MaxConns: cfg.DBMaxConns,
				MinConns: cfg.DBMinConns,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, db.PoolConfig{
				URL:      cfg.DatabaseURL,
				AppName:  "medrec-migrate",
				MaxConns: cfg.DBMaxConns,
				MinConns: cfg.DBMinConns,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func newLogger(cfg *config.Config, service string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Str("service", service).Logger()
	}
	return logger
}

func newEcho(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	return e
}

func registerMeta(e *echo.Echo, service string, pool *pgxpool.Pool) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": service,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}
	if service != "gateway" {
		e.GET("/", func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]string{
				"service":     service,
				"version":     version,
				"description": serviceDescriptions[service],
			})
		})
	}
}

func runService(service string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, service)

	port, err := cfg.ServicePort(service)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if service != "gateway" {
		pool, err = db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			AppName:  "medrec-" + service,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	e := newEcho(cfg, logger)
	registerMeta(e, service, pool)

	switch service {
	case "gateway":
		gateway.NewHandler(cfg.IdentityURL, cfg.ImagingURL, cfg.WorkflowURL, cfg.BillingURL).RegisterRoutes(e)

	case "identity":
		apiV1 := e.Group("/api/v1")
		issuer := token.NewIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
		audit := worklog.NewService(worklog.NewEntryRepoPG(pool))
		svc := identity.NewService(identity.NewRepoPG(pool), issuer, audit, logger)
		identity.NewHandler(svc).RegisterRoutes(apiV1, auth.Middleware(issuer, svc))

	case "imaging":
		apiV1 := e.Group("/api/v1")
		store, err := objectstore.NewMinioStore(ctx, objectstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to object storage")
			return err
		}
		audit := worklog.NewService(worklog.NewEntryRepoPG(pool))
		svc := imaging.NewService(imaging.NewRepoPG(pool), store, audit, logger)
		imaging.NewHandler(svc).RegisterRoutes(apiV1)

	case "workflow":
		apiV1 := e.Group("/api/v1")
		logSvc := worklog.NewService(worklog.NewEntryRepoPG(pool))
		svc := workflow.NewService(
			workflow.NewReportRepoPG(pool),
			workflow.NewTestRepoPG(pool),
			workflow.NewAppointmentRepoPG(pool),
			logSvc,
			logger,
		)
		workflow.NewHandler(svc).RegisterRoutes(apiV1)
		worklog.NewHandler(logSvc).RegisterRoutes(apiV1)

	case "billing":
		apiV1 := e.Group("/api/v1")
		audit := worklog.NewService(worklog.NewEntryRepoPG(pool))
		svc := billing.NewService(billing.NewRepoPG(pool), audit, logger)
		billing.NewHandler(svc).RegisterRoutes(apiV1)

	default:
		return fmt.Errorf("unknown service %q", service)
	}

	// Start the server and wait for a shutdown signal.
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()
	logger.Info().Str("port", port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
