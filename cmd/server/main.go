package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/sghss/sghss-api/internal/auth"
	"github.com/sghss/sghss-api/internal/config"
	"github.com/sghss/sghss-api/internal/database"
	"github.com/sghss/sghss-api/internal/handlers"
	"github.com/sghss/sghss-api/internal/logging"
	"github.com/sghss/sghss-api/internal/middleware"
	"github.com/sghss/sghss-api/internal/repository"
	"github.com/sghss/sghss-api/internal/routes"
	"github.com/sghss/sghss-api/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "sghss-api",
		Short:         "Hospital administration API: staff accounts, patients and appointments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.IsProduction())

			db, err := database.Connect(cfg)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			slog.Info("migrations applied")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.IsProduction())

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	systemLogs := repository.NewSystemLogs(db)
	pgLogHandler := logging.NewPGHandler(systemLogs)
	logging.Setup(cfg.IsProduction(), pgLogHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logging.StartCleanup(ctx, systemLogs, cfg.LogRetentionDays)

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessExpiry)
	users := repository.NewUsers(db)
	patients := repository.NewPatients(db)
	appointments := repository.NewAppointments(db)

	authService := services.NewAuthService(users, repository.NewRefreshTokens(db), tokens, cfg.JWTRefreshExpiry)
	patientService := services.NewPatientService(patients)
	appointmentService := services.NewAppointmentService(appointments, patients, users)
	recordService := services.NewMedicalRecordService(repository.NewMedicalRecords(db), appointments)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
			Release:          "sghss-api@" + version,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "sghss-api " + version,
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders(cfg))

	routes.Setup(app, tokens, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, db) }, version),
		Patients:     handlers.NewPatientHandler(patientService),
		Appointments: handlers.NewAppointmentHandler(appointmentService),
		Records:      handlers.NewMedicalRecordHandler(recordService),
	}, routes.DefaultLimits)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "env", cfg.Env, "version", version)
		listenErr <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-listenErr:
		pgLogHandler.Stop()
		database.Close(db)
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
