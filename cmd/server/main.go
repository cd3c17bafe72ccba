package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/internal/config"
	"github.com/diewo77/go-workhours/internal/db"
	"github.com/diewo77/go-workhours/internal/events"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/policy"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "workhours",
	Short: "Work-hours ledger and monthly invoicing backend",
	Long: `workhours records engineering time against projects and closes each
calendar month into a numbered invoice.

Without a subcommand it runs the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `Apply migrations using MIGRATIONS=auto (gorm AutoMigrate) or
MIGRATIONS=sql (embedded SQL files). Use --mode to override.`,
	RunE: runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert permissions, profiles and default master data",
	Example: `  # Seed and make sure an admin account exists
  workhours seed --admin-email admin@example.com`,
	RunE: runSeed,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user id",
	RunE:  runToken,
}

// cfg is loaded once in PersistentPreRunE and shared by every subcommand.
var cfg *config.Config

func init() {
	migrateCmd.Flags().String("mode", "", "auto, sql or off (defaults to MIGRATIONS)")
	seedCmd.Flags().String("admin-email", "", "create or update this user with the admin profile")
	seedCmd.Flags().String("admin-name", "Administrator", "display name for --admin-email")
	tokenCmd.Flags().Uint("user", 0, "user id to put in the token")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd, invoiceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func setup(*cobra.Command, []string) error {
	_ = godotenv.Load()

	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return logger.Setup(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		TimeFormat: cfg.Log.TimeFormat,
		Output:     cfg.Log.Output,
	})
}

func openDB() (*gorm.DB, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return conn, nil
}

func closeDB(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newPublisher connects to the broker when one is configured.
func newPublisher() (events.Publisher, error) {
	if cfg.Events.AMQPURL == "" {
		return events.Nop{}, nil
	}
	return events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger.WithComponent("events"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("server")

	conn, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(conn)

	if err := db.Run(conn, cfg.App.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := db.Seed(conn); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	publisher, err := newPublisher()
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer publisher.Close()

	app := NewApp(conn, cfg, publisher, logger.WithComponent("http"))
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).
			Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = cfg.App.Migrations
	}
	conn, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(conn)

	if err := db.Run(conn, mode); err != nil {
		return err
	}
	log := logger.WithComponent("migrate")
	log.Info().Str("mode", mode).Msg("migrations completed")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	conn, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(conn)

	log := logger.WithComponent("seed")
	if err := db.Seed(conn); err != nil {
		return err
	}
	log.Info().Msg("seeding completed")

	email, _ := cmd.Flags().GetString("admin-email")
	if email == "" {
		return nil
	}
	name, _ := cmd.Flags().GetString("admin-name")
	u, err := db.SeedUser(conn, email, name, "admin")
	if err != nil {
		return err
	}
	log.Info().Uint("user_id", u.ID).Str("email", u.Email).Msg("admin user ready")
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetUint("user")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}

	conn, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(conn)

	if !policy.NewDBProfileResolver(conn).UserActive(cmd.Context(), userID) {
		return fmt.Errorf("user %d does not exist or is deactivated", userID)
	}
	token, err := auth.NewVerifier(cfg.Auth.Secret(cfg.App.Dev), cfg.Auth.Issuer).Issue(userID, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
