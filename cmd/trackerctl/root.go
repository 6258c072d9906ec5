package main

import (
	"context"
	"fmt"
	"time"

	"taskboard-backend/internal/config"
	"taskboard-backend/internal/database"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type options struct {
	envFile      string
	waitAttempts int
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Administrative commands for the task tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if err := godotenv.Load(opts.envFile); err != nil {
				logrus.WithField("file", opts.envFile).Debug("No env file loaded, using system environment variables")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load before reading configuration")
	root.PersistentFlags().IntVar(&opts.waitAttempts, "wait", 30, "Seconds to wait for the database to accept connections")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newAuditCmd(opts),
	)

	return root
}

// connect loads configuration, waits for Postgres and opens a GORM handle.
// Migrations only run when migrate is true.
func connect(ctx context.Context, opts *options, migrate bool) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := database.WaitForReady(ctx, cfg.DatabaseURL, opts.waitAttempts, time.Second); err != nil {
		return nil, nil, err
	}

	db, err := database.Initialize(cfg.DatabaseURL, &database.Options{
		LogLevel:    logger.Silent,
		SkipMigrate: !migrate,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
