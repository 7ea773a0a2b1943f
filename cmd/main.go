package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/pkg/config"
	"github.com/suteetoe/grantdesk/pkg/database"
	"github.com/suteetoe/grantdesk/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const appName = "grantdesk"

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Grant management API for nonprofits",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// bootstrap loads configuration, initializes the logger and opens the
// migrated database. Every command that touches storage starts here.
func bootstrap(configPath string) (*config.Config, *zap.Logger, *gorm.DB, error) {
	appConfig, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", appConfig.LogConfig()...)

	db, err := database.InitDB(&appConfig.DB, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.MigrateModels(db, model.All()...); err != nil {
		return nil, nil, nil, err
	}
	log.Info("Database migrations applied")

	return appConfig, log, db, nil
}

func migrate(configPath string) error {
	_, log, db, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()
	return database.Close(db)
}
