package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"file-storage-api/internal"
)

var rootCmd = &cobra.Command{
	Use:           "filestorage",
	Short:         "Per-user file storage HTTP API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := internal.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		return internal.Migrate(cmd.Context(), cfg, logger)
	},
}

var migrateOnStart bool

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before serving")
	}
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := internal.NewLogger(cfg)
	if err != nil {
		return err
	}

	if migrateOnStart {
		if err = internal.Migrate(ctx, cfg, logger); err != nil {
			return err
		}
	}

	app, err := internal.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("init app failed", zap.Error(err))
		return err
	}
	defer app.Close()

	if err = app.InitControllers(); err != nil {
		return err
	}

	return app.Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("filestorage: %v", err)
		os.Exit(1)
	}
}
