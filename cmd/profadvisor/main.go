package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"profadvisor/config"
	"profadvisor/internal/server"
	"profadvisor/internal/vectorstore/pgvector"
)

func main() {
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "profadvisor"}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return server.Run(cfg)
		},
	}

	var ingest = &cobra.Command{
		Use:   "ingest <link>",
		Short: "Scrape a professor page and ingest its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if cfg.General.DefaultTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.General.DefaultTimeout)
				defer cancel()
			}
			app, err := server.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			count, err := app.IngestLink(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ingested %d reviews\n", count)
			return nil
		},
	}

	var migDir string
	var direction string
	var steps int
	var migrate = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (pgvector backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := os.Getenv("DATABASE_URL")
			if dsn == "" {
				cfg, err := config.LoadConfig(configPath)
				if err != nil {
					return err
				}
				dsn = cfg.Vector.Postgres.DSN()
			}
			return pgvector.Migrate(migDir, dsn, direction, steps)
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", "file://migrations", "migrations source (file://migrations)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")

	root.AddCommand(serve, ingest, migrate)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
