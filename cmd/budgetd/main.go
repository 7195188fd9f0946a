// budgetd is the budgetbalancer server binary.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"budgetbalancer/internal/cli"
	apphttp "budgetbalancer/internal/http"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "budgetd",
		Short:        "Personal finance server: accounts, CSV import, analytics, debt payoff planning",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.SetupLogger()
			cli.LoadEnvFile()
			cfg := cli.LoadAndValidateConfig(logger)
			repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

			srv := apphttp.NewServer(":"+cfg.Port, repo, apphttp.Options{
				ImportInterval:     cfg.CSVImportInterval,
				RateLimitPerMinute: cfg.RateLimitPerMinute,
				CacheTTL:           cfg.CacheTTL,
				CacheSize:          cfg.CacheSize,
			})
			srv.ReadTimeout = 30 * time.Second
			srv.WriteTimeout = 30 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown error", "error", err)
				}
				if err := repo.Close(); err != nil {
					logger.Error("Storage close error", "error", err)
				}
			})

			logger.Info("Server starting", "addr", srv.Addr, "version", version)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Server failed", "error", err)
				return err
			}

			cli.WaitForShutdown(ctx, done)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the budgetd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("budgetd", version)
		},
	}
}
