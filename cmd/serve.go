package cmd

import (
	"fmt"

	"github.com/mselser95/polymarket-seeder/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve market previews and artifacts over HTTP",
	Long: `Starts an HTTP server exposing:
  /metrics         Prometheus metrics
  /health          liveness
  /ready           readiness, based on the last feed fetch
  /api/markets     JSON preview of the current selection
  /api/artifact    rendered artifact (?format=bash|solidity|calldata)

Each API request runs an independent selection over a cached feed snapshot.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("factory", "", "Market factory address (overrides FACTORY_ADDRESS)")
	serveCmd.Flags().StringP("port", "p", "", "HTTP port (overrides HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.HTTPPort = port
	}
	factory, _ := cmd.Flags().GetString("factory")

	application, err := app.New(cfg, logger, &app.Options{Factory: factory})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
