package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pyrelab/firespread/internal/observability"
	"github.com/pyrelab/firespread/internal/server"
	"github.com/pyrelab/firespread/pkg/runlog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run status API",
	Long: `Serve a read-only HTTP API over the run registry.

Endpoints:
  GET /healthz            Health probe
  GET /version            Build version
  GET /api/v1/runs        List runs (newest first)
  GET /api/v1/runs/{id}   One run record

Example:
  firespread serve
  firespread serve --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "Listen host")
	serveCmd.Flags().Int("port", 8080, "Listen port")
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	host := viper.GetString("server.host")
	port := viper.GetInt("server.port")

	store := runlog.NewStore(runsRoot())
	srv := server.New(host, port, store, versionInfo.Version, observability.CLILogger)

	observability.CLILogger.Info("Serving run status API",
		zap.String("host", host),
		zap.Int("port", port),
		zap.String("registry", store.RootDir()))

	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		observability.CLILogger.Error("Server failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}
	return nil
}
