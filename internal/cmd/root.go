// Package cmd implements the firespread command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pyrelab/firespread/internal/observability"
)

var cfgFile string

// versionInfo holds build-time version information, injected via
// SetVersionInfo from main.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build-time version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "firespread",
	Short: "Staged fire-spread simulation driver for GRASS GIS",
	Long: `firespread drives GRASS GIS fire-spread simulations whose input
conditions change over time.

A scenario file declares the simulation horizon, the times at which fuel
moisture and wind rasters change, and the input rasters themselves.
firespread splits the horizon into segments, runs r.ros and r.spread for
each segment with the parameters in effect, and chains each segment's
output raster into the next segment's starting conditions.

Commands must run inside an established GRASS session (GISRC set).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.firespread/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("log-structured", false, "Emit structured JSON logs")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.structured", rootCmd.PersistentFlags().Lookup("log-structured"))
}

// setDefaults registers configuration defaults with viper.
func setDefaults() {
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.structured", false)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("data_dir", defaultDataDir())
}

// defaultDataDir is where the run registry and config live.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".firespread"
	}
	return filepath.Join(home, ".firespread")
}

// runsRoot is the run registry root under the data dir.
func runsRoot() string {
	return filepath.Join(viper.GetString("data_dir"), "runs")
}

func initConfig() error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(defaultDataDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FIRESPREAD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	observability.InitCLILogger(viper.GetString("logging.level"), viper.GetBool("logging.structured"))
	return nil
}

// ExitCodeError carries the process exit code alongside the error chain.
type ExitCodeError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error { return e.Err }

// exitError creates an error that causes the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitCodeError{Code: code, Message: message, Err: err}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		var ee *ExitCodeError
		if errors.As(err, &ee) {
			return ee.Code
		}
		return 1
	}
	return 0
}
