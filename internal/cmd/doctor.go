package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyrelab/firespread/internal/observability"
)

var doctorPublish bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the environment and suggest fixes for
common issues.

Examples:
  firespread doctor            # GRASS environment check
  firespread doctor --publish  # Also check object storage credentials`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorPublish, "publish", false, "Also run publish (S3 credential) checks")
}

// grassModules are the external modules a run invokes.
var grassModules = []string{"r.ros", "r.spread", "g.remove", "r.null", "r.colors", "g.findfile", "r.out.gdal"}

func runDoctor(cmd *cobra.Command, args []string) {
	observability.CLILogger.Info("=== firespread doctor ===")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Running diagnostic checks...")
	observability.CLILogger.Info("")

	allChecks := true
	checkNum := 1
	totalChecks := 5
	if doctorPublish {
		totalChecks = 6
	}

	// Check 1: Go version
	goVersion := runtime.Version()
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking Go version... ✅ %s", checkNum, totalChecks, goVersion),
		zap.String("go_version", goVersion))
	checkNum++

	// Check 2: GRASS session
	if gisrc := os.Getenv("GISRC"); gisrc != "" {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking GRASS session... ✅ GISRC=%s", checkNum, totalChecks, gisrc),
			zap.String("gisrc", gisrc))
	} else {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking GRASS session... ❌ GISRC is not set", checkNum, totalChecks))
		printGrassSessionHelp()
		allChecks = false
	}
	checkNum++

	// Check 3: GRASS modules on PATH
	missing := 0
	for _, module := range grassModules {
		if _, err := exec.LookPath(module); err != nil {
			missing++
		}
	}
	if missing == 0 {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking GRASS modules... ✅ all %d found", checkNum, totalChecks, len(grassModules)))
	} else {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking GRASS modules... ❌ %d of %d missing from PATH", checkNum, totalChecks, missing, len(grassModules)))
		allChecks = false
	}
	checkNum++

	// Check 4: Data directory
	dataDir := defaultDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking data directory... ❌ cannot create %s", checkNum, totalChecks, dataDir),
			zap.Error(err))
		allChecks = false
	} else {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking data directory... ✅ %s", checkNum, totalChecks, dataDir),
			zap.String("data_dir", dataDir))
	}
	checkNum++

	// Check 5: Environment
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking environment... ✅ %s/%s", checkNum, totalChecks, runtime.GOOS, runtime.GOARCH),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))
	checkNum++

	if doctorPublish {
		allChecks = runPublishChecks(cmd.Context(), checkNum, totalChecks) && allChecks
	}

	observability.CLILogger.Info("")
	if allChecks {
		observability.CLILogger.Info("✅ All checks passed! Your firespread installation is healthy.")
	} else {
		observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	observability.CLILogger.Info("")
	observability.CLILogger.Info("=== End Diagnostics ===")
}

// runPublishChecks verifies object storage credentials are resolvable.
func runPublishChecks(ctx context.Context, checkNum, totalChecks int) bool {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking AWS credentials... ❌ Cannot load AWS config", checkNum, totalChecks),
			zap.Error(err))
		printAWSCredentialsHelp()
		return false
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking AWS credentials... ❌ Cannot retrieve credentials", checkNum, totalChecks),
			zap.Error(err))
		printAWSCredentialsHelp()
		return false
	}

	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking AWS credentials... ✅ Found credentials", checkNum, totalChecks),
		zap.String("access_key", maskAccessKey(creds.AccessKeyID)),
		zap.String("source", creds.Source))
	return true
}

// maskAccessKey masks all but the last 4 characters of an access key.
func maskAccessKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func printGrassSessionHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("firespread must run inside an established GRASS session:")
	observability.CLILogger.Info("  1. Start GRASS with your location and mapset: grass /path/to/location/mapset")
	observability.CLILogger.Info("  2. Run firespread from that shell, or")
	observability.CLILogger.Info("  3. Export GISRC to point at an existing session file")
	observability.CLILogger.Info("")
}

// printAWSCredentialsHelp prints help for configuring AWS credentials.
func printAWSCredentialsHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("To configure AWS credentials:")
	observability.CLILogger.Info("  1. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables, or")
	observability.CLILogger.Info("  2. Run 'aws configure' to set up a profile, or")
	observability.CLILogger.Info("  3. Use IAM role when running on AWS infrastructure")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("For S3-compatible storage (MinIO, Wasabi, etc.), also set:")
	observability.CLILogger.Info("  - the endpoint field in the scenario's publish section")
	observability.CLILogger.Info("")
}
