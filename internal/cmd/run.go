package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyrelab/firespread/internal/observability"
	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/output"
	"github.com/pyrelab/firespread/pkg/preflight"
	"github.com/pyrelab/firespread/pkg/publish"
	"github.com/pyrelab/firespread/pkg/runlog"
	"github.com/pyrelab/firespread/pkg/scenario"
	"github.com/pyrelab/firespread/pkg/schedule"
	"github.com/pyrelab/firespread/pkg/simulate"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fire-spread simulation from a scenario",
	Long: `Run a staged fire-spread simulation as defined in a YAML or JSON
scenario file.

The scenario specifies the simulation horizon, the condition change
times, the input rasters, and the output configuration.

Example:
  firespread run --scenario burn.yaml
  firespread run --scenario burn.yaml --output results.jsonl
  firespread run --scenario burn.yaml --quiet
  firespread run --scenario burn.yaml --dry-run
  firespread run --scenario burn.yaml --detach`,
	RunE: runRun,
}

var (
	runScenarioPath  string
	runOutput        string
	runQuiet         bool
	runDryRun        bool
	runPlan          bool
	runPreflightMode string
	runOverwrite     bool
	runDetach        bool
	runName          string
	runManagedID     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runScenarioPath, "scenario", "s", "", "Path to scenario file (required)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Override output destination")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress progress records and module chatter")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Validate scenario and show plan without executing")
	runCmd.Flags().BoolVar(&runPlan, "plan", false, "Alias for --dry-run")
	runCmd.Flags().StringVar(&runPreflightMode, "preflight", "", "Override preflight mode (plan-only|read-safe)")
	runCmd.Flags().BoolVar(&runOverwrite, "overwrite", false, "Allow replacing rasters from a previous run")
	runCmd.Flags().BoolVar(&runDetach, "detach", false, "Run in the background under the run registry")
	runCmd.Flags().StringVar(&runName, "name", "", "Optional name for detached runs")
	runCmd.Flags().StringVar(&runManagedID, "_managed-run-id", "", "internal: run registry id")
	_ = runCmd.Flags().MarkHidden("_managed-run-id")

	_ = runCmd.MarkFlagRequired("scenario")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := scenario.Load(runScenarioPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load scenario",
			zap.String("path", runScenarioPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid scenario", err)
	}

	observability.CLILogger.Debug("Loaded scenario",
		zap.String("path", runScenarioPath),
		zap.Int("step", sc.Simulation.Step),
		zap.Int("max_time", sc.Simulation.MaxTime),
		zap.Ints("change_times", sc.Simulation.ChangeTimes),
		zap.String("basename", sc.Output.Basename))

	if runOutput != "" {
		sc.Output.Destination = runOutput
	}
	if runPreflightMode != "" {
		switch runPreflightMode {
		case "plan-only", "read-safe":
			sc.Run.Preflight = runPreflightMode
		default:
			return exitError(foundry.ExitInvalidArgument, "Invalid --preflight value",
				fmt.Errorf("unsupported preflight mode: %s", runPreflightMode))
		}
	}
	if runOverwrite {
		sc.Run.Overwrite = true
	}
	if runQuiet {
		enabled := false
		sc.Output.Progress = &enabled
	}

	plan, err := schedule.Build(
		schedule.Time(sc.Simulation.Step),
		schedule.Time(sc.Simulation.MaxTime),
		sc.Simulation.ChangeTimesAsSchedule(),
		sc.Output.Basename,
	)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid simulation schedule", err)
	}

	if runPlan || runDryRun {
		return showRunPlan(sc, plan)
	}

	if runDetach {
		return startDetached()
	}

	return executeRun(ctx, sc, plan)
}

// showRunPlan displays what would be simulated without executing.
func showRunPlan(sc *scenario.Scenario, plan *schedule.Plan) error {
	fmt.Println("=== Simulation Plan (dry-run) ===")
	fmt.Println()
	fmt.Printf("Horizon:      %d minutes (step %d)\n", sc.Simulation.MaxTime, sc.Simulation.Step)
	fmt.Printf("Change times: %v\n", sc.Simulation.ChangeTimes)
	fmt.Printf("Segments:     %d\n", plan.Len())
	fmt.Printf("Start raster: %s\n", sc.Inputs.Start)
	fmt.Println()
	fmt.Println("Segments:")
	for i := 0; i < plan.Len(); i++ {
		seg := plan.Segment(i)
		fmt.Printf("  [%d] t=%d..%d  params[%d]  -> %s\n",
			i, seg.Interval.Start, seg.Interval.End, seg.ParamIndex, seg.Output)
	}
	fmt.Println()
	fmt.Printf("Preflight:    %s\n", sc.Run.Preflight)
	fmt.Printf("Overwrite:    %v\n", sc.Run.Overwrite)
	fmt.Printf("Output:       %s\n", sc.Output.Destination)
	fmt.Printf("Progress:     %v\n", sc.Output.ProgressEnabled())
	if sc.Publish != nil {
		fmt.Printf("Publish:      s3://%s/%s\n", sc.Publish.Bucket, sc.Publish.Prefix)
	}
	fmt.Println()
	fmt.Println("Scenario validated successfully. Remove --dry-run to execute.")
	return nil
}

// startDetached hands the run to the registry executor and returns.
func startDetached() error {
	executor := runlog.NewExecutor(runsRoot())
	rec, err := executor.StartDetached(runScenarioPath, runName, runlog.DetachOptions{Dedupe: true})
	if err != nil {
		observability.CLILogger.Error("Failed to start detached run", zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to start detached run", err)
	}
	fmt.Printf("Started run %s (pid %d)\n", rec.RunID, rec.PID)
	fmt.Printf("  records: %s\n", rec.RecordsPath)
	fmt.Printf("  stderr:  %s\n", rec.StderrPath)
	fmt.Printf("Watch it with: firespread runs\n")
	return nil
}

// executeRun runs the simulation in-process.
func executeRun(ctx context.Context, sc *scenario.Scenario, plan *schedule.Plan) error {
	runID := runManagedID
	if runID == "" {
		runID = uuid.New().String()
	}

	params, err := simulate.FromScenario(sc)
	if err != nil {
		observability.CLILogger.Error("Invalid simulation inputs", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid simulation inputs", err)
	}

	session, err := gis.NewExecSession(gis.ExecConfig{
		Overwrite: sc.Run.Overwrite,
		Quiet:     runQuiet,
	})
	if err != nil {
		observability.CLILogger.Error("No GRASS session", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable,
			"No GRASS session (run inside a GRASS shell or set GISRC)", err)
	}
	defer func() { _ = session.Close() }()

	writer, cleanup, err := createWriter(sc, runID)
	if err != nil {
		observability.CLILogger.Error("Failed to create writer", zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to create output", err)
	}
	defer cleanup()

	updateManagedRecord(func(rec *runlog.RunRecord) {
		rec.Basename = sc.Output.Basename
		rec.SegmentsTotal = plan.Len()
	})

	pfSpec := preflight.Spec{
		Mode:      preflight.Mode(sc.Run.Preflight),
		Overwrite: sc.Run.Overwrite,
	}
	pfRec, pfErr := preflight.Run(ctx, session, params, plan, pfSpec)
	if err := writer.WritePreflight(ctx, pfRec); err != nil {
		observability.CLILogger.Warn("Failed to write preflight record", zap.Error(err))
	}
	if pfErr != nil {
		observability.CLILogger.Error("Preflight failed", zap.Error(pfErr))
		finishManagedRecord(runlog.RunStateAborted, nil)
		return exitError(foundry.ExitFileNotFound, "Preflight failed", pfErr)
	}

	runner := simulate.New(session, plan, params, writer, runID, simulate.Config{
		Progress: sc.Output.ProgressEnabled(),
		Logger:   observability.CLILogger,
	})

	observability.CLILogger.Info("Starting simulation",
		zap.String("run_id", runID),
		zap.Int("segments", plan.Len()),
		zap.String("basename", sc.Output.Basename))

	summary, err := runner.Run(ctx)
	if err != nil {
		finishManagedRecord(runlog.RunStateAborted, &summary)
		if ctx.Err() != nil {
			observability.CLILogger.Warn("Simulation cancelled",
				zap.String("run_id", runID),
				zap.Int("segments_completed", summary.SegmentsCompleted))
			return exitError(foundry.ExitSignalInt, "Simulation cancelled", err)
		}
		observability.CLILogger.Error("Simulation failed",
			zap.String("run_id", runID),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Simulation failed", err)
	}

	finishManagedRecord(runlog.RunStateSucceeded, &summary)
	observability.CLILogger.Info("Simulation completed",
		zap.String("run_id", runID),
		zap.Int("segments_completed", summary.SegmentsCompleted),
		zap.String("final_output", summary.FinalOutput),
		zap.Duration("duration", summary.Duration))

	if sc.Publish != nil {
		if err := publishOutputs(ctx, session, sc, summary.Outputs); err != nil {
			return err
		}
	}
	return nil
}

// publishOutputs uploads the produced rasters per the scenario's publish
// section.
func publishOutputs(ctx context.Context, session gis.Session, sc *scenario.Scenario, rasters []string) error {
	store, err := publish.NewS3Store(ctx, publish.S3Config{
		Bucket:   sc.Publish.Bucket,
		Region:   sc.Publish.Region,
		Endpoint: sc.Publish.Endpoint,
		Profile:  sc.Publish.Profile,
		// Force path-style URLs when custom endpoint is set.
		// S3-compatible services (moto, MinIO, etc.) require this.
		ForcePathStyle: sc.Publish.Endpoint != "",
	})
	if err != nil {
		observability.CLILogger.Error("Failed to connect to object storage", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to object storage", err)
	}
	defer func() { _ = store.Close() }()

	uploader := publish.NewUploader(store, publish.UploaderConfig{
		Prefix:    sc.Publish.Prefix,
		RateLimit: sc.Publish.RateLimit,
		Logger:    observability.CLILogger,
	})

	res, err := uploader.Publish(ctx, session, rasters)
	if err != nil {
		observability.CLILogger.Error("Publish failed",
			zap.Int("uploaded", len(res.Keys)),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Publish failed", err)
	}

	observability.CLILogger.Info("Published outputs",
		zap.String("bucket", sc.Publish.Bucket),
		zap.Int("objects", len(res.Keys)),
		zap.Int64("bytes", res.Bytes))
	return nil
}

// createWriter creates an output writer from scenario configuration.
// Returns the writer, a cleanup function, and any error.
func createWriter(sc *scenario.Scenario, runID string) (output.Writer, func(), error) {
	dest := sc.Output.Destination

	if dest == "" || dest == "stdout" {
		w := output.NewJSONLWriter(os.Stdout, runID, "grass")
		return w, func() { _ = w.Close() }, nil
	}

	path := dest
	if strings.HasPrefix(dest, "file:") {
		path = strings.TrimPrefix(dest, "file:")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, runID, "grass")
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}

// updateManagedRecord mutates the registry record for managed runs.
// Registry updates are best-effort; failures are logged and never
// abort the run.
func updateManagedRecord(fn func(*runlog.RunRecord)) {
	if runManagedID == "" {
		return
	}
	store := runlog.NewStore(runsRoot())
	rec, err := store.Get(runManagedID)
	if err != nil {
		observability.CLILogger.Warn("Failed to load run record",
			zap.String("run_id", runManagedID),
			zap.Error(err))
		return
	}
	fn(rec)
	if err := store.Write(rec); err != nil {
		observability.CLILogger.Warn("Failed to update run record",
			zap.String("run_id", runManagedID),
			zap.Error(err))
	}
}

func finishManagedRecord(state runlog.RunState, summary *simulate.Summary) {
	updateManagedRecord(func(rec *runlog.RunRecord) {
		now := time.Now().UTC()
		rec.State = state
		rec.EndedAt = &now
		rec.LastHeartbeat = &now
		if summary != nil {
			rec.SegmentsCompleted = summary.SegmentsCompleted
			rec.SegmentsTotal = summary.SegmentsTotal
			rec.FinalOutput = summary.FinalOutput
		}
	})
}
