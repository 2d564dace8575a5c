package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyrelab/firespread/internal/observability"
	"github.com/pyrelab/firespread/pkg/artifact"
	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/scenario"
	"github.com/pyrelab/firespread/pkg/schedule"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove rasters left behind by a scenario's runs",
	Long: `Remove output and transient rasters a scenario's runs created.

An aborted or crashed run leaves the completed segments' rasters and
possibly the transient rate-of-spread rasters in the mapset. Clean
enumerates everything a run of the scenario could have produced and
removes whatever exists.

Example:
  firespread clean --scenario burn.yaml
  firespread clean --scenario burn.yaml --dry-run
  firespread clean --scenario burn.yaml --include 'fire_*' --exclude 'fire_08'`,
	RunE: runClean,
}

var (
	cleanScenarioPath string
	cleanIncludes     []string
	cleanExcludes     []string
	cleanDryRun       bool
)

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVarP(&cleanScenarioPath, "scenario", "s", "", "Path to scenario file (required)")
	cleanCmd.Flags().StringSliceVar(&cleanIncludes, "include", []string{"**"}, "Glob patterns rasters must match")
	cleanCmd.Flags().StringSliceVar(&cleanExcludes, "exclude", nil, "Glob patterns rasters must not match")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Show what would be removed without removing")

	_ = cleanCmd.MarkFlagRequired("scenario")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := scenario.Load(cleanScenarioPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load scenario",
			zap.String("path", cleanScenarioPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid scenario", err)
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

	matcher, err := artifact.NewMatcher(artifact.Config{
		Includes: cleanIncludes,
		Excludes: cleanExcludes,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid include/exclude patterns", err)
	}

	session, err := gis.NewExecSession(gis.ExecConfig{Quiet: true})
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable,
			"No GRASS session (run inside a GRASS shell or set GISRC)", err)
	}
	defer func() { _ = session.Close() }()

	candidates := artifact.Candidates(plan, "")
	res, err := artifact.Clean(ctx, session, candidates, matcher, cleanDryRun)
	if err != nil {
		observability.CLILogger.Error("Clean failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Clean failed", err)
	}

	verb := "Removed"
	if cleanDryRun {
		verb = "Would remove"
	}
	for _, name := range res.Removed {
		fmt.Printf("%s %s\n", verb, name)
	}
	observability.CLILogger.Info("Clean completed",
		zap.Int("removed", len(res.Removed)),
		zap.Int("absent", len(res.Skipped)),
		zap.Bool("dry_run", cleanDryRun))
	return nil
}
