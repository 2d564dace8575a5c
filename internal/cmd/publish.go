package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyrelab/firespread/internal/observability"
	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/scenario"
	"github.com/pyrelab/firespread/pkg/schedule"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Export a scenario's output rasters and upload them",
	Long: `Export a scenario's output rasters as GeoTIFFs and upload them to
the object storage configured in the scenario's publish section.

Publishing normally happens automatically at the end of a successful run;
this command re-publishes after the fact, e.g. when the original upload
failed or the bucket changed.

Example:
  firespread publish --scenario burn.yaml`,
	RunE: runPublish,
}

var publishScenarioPath string

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&publishScenarioPath, "scenario", "s", "", "Path to scenario file (required)")
	_ = publishCmd.MarkFlagRequired("scenario")
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := scenario.Load(publishScenarioPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load scenario",
			zap.String("path", publishScenarioPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid scenario", err)
	}
	if sc.Publish == nil {
		return exitError(foundry.ExitInvalidArgument, "Scenario has no publish section",
			fmt.Errorf("add a publish section to %s", publishScenarioPath))
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

	session, err := gis.NewExecSession(gis.ExecConfig{Quiet: true})
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable,
			"No GRASS session (run inside a GRASS shell or set GISRC)", err)
	}
	defer func() { _ = session.Close() }()

	// Only rasters a run actually produced can be exported.
	var rasters []string
	for _, name := range plan.Outputs() {
		found, err := session.RasterExists(ctx, name)
		if err != nil {
			return exitError(foundry.ExitExternalServiceUnavailable, "Failed to probe raster", err)
		}
		if found {
			rasters = append(rasters, name)
		}
	}
	if len(rasters) == 0 {
		return exitError(foundry.ExitFileNotFound, "No output rasters to publish",
			fmt.Errorf("no raster named %s_* exists; run the scenario first", sc.Output.Basename))
	}

	return publishOutputs(ctx, session, sc, rasters)
}
