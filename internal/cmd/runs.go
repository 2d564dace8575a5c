package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/pyrelab/firespread/pkg/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List registered runs",
	Long: `List runs known to the run registry, newest first.

Detached runs register themselves; foreground runs appear only when
started through the registry.

Example:
  firespread runs
  firespread runs --json`,
	RunE: runRuns,
}

var runsJSON bool

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Emit the run records as JSON")
}

func runRuns(cmd *cobra.Command, args []string) error {
	store := runlog.NewStore(runsRoot())
	runs, err := store.List()
	if err != nil {
		return exitError(foundry.ExitFileReadError, "Failed to read run registry", err)
	}

	if runsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTATE\tSEGMENTS\tSTARTED\tSCENARIO")
	for _, r := range runs {
		started := ""
		if r.StartedAt != nil {
			started = r.StartedAt.Format(time.RFC3339)
		}
		segments := ""
		if r.SegmentsTotal > 0 {
			segments = fmt.Sprintf("%d/%d", r.SegmentsCompleted, r.SegmentsTotal)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.RunID, r.State, segments, started, r.ScenarioPath)
	}
	return w.Flush()
}
