package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrelab/firespread/pkg/scenario"
	"github.com/pyrelab/firespread/pkg/schedule"
)

func testScenario() *scenario.Scenario {
	sc := &scenario.Scenario{
		Simulation: scenario.SimulationConfig{
			Step:        2,
			MaxTime:     9,
			ChangeTimes: []int{0, 3, 5},
		},
		Inputs: scenario.InputConfig{
			Model:        "fuel",
			MoistureLive: []string{"mlive_0", "mlive_1", "mlive_2"},
			Start:        "ignition",
		},
		Output: scenario.OutputConfig{Basename: "fire"},
	}
	sc.ApplyDefaults()
	return sc
}

func TestShowRunPlan(t *testing.T) {
	sc := testScenario()
	plan, err := schedule.Build(2, 9, []schedule.Time{0, 3, 5}, "fire")
	require.NoError(t, err)

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = showRunPlan(sc, plan)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	out := buf.String()

	for _, want := range []string{
		"Simulation Plan (dry-run)",
		"Horizon:      9 minutes (step 2)",
		"Change times: [0 3 5]",
		"Segments:     6",
		"Start raster: ignition",
		"[0] t=0..2  params[0]  -> fire_2",
		"[5] t=6..8  params[2]  -> fire_8",
		"Preflight:    read-safe",
		"Output:       stdout",
	} {
		assert.Contains(t, out, want, "output should contain %q", want)
	}
}

func TestCreateWriter_Stdout(t *testing.T) {
	sc := testScenario()
	sc.Output.Destination = "stdout"

	writer, cleanup, err := createWriter(sc, "test-run-id")
	require.NoError(t, err)
	require.NotNil(t, writer)
	require.NotNil(t, cleanup)

	cleanup()
}

func TestCreateWriter_EmptyDestination(t *testing.T) {
	sc := testScenario()
	sc.Output.Destination = ""

	writer, cleanup, err := createWriter(sc, "test-run-id")
	require.NoError(t, err)
	require.NotNil(t, writer)

	cleanup()
}

func TestCreateWriter_FileDestination(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "output.jsonl")
	sc := testScenario()
	sc.Output.Destination = outPath

	writer, cleanup, err := createWriter(sc, "test-run-id")
	require.NoError(t, err)
	require.NotNil(t, writer)

	_, err = os.Stat(outPath)
	require.NoError(t, err)

	cleanup()
}

func TestCreateWriter_FilePrefix(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "output.jsonl")
	sc := testScenario()
	sc.Output.Destination = "file:" + outPath

	writer, cleanup, err := createWriter(sc, "test-run-id")
	require.NoError(t, err)
	require.NotNil(t, writer)

	_, err = os.Stat(outPath)
	require.NoError(t, err)

	cleanup()
}

func TestCreateWriter_BadPath(t *testing.T) {
	sc := testScenario()
	sc.Output.Destination = filepath.Join(t.TempDir(), "missing", "output.jsonl")

	_, _, err := createWriter(sc, "test-run-id")
	require.Error(t, err)
}
