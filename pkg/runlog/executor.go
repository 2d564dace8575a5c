package runlog

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Executor spawns and manages detached simulation runs.
//
// A detached run is a child process running `firespread run` in managed
// mode: its JSONL stream goes to records.jsonl in the run dir and its
// stderr to a per-run log file, while the parent returns immediately.
type Executor struct {
	store *Store
}

func NewExecutor(root string) *Executor {
	return &Executor{store: NewStore(root)}
}

func (e *Executor) Store() *Store {
	return e.store
}

func (e *Executor) RecordsPath(runID string) string {
	return filepath.Join(e.store.RunDir(runID), "records.jsonl")
}

func (e *Executor) StderrPath(runID string) string {
	return filepath.Join(e.store.RunDir(runID), "stderr.log")
}

type DetachOptions struct {
	// Dedupe refuses to start when another run of the same scenario file
	// is still running. Two concurrent runs over the same mapset would
	// race on the transient ROS rasters.
	Dedupe bool
}

// StartDetached spawns a managed child process running:
//
//	firespread run --scenario <path> --_managed-run-id <run_id>
//
// It returns after the child successfully starts.
func (e *Executor) StartDetached(scenarioPath string, name string, opts DetachOptions) (*RunRecord, error) {
	if e == nil || e.store == nil {
		return nil, fmt.Errorf("executor is not initialized")
	}

	runID := uuid.New().String()
	runDir := e.store.RunDir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	recordsFile, err := os.Create(e.RecordsPath(runID))
	if err != nil {
		return nil, fmt.Errorf("create records file: %w", err)
	}
	stderrFile, err := os.Create(e.StderrPath(runID))
	if err != nil {
		_ = recordsFile.Close()
		return nil, fmt.Errorf("create stderr log: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		_ = recordsFile.Close()
		_ = stderrFile.Close()
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	absScenario, err := filepath.Abs(strings.TrimSpace(scenarioPath))
	if err != nil {
		_ = recordsFile.Close()
		_ = stderrFile.Close()
		return nil, fmt.Errorf("resolve scenario path: %w", err)
	}
	if absScenario == "" {
		_ = recordsFile.Close()
		_ = stderrFile.Close()
		return nil, fmt.Errorf("scenario path is required")
	}
	if _, err := os.Stat(absScenario); err != nil {
		_ = recordsFile.Close()
		_ = stderrFile.Close()
		return nil, fmt.Errorf("scenario not found: %s", absScenario)
	}

	if opts.Dedupe {
		if existing, _ := e.store.List(); len(existing) > 0 {
			for _, r := range existing {
				if strings.TrimSpace(r.ScenarioPath) == absScenario && r.State == RunStateRunning {
					_ = recordsFile.Close()
					_ = stderrFile.Close()
					return nil, fmt.Errorf("duplicate running run exists: %s", r.RunID)
				}
			}
		}
	}

	cmd := exec.Command(exe, "run", "--scenario", absScenario, "--_managed-run-id", runID)
	cmd.Stdout = recordsFile
	cmd.Stderr = stderrFile
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		_ = recordsFile.Close()
		_ = stderrFile.Close()
		return nil, fmt.Errorf("start managed run: %w", err)
	}

	now := time.Now().UTC()
	rec := &RunRecord{
		RunID:         runID,
		Name:          strings.TrimSpace(name),
		State:         RunStateRunning,
		ScenarioPath:  absScenario,
		PID:           cmd.Process.Pid,
		CreatedAt:     now,
		StartedAt:     &now,
		LastHeartbeat: func() *time.Time { t := now; return &t }(),
		RecordsPath:   e.RecordsPath(runID),
		StderrPath:    e.StderrPath(runID),
	}
	if err := e.store.Write(rec); err != nil {
		return nil, err
	}

	_ = recordsFile.Close()
	_ = stderrFile.Close()

	return rec, nil
}
