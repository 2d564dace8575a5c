// Package preflight verifies a run's inputs before the first segment.
//
// A simulation that aborts at segment 0 because a moisture raster was
// misspelled still leaves transient state behind; preflight catches that
// class of failure before GRASS is asked to do any work.
package preflight

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/output"
	"github.com/pyrelab/firespread/pkg/schedule"
	"github.com/pyrelab/firespread/pkg/simulate"
)

// Mode defines how aggressive preflight checks are.
type Mode string

const (
	// ModePlanOnly performs no session calls at all; the plan itself is
	// the only thing validated.
	ModePlanOnly Mode = "plan-only"

	// ModeReadSafe queries raster existence but never writes.
	ModeReadSafe Mode = "read-safe"
)

// Spec controls how preflight checks are executed.
type Spec struct {
	Mode Mode

	// Overwrite suppresses the output-collision checks; with it set a
	// run is allowed to replace rasters from an earlier run.
	Overwrite bool
}

// Check failures.
var (
	ErrMissingInputs = errors.New("preflight: required input rasters are missing")
	ErrOutputExists  = errors.New("preflight: output rasters already exist")
)

// check is one raster to verify, by role.
type check struct {
	raster string
	role   string
}

// Run executes preflight for a planned simulation. The returned record is
// non-nil even on failure so callers can always emit it.
func Run(ctx context.Context, session gis.Session, params simulate.Params, plan *schedule.Plan, spec Spec) (*output.PreflightRecord, error) {
	rec := &output.PreflightRecord{
		Mode:    string(spec.Mode),
		Results: []output.PreflightCheckResult{},
	}

	if spec.Mode == ModePlanOnly {
		return rec, nil
	}

	var missing, colliding int

	for _, c := range inputChecks(params) {
		found, detail := exists(ctx, session, c.raster)
		rec.Results = append(rec.Results, output.PreflightCheckResult{
			Raster: c.raster,
			Role:   c.role,
			Found:  found,
			Detail: detail,
		})
		if !found {
			missing++
		}
	}

	if !spec.Overwrite {
		for _, name := range plan.Outputs() {
			found, detail := exists(ctx, session, name)
			if found && detail == "" {
				detail = "already exists; pass overwrite to replace"
			}
			rec.Results = append(rec.Results, output.PreflightCheckResult{
				Raster: name,
				Role:   "output",
				Found:  found,
				Detail: detail,
			})
			if found {
				colliding++
			}
		}
	}

	switch {
	case missing > 0:
		return rec, fmt.Errorf("%w (%d of %d checks failed)", ErrMissingInputs, missing, len(rec.Results))
	case colliding > 0:
		return rec, fmt.Errorf("%w (%d rasters)", ErrOutputExists, colliding)
	}
	return rec, nil
}

// inputChecks lists every raster the run will read, tagged by role.
// Absent optional rasters produce no check.
func inputChecks(params simulate.Params) []check {
	var checks []check
	add := func(raster, role string) {
		if raster != "" {
			checks = append(checks, check{raster: raster, role: role})
		}
	}
	addVec := func(rasters []string, role string) {
		for i, r := range rasters {
			add(r, fmt.Sprintf("%s[%d]", role, i))
		}
	}

	add(params.Model, "model")
	addVec(params.MoistureLive, "moisture_live")
	addVec(params.Moisture1h, "moisture_1h")
	addVec(params.Moisture10h, "moisture_10h")
	addVec(params.Moisture100h, "moisture_100h")
	addVec(params.WindDirection, "wind_direction")
	addVec(params.WindSpeed, "wind_speed")
	add(params.Slope, "slope")
	add(params.Aspect, "aspect")
	add(params.Elevation, "elevation")
	add(params.Start, "start")
	return checks
}

func exists(ctx context.Context, session gis.Session, raster string) (bool, string) {
	found, err := session.RasterExists(ctx, raster)
	if err != nil {
		return false, err.Error()
	}
	return found, ""
}
