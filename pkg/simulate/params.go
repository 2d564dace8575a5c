// Package simulate drives the external fire-spread pipeline across the
// segments of a simulation plan.
//
// Each segment runs the same five external steps in order: r.ros with the
// parameters in effect for the segment, r.spread seeded with the previous
// segment's output, removal of the transient ROS rasters, null-flagging
// of unreached cells, and colorization. The loop is strictly sequential
// because segment k+1 cannot start before segment k's raster exists; any
// step failure aborts the run with no retry and no rollback.
package simulate

import (
	"fmt"

	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/scenario"
)

// Params is the immutable, fully validated parameter set for one run.
// Vector fields hold one raster per change time; nil vectors are absent
// and are skipped entirely in r.ros calls rather than defaulted.
//
// Construct with FromScenario or validate a literal with Validate; after
// that the value is never mutated.
type Params struct {
	Model string

	MoistureLive []string

	Moisture1h   []string
	Moisture10h  []string
	Moisture100h []string

	WindDirection []string
	WindSpeed     []string

	Slope     string
	Aspect    string
	Elevation string

	// Start is the raster of starting locations, the segment-0 seed.
	Start string
}

// FromScenario builds Params from a loaded scenario, validating vector
// lengths against the scenario's change count.
func FromScenario(sc *scenario.Scenario) (Params, error) {
	p := Params{
		Model:         sc.Inputs.Model,
		MoistureLive:  sc.Inputs.MoistureLive,
		Moisture1h:    sc.Inputs.Moisture1h,
		Moisture10h:   sc.Inputs.Moisture10h,
		Moisture100h:  sc.Inputs.Moisture100h,
		WindDirection: sc.Inputs.WindDirection,
		WindSpeed:     sc.Inputs.WindSpeed,
		Slope:         sc.Inputs.Slope,
		Aspect:        sc.Inputs.Aspect,
		Elevation:     sc.Inputs.Elevation,
		Start:         sc.Inputs.Start,
	}
	if err := p.Validate(len(sc.Simulation.ChangeTimes)); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks presence of required inputs and that every present
// vector has exactly changeCount entries. It runs before the plan is
// built so a configuration mismatch can never produce partial artifacts.
func (p Params) Validate(changeCount int) error {
	if p.Model == "" {
		return fmt.Errorf("simulate: fuel model raster is required")
	}
	if p.Start == "" {
		return fmt.Errorf("simulate: start raster is required")
	}
	if len(p.MoistureLive) == 0 {
		return fmt.Errorf("simulate: live moisture rasters are required")
	}
	vectors := map[string][]string{
		"moisture_live":  p.MoistureLive,
		"moisture_1h":    p.Moisture1h,
		"moisture_10h":   p.Moisture10h,
		"moisture_100h":  p.Moisture100h,
		"wind_direction": p.WindDirection,
		"wind_speed":     p.WindSpeed,
	}
	for name, v := range vectors {
		if v == nil {
			continue
		}
		if len(v) != changeCount {
			return fmt.Errorf("simulate: %s has %d rasters but there are %d change times",
				name, len(v), changeCount)
		}
	}
	return nil
}

// ROSInput assembles the r.ros call for the parameter-vector index in
// effect, emitting only the inputs that are present.
func (p Params) ROSInput(index int, outputBasename string) gis.RateOfSpreadInput {
	in := gis.RateOfSpreadInput{
		Model:          p.Model,
		MoistureLive:   p.MoistureLive[index],
		Slope:          p.Slope,
		Aspect:         p.Aspect,
		Elevation:      p.Elevation,
		OutputBasename: outputBasename,
	}
	if p.Moisture1h != nil {
		in.Moisture1h = p.Moisture1h[index]
	}
	if p.Moisture10h != nil {
		in.Moisture10h = p.Moisture10h[index]
	}
	if p.Moisture100h != nil {
		in.Moisture100h = p.Moisture100h[index]
	}
	if p.WindDirection != nil {
		in.WindDirection = p.WindDirection[index]
	}
	if p.WindSpeed != nil {
		in.WindVelocity = p.WindSpeed[index]
	}
	return in
}
