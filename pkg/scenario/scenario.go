// Package scenario provides loading and validation of firespread scenario
// manifests.
//
// A scenario is a YAML or JSON file that configures one simulation run:
// the time discretization (step, horizon, change times), the input rasters
// for r.ros and r.spread, output naming, and optional publishing.
//
// Scenarios are validated against a JSON Schema for structure (strict
// typing, unknown properties rejected) and then semantically: every
// per-change-time raster vector must match the number of change times,
// and the change times themselves must be a non-decreasing sequence
// starting at 0. Semantic validation runs before any GRASS module is
// invoked so a bad configuration can never leave partial artifacts.
//
// Example scenario (YAML):
//
//	version: "1.0"
//	simulation:
//	  step: 60
//	  max_time: 480
//	  change_times: [0, 120, 300]
//	inputs:
//	  model: fuel_model
//	  moisture_live: [mlive_0, mlive_120, mlive_300]
//	  wind_speed: [wind_0, wind_120, wind_300]
//	  slope: slope
//	  aspect: aspect
//	  elevation: elevation
//	  start: fire_origin
//	output:
//	  basename: fire_spread
package scenario

import "github.com/pyrelab/firespread/pkg/schedule"

// Scenario represents a validated scenario manifest.
type Scenario struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the scenario schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Simulation configures the time discretization.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Inputs names the rasters fed to r.ros and r.spread.
	Inputs InputConfig `json:"inputs" yaml:"inputs"`

	// Output configures artifact naming and record emission.
	Output OutputConfig `json:"output" yaml:"output"`

	// Run configures run behavior (optional).
	Run RunConfig `json:"run,omitempty" yaml:"run,omitempty"`

	// Publish configures GeoTIFF export and object-storage upload
	// (optional; used by the publish command only).
	Publish *PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty"`
}

// SimulationConfig is the time discretization of a run.
type SimulationConfig struct {
	// Step is the re-export period: a result raster is saved every Step
	// minutes of simulated time.
	Step int `json:"step" yaml:"step"`

	// MaxTime is the run horizon in minutes.
	MaxTime int `json:"max_time" yaml:"max_time"`

	// ChangeTimes are the minutes at which at least one input raster
	// changes. Non-decreasing, first element 0.
	ChangeTimes []int `json:"change_times" yaml:"change_times"`
}

// ChangeTimesAsSchedule converts the change times for plan building.
func (s SimulationConfig) ChangeTimesAsSchedule() []schedule.Time {
	out := make([]schedule.Time, len(s.ChangeTimes))
	for i, t := range s.ChangeTimes {
		out[i] = schedule.Time(t)
	}
	return out
}

// InputConfig names the input rasters. Vector fields hold one raster per
// change time; absent optional vectors are skipped entirely in r.ros
// calls rather than defaulted.
type InputConfig struct {
	// Model is the fuel model raster (constant for the run).
	Model string `json:"model" yaml:"model"`

	// MoistureLive holds the live fuel moisture raster per change time.
	MoistureLive []string `json:"moisture_live" yaml:"moisture_live"`

	// Dead fuel moisture vectors by time-lag class. Optional.
	Moisture1h   []string `json:"moisture_1h,omitempty" yaml:"moisture_1h,omitempty"`
	Moisture10h  []string `json:"moisture_10h,omitempty" yaml:"moisture_10h,omitempty"`
	Moisture100h []string `json:"moisture_100h,omitempty" yaml:"moisture_100h,omitempty"`

	// Wind vectors. Optional.
	WindDirection []string `json:"wind_direction,omitempty" yaml:"wind_direction,omitempty"`
	WindSpeed     []string `json:"wind_speed,omitempty" yaml:"wind_speed,omitempty"`

	// Topography rasters, constant for the run. Optional.
	Slope     string `json:"slope,omitempty" yaml:"slope,omitempty"`
	Aspect    string `json:"aspect,omitempty" yaml:"aspect,omitempty"`
	Elevation string `json:"elevation,omitempty" yaml:"elevation,omitempty"`

	// Start is the raster of starting locations (the initial seed).
	Start string `json:"start" yaml:"start"`
}

// OutputConfig configures artifact naming and record emission.
type OutputConfig struct {
	// Basename prefixes every produced time-of-arrival raster.
	Basename string `json:"basename" yaml:"basename"`

	// Destination is where JSONL run records go: "stdout" or
	// "file:/path/to/records.jsonl". Default: "stdout".
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Progress enables per-segment progress records. Default: true.
	Progress *bool `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// ProgressEnabled returns whether progress records should be emitted.
func (o *OutputConfig) ProgressEnabled() bool {
	if o.Progress == nil {
		return DefaultProgress
	}
	return *o.Progress
}

// RunConfig configures run behavior.
type RunConfig struct {
	// Overwrite passes --overwrite to producing GRASS modules so a re-run
	// can replace rasters left by a previous attempt.
	Overwrite bool `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`

	// Preflight selects how much is verified before the first segment:
	// "plan-only" (no GRASS calls) or "read-safe" (probe every input
	// raster). Default: "read-safe".
	Preflight string `json:"preflight,omitempty" yaml:"preflight,omitempty"`
}

// PublishConfig configures GeoTIFF export and S3-compatible upload.
type PublishConfig struct {
	// Bucket is the destination bucket. Required when publish is set.
	Bucket string `json:"bucket" yaml:"bucket"`

	// Prefix is the key prefix under which artifacts are uploaded.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the bucket region. Optional.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint is a custom endpoint for S3-compatible stores. Optional.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Profile is the credential profile name. Optional.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// RateLimit caps uploads per second (0 = unlimited).
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current scenario schema version.
	DefaultVersion = "1.0"

	// DefaultDestination is the default record destination.
	DefaultDestination = "stdout"

	// DefaultProgress is the default value for progress emission.
	DefaultProgress = true

	// DefaultPreflightMode is the default preflight mode.
	DefaultPreflightMode = "read-safe"
)

// ApplyDefaults fills in default values for optional fields. Call after
// loading and validating.
func (s *Scenario) ApplyDefaults() {
	if s.Output.Destination == "" {
		s.Output.Destination = DefaultDestination
	}
	if s.Output.Progress == nil {
		enabled := DefaultProgress
		s.Output.Progress = &enabled
	}
	if s.Run.Preflight == "" {
		s.Run.Preflight = DefaultPreflightMode
	}
}
