// Package gis defines the contract between the simulation driver and the
// host GRASS GIS session.
//
// Sessions expose only the module invocations the driver needs: the rate
// of spread solver (r.ros), the spread propagation solver (r.spread), and
// the raster housekeeping around them. The physics stays in GRASS;
// implementations only assemble arguments and surface pass/fail status.
package gis

import "context"

// RateOfSpreadInput carries the arguments for one r.ros invocation.
// Optional rasters are absent when empty and are then omitted from the
// call entirely rather than defaulted.
type RateOfSpreadInput struct {
	// Model is the fuel model raster (USDA standard models 1-13).
	Model string

	// MoistureLive is the live (herbaceous) fuel moisture raster.
	MoistureLive string

	// Dead fuel moisture rasters by time-lag class. Optional.
	Moisture1h   string
	Moisture10h  string
	Moisture100h string

	// WindDirection and WindVelocity are midflame wind rasters. Optional.
	WindDirection string
	WindVelocity  string

	// Topography rasters, constant for a run.
	Slope     string
	Aspect    string
	Elevation string

	// OutputBasename is the prefix for the three produced rasters.
	OutputBasename string
}

// RateOfSpreadMaps names the three rasters r.ros produces for a basename.
type RateOfSpreadMaps struct {
	Base   string // base rate of spread
	Max    string // maximum rate of spread
	MaxDir string // direction of the maximum rate
}

// Names lists the three rasters, for removal calls.
func (m RateOfSpreadMaps) Names() []string { return []string{m.Base, m.Max, m.MaxDir} }

// ROSMapsFor returns the raster names r.ros derives from a basename.
func ROSMapsFor(basename string) RateOfSpreadMaps {
	return RateOfSpreadMaps{
		Base:   basename + ".base",
		Max:    basename + ".max",
		MaxDir: basename + ".maxdir",
	}
}

// SpreadInput carries the arguments for one r.spread invocation.
type SpreadInput struct {
	Max   string // maximum ROS raster
	Dir   string // direction of maximum ROS raster
	Base  string // base ROS raster
	Start string // starting locations (the seed)

	Output string // cumulative time-of-arrival raster to produce

	// InitTime is the absolute start offset of the segment and Lag its
	// duration, both in minutes.
	InitTime int
	Lag      int
}

// Session is one live GRASS session. Implementations are not required to
// be safe for concurrent use; the driver is strictly sequential.
type Session interface {
	// RateOfSpread runs r.ros, producing the three ROS rasters for
	// in.OutputBasename.
	RateOfSpread(ctx context.Context, in RateOfSpreadInput) error

	// Spread runs r.spread for one segment.
	Spread(ctx context.Context, in SpreadInput) error

	// RemoveRasters removes the named rasters from the current mapset.
	RemoveRasters(ctx context.Context, names ...string) error

	// SetNull flags cells equal to value as "no data" in the raster.
	SetNull(ctx context.Context, raster, value string) error

	// ApplyColorRules applies a color rules file (r.colors rules=-) read
	// from rules to the raster.
	ApplyColorRules(ctx context.Context, raster, rules string) error

	// RasterExists reports whether the raster exists in the current
	// mapset search path.
	RasterExists(ctx context.Context, raster string) (bool, error)

	// ExportGeoTIFF writes the raster to path as a GeoTIFF.
	ExportGeoTIFF(ctx context.Context, raster, path string) error

	// Close releases any resources held by the session.
	Close() error
}
