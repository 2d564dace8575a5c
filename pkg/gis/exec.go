package gis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Module names invoked by ExecSession.
const (
	moduleRos      = "r.ros"
	moduleSpread   = "r.spread"
	moduleRemove   = "g.remove"
	moduleNull     = "r.null"
	moduleColors   = "r.colors"
	moduleFindFile = "g.findfile"
	moduleOutGDAL  = "r.out.gdal"
)

// maxStderrTail bounds how much module stderr is retained for error
// reporting. GRASS modules can be chatty; only the tail diagnoses failure.
const maxStderrTail = 8 * 1024

// ExecConfig configures an ExecSession.
type ExecConfig struct {
	// Overwrite passes --overwrite to producing modules so re-runs can
	// replace rasters from a previous attempt.
	Overwrite bool

	// Quiet passes --quiet to all modules.
	Quiet bool

	// Env holds extra environment entries appended to the inherited
	// environment, e.g. GRASS_REGION overrides. Optional.
	Env []string
}

// ExecSession implements Session by spawning GRASS modules as child
// processes inside an already-established GRASS session. It never
// bootstraps a session itself: GISRC must be set in the environment,
// which `firespread doctor` and run preflight verify up front.
type ExecSession struct {
	cfg ExecConfig
}

var _ Session = (*ExecSession)(nil)

// NewExecSession validates the environment and returns an exec-backed
// session. Returns ErrNoSession when GISRC is unset.
func NewExecSession(cfg ExecConfig) (*ExecSession, error) {
	if os.Getenv("GISRC") == "" {
		return nil, ErrNoSession
	}
	return &ExecSession{cfg: cfg}, nil
}

// RateOfSpread runs r.ros. Optional inputs are omitted from the argument
// list entirely when absent.
func (s *ExecSession) RateOfSpread(ctx context.Context, in RateOfSpreadInput) error {
	args := []string{
		"model=" + in.Model,
		"moisture_live=" + in.MoistureLive,
	}
	args = appendOpt(args, "moisture_1h", in.Moisture1h)
	args = appendOpt(args, "moisture_10h", in.Moisture10h)
	args = appendOpt(args, "moisture_100h", in.Moisture100h)
	args = appendOpt(args, "direction", in.WindDirection)
	args = appendOpt(args, "velocity", in.WindVelocity)
	args = appendOpt(args, "slope", in.Slope)
	args = appendOpt(args, "aspect", in.Aspect)
	args = appendOpt(args, "elevation", in.Elevation)
	args = append(args, "output="+in.OutputBasename)
	return s.run(ctx, moduleRos, args, "")
}

// Spread runs r.spread for one segment.
func (s *ExecSession) Spread(ctx context.Context, in SpreadInput) error {
	args := []string{
		"max=" + in.Max,
		"dir=" + in.Dir,
		"base=" + in.Base,
		"start=" + in.Start,
		"output=" + in.Output,
		"init_time=" + strconv.Itoa(in.InitTime),
		"lag=" + strconv.Itoa(in.Lag),
	}
	return s.run(ctx, moduleSpread, args, "")
}

// RemoveRasters removes rasters with g.remove -f.
func (s *ExecSession) RemoveRasters(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	args := []string{"-f", "type=raster", "name=" + strings.Join(names, ",")}
	return s.run(ctx, moduleRemove, args, "")
}

// SetNull flags cells equal to value as null.
func (s *ExecSession) SetNull(ctx context.Context, raster, value string) error {
	return s.run(ctx, moduleNull, []string{"map=" + raster, "setnull=" + value}, "")
}

// ApplyColorRules pipes a rules file into r.colors rules=-.
func (s *ExecSession) ApplyColorRules(ctx context.Context, raster, rules string) error {
	return s.run(ctx, moduleColors, []string{"map=" + raster, "rules=-"}, rules)
}

// RasterExists probes the mapset search path with g.findfile. The module
// exits non-zero when the raster is absent; that is "not found", not an
// error.
func (s *ExecSession) RasterExists(ctx context.Context, raster string) (bool, error) {
	args := []string{"element=cell", "file=" + raster}
	err := s.run(ctx, moduleFindFile, args, "")
	if err == nil {
		return true, nil
	}
	var me *ModuleError
	if errors.As(err, &me) {
		var ee *exec.ExitError
		if errors.As(me.Err, &ee) {
			return false, nil
		}
	}
	return false, err
}

// ExportGeoTIFF writes a raster to path via r.out.gdal.
func (s *ExecSession) ExportGeoTIFF(ctx context.Context, raster, path string) error {
	args := []string{
		"input=" + raster,
		"output=" + path,
		"format=GTiff",
	}
	return s.run(ctx, moduleOutGDAL, args, "")
}

// Close is a no-op: the session belongs to the surrounding GRASS shell.
func (s *ExecSession) Close() error { return nil }

// run spawns one GRASS module and converts a non-zero exit into a
// ModuleError carrying the stderr tail.
func (s *ExecSession) run(ctx context.Context, module string, args []string, stdin string) error {
	full := args
	if s.cfg.Overwrite && producesRasters(module) {
		full = append(full, "--overwrite")
	}
	if s.cfg.Quiet {
		full = append(full, "--quiet")
	}

	cmd := exec.CommandContext(ctx, module, full...)
	cmd.Env = append(os.Environ(), s.cfg.Env...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stderr tailBuffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("gis: %s interrupted: %w", module, ctxErr)
		}
		return &ModuleError{
			Module: module,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return nil
}

// producesRasters reports whether the module accepts --overwrite.
func producesRasters(module string) bool {
	switch module {
	case moduleRos, moduleSpread, moduleOutGDAL:
		return true
	}
	return false
}

func appendOpt(args []string, key, value string) []string {
	if value == "" {
		return args
	}
	return append(args, key+"="+value)
}

// tailBuffer keeps only the last maxStderrTail bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - maxStderrTail; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string { return string(b.buf) }
