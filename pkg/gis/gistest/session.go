// Package gistest provides a scripted in-memory Session for tests.
package gistest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pyrelab/firespread/pkg/gis"
)

// Op names recorded by the fake session.
const (
	OpRateOfSpread = "ros"
	OpSpread       = "spread"
	OpRemove       = "remove"
	OpSetNull      = "null"
	OpColors       = "colors"
	OpExists       = "exists"
	OpExport       = "export"
)

// Call is one recorded session operation.
type Call struct {
	Op  string
	Arg string // primary argument (output raster, removed names, ...)
}

// Session records every operation and can be scripted to fail a specific
// invocation. The zero value is a session where every call succeeds and
// every raster exists.
type Session struct {
	Calls []Call

	// ROSCalls and SpreadCalls keep the full typed inputs for assertions
	// on parameter selection and seed chaining.
	ROSCalls    []gis.RateOfSpreadInput
	SpreadCalls []gis.SpreadInput

	// Removed accumulates every raster name passed to RemoveRasters.
	Removed []string

	// Missing lists rasters RasterExists reports as absent.
	Missing []string

	// FailOp, when non-empty, makes the FailAt'th invocation of that op
	// return FailErr (every invocation when FailAt is 0).
	FailOp  string
	FailAt  int
	FailErr error

	counts map[string]int
}

var _ gis.Session = (*Session)(nil)

func (s *Session) record(op, arg string) error {
	s.Calls = append(s.Calls, Call{Op: op, Arg: arg})
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[op]++
	if op == s.FailOp && (s.FailAt == 0 || s.counts[op] == s.FailAt) {
		if s.FailErr != nil {
			return s.FailErr
		}
		return errors.New("gistest: scripted failure in " + op)
	}
	return nil
}

// CountOf returns how many times op was invoked.
func (s *Session) CountOf(op string) int { return s.counts[op] }

func (s *Session) RateOfSpread(_ context.Context, in gis.RateOfSpreadInput) error {
	s.ROSCalls = append(s.ROSCalls, in)
	return s.record(OpRateOfSpread, in.OutputBasename)
}

func (s *Session) Spread(_ context.Context, in gis.SpreadInput) error {
	s.SpreadCalls = append(s.SpreadCalls, in)
	return s.record(OpSpread, in.Output)
}

func (s *Session) RemoveRasters(_ context.Context, names ...string) error {
	s.Removed = append(s.Removed, names...)
	return s.record(OpRemove, strings.Join(names, ","))
}

func (s *Session) SetNull(_ context.Context, raster, value string) error {
	return s.record(OpSetNull, fmt.Sprintf("%s=%s", raster, value))
}

func (s *Session) ApplyColorRules(_ context.Context, raster, _ string) error {
	return s.record(OpColors, raster)
}

func (s *Session) RasterExists(_ context.Context, raster string) (bool, error) {
	if err := s.record(OpExists, raster); err != nil {
		return false, err
	}
	for _, m := range s.Missing {
		if m == raster {
			return false, nil
		}
	}
	return true, nil
}

func (s *Session) ExportGeoTIFF(_ context.Context, raster, path string) error {
	if err := s.record(OpExport, raster+"->"+path); err != nil {
		return err
	}
	// Leave a placeholder file so callers that read the export back work.
	return os.WriteFile(path, []byte(raster), 0o644)
}

func (s *Session) Close() error { return nil }
