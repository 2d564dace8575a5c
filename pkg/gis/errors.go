package gis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSession indicates no live GRASS session (GISRC unset).
var ErrNoSession = errors.New("gis: no active GRASS session (GISRC is not set)")

// ModuleError reports a failed GRASS module invocation. It wraps the
// process error and carries the tail of stderr so callers can surface
// which external step failed and why.
type ModuleError struct {
	// Module is the GRASS module name, e.g. "r.ros".
	Module string

	// Args are the module arguments as invoked.
	Args []string

	// Stderr holds the captured tail of the module's stderr output.
	Stderr string

	// Err is the underlying process error.
	Err error
}

// Error implements the error interface.
func (e *ModuleError) Error() string {
	msg := fmt.Sprintf("gis: %s failed: %v", e.Module, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ModuleError) Unwrap() error { return e.Err }

// IsModuleError reports whether err is (or wraps) a ModuleError, and
// returns it if so.
func IsModuleError(err error) (*ModuleError, bool) {
	var me *ModuleError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
