package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	schemasassets "github.com/pyrelab/firespread/internal/assets/schemas"
)

// SchemaID is the schema identifier for scenario manifests.
const SchemaID = "firespread/v1.0.0/scenario"

// Validation errors.
var (
	// ErrValidationFailed indicates the scenario failed validation.
	ErrValidationFailed = errors.New("scenario validation failed")
)

// Cached validator instance (compiled once from the embedded schema).
var (
	validatorOnce sync.Once
	validator     *jsonschema.Schema
	validatorErr  error
)

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Path locates the problematic field (e.g. "/inputs/moisture_live").
	Path string

	// Message describes the validation failure.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(msgs, "; "))
}

// Is lets callers match against ErrValidationFailed.
func (e ValidationErrors) Is(target error) bool { return target == ErrValidationFailed }

func compiledSchema() (*jsonschema.Schema, error) {
	validatorOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(SchemaID, strings.NewReader(string(schemasassets.ScenarioSchema))); err != nil {
			validatorErr = fmt.Errorf("load embedded scenario schema: %w", err)
			return
		}
		validator, validatorErr = compiler.Compile(SchemaID)
	})
	return validator, validatorErr
}

// ValidateRaw validates raw JSON scenario data against the embedded
// schema. Structural only; semantic checks live in Scenario.Validate.
func ValidateRaw(jsonData []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	var inst any
	if err := json.Unmarshal(jsonData, &inst); err != nil {
		return fmt.Errorf("invalid JSON in scenario: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return flattenSchemaError(ve)
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

// flattenSchemaError converts the validator's error tree into a flat
// ValidationErrors list, keeping only leaf causes.
func flattenSchemaError(ve *jsonschema.ValidationError) ValidationErrors {
	var out ValidationErrors
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, ValidationError{
				Path:    e.InstanceLocation,
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

// Validate performs semantic validation: time discretization invariants
// and vector length matching. It must pass before any GRASS module is
// invoked so a misconfigured scenario can never leave partial artifacts.
func (s *Scenario) Validate() error {
	var errs ValidationErrors

	sim := s.Simulation
	if sim.Step <= 0 {
		errs = append(errs, ValidationError{Path: "/simulation/step", Message: "must be a positive integer"})
	}
	if sim.MaxTime < 0 {
		errs = append(errs, ValidationError{Path: "/simulation/max_time", Message: "must be non-negative"})
	}
	switch {
	case len(sim.ChangeTimes) == 0:
		errs = append(errs, ValidationError{Path: "/simulation/change_times", Message: "at least one change time is required"})
	case sim.ChangeTimes[0] != 0:
		errs = append(errs, ValidationError{Path: "/simulation/change_times", Message: "first change time must be 0"})
	default:
		for i := 1; i < len(sim.ChangeTimes); i++ {
			if sim.ChangeTimes[i] < sim.ChangeTimes[i-1] {
				errs = append(errs, ValidationError{
					Path:    "/simulation/change_times",
					Message: fmt.Sprintf("must be non-decreasing (index %d)", i),
				})
				break
			}
		}
	}

	if s.Inputs.Model == "" {
		errs = append(errs, ValidationError{Path: "/inputs/model", Message: "fuel model raster is required"})
	}
	if s.Inputs.Start == "" {
		errs = append(errs, ValidationError{Path: "/inputs/start", Message: "start raster is required"})
	}
	if s.Output.Basename == "" {
		errs = append(errs, ValidationError{Path: "/output/basename", Message: "output basename is required"})
	}

	// Every present per-change-time vector must match the change count.
	// Absent optional vectors are fine; wrong-length ones are fatal.
	n := len(sim.ChangeTimes)
	vectors := []struct {
		path   string
		values []string
		// required vectors must be present even if change count is 1
		required bool
	}{
		{"/inputs/moisture_live", s.Inputs.MoistureLive, true},
		{"/inputs/moisture_1h", s.Inputs.Moisture1h, false},
		{"/inputs/moisture_10h", s.Inputs.Moisture10h, false},
		{"/inputs/moisture_100h", s.Inputs.Moisture100h, false},
		{"/inputs/wind_direction", s.Inputs.WindDirection, false},
		{"/inputs/wind_speed", s.Inputs.WindSpeed, false},
	}
	for _, v := range vectors {
		if v.values == nil {
			if v.required {
				errs = append(errs, ValidationError{Path: v.path, Message: "required raster list is missing"})
			}
			continue
		}
		if n > 0 && len(v.values) != n {
			errs = append(errs, ValidationError{
				Path:    v.path,
				Message: fmt.Sprintf("has %d rasters but there are %d change times", len(v.values), n),
			})
		}
	}

	if s.Run.Preflight != "" {
		switch s.Run.Preflight {
		case "plan-only", "read-safe":
		default:
			errs = append(errs, ValidationError{Path: "/run/preflight", Message: "must be plan-only or read-safe"})
		}
	}

	if s.Publish != nil && s.Publish.Bucket == "" {
		errs = append(errs, ValidationError{Path: "/publish/bucket", Message: "bucket is required when publish is configured"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
