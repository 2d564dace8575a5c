package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a scenario from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json
// for JSON. If the extension is unrecognized, YAML is attempted first,
// then JSON.
//
// After loading, the scenario is validated against the embedded JSON
// schema, checked semantically (vector lengths vs change times), and
// defaults are applied to optional fields.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading scenario: %s", path)
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a scenario from raw bytes.
//
// The path parameter is used for error messages and format detection;
// when empty, format detection falls back to trying YAML first.
//
// Schema validation runs on the raw data (converted to JSON) before
// parsing into the typed struct so unknown fields are rejected rather
// than silently dropped by struct unmarshaling.
func LoadFromBytes(data []byte, path string) (*Scenario, error) {
	if len(data) == 0 {
		return nil, errors.New("scenario file is empty")
	}

	jsonData, err := toJSON(data, path)
	if err != nil {
		return nil, err
	}
	if err := ValidateRaw(jsonData); err != nil {
		return nil, err
	}

	sc, err := parseScenario(data, path)
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sc.ApplyDefaults()
	return sc, nil
}

// LoadFromReader reads and validates a scenario from an io.Reader.
func LoadFromReader(r io.Reader, path string) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return LoadFromBytes(data, path)
}

// parseScenario parses the scenario data based on file extension.
func parseScenario(data []byte, path string) (*Scenario, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		sc, yamlErr := parseYAML(data)
		if yamlErr == nil {
			return sc, nil
		}
		sc, jsonErr := parseJSON(data)
		if jsonErr == nil {
			return sc, nil
		}
		return nil, fmt.Errorf("failed to parse scenario (tried YAML and JSON): %w", yamlErr)
	}
}

func parseJSON(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("invalid JSON in scenario: %w", err)
	}
	return &sc, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("invalid YAML in scenario: %w", err)
	}
	return &sc, nil
}

// toJSON converts the input data to JSON for schema validation.
func toJSON(data []byte, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON in scenario: %w", err)
		}
		return data, nil
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		jsonData, err := yamlToJSON(data)
		if err == nil {
			return jsonData, nil
		}
		var raw any
		if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil {
			return data, nil
		}
		return nil, fmt.Errorf("failed to parse scenario (tried YAML and JSON): %w", err)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in scenario: %w", err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert scenario to JSON: %w", err)
	}
	return jsonData, nil
}
