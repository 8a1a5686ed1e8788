package acquisition

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// ManifestFileName is the optional descriptor inside an experiment directory.
const ManifestFileName = "experiment.json"

// experimentNameRegex keeps experiment names safe to use as directory names.
var experimentNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ManifestSchema is the JSON schema every experiment manifest must satisfy.
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "operator": {"type": "string"},
    "description": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "instruments": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": false
}`

// ExperimentManifest describes an experiment directory.
type ExperimentManifest struct {
	Name        string   `json:"name"`
	Operator    string   `json:"operator,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Instruments []string `json:"instruments,omitempty"`
}

// ManifestLoader loads and validates experiment manifests.
type ManifestLoader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewManifestLoader creates a manifest loader.
func NewManifestLoader(logger zerolog.Logger) *ManifestLoader {
	return &ManifestLoader{
		logger:       logger.With().Str("component", "manifest-loader").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(ManifestSchema),
	}
}

// Load reads and validates the manifest at path.
func (m *ManifestLoader) Load(path string) (*ExperimentManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest ExperimentManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	if err := m.validateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if !experimentNameRegex.MatchString(manifest.Name) {
		return nil, fmt.Errorf("invalid experiment name: %q", manifest.Name)
	}

	m.logger.Debug().
		Str("name", manifest.Name).
		Str("operator", manifest.Operator).
		Msg("Loaded experiment manifest")

	return &manifest, nil
}

// validateSchema validates the manifest against the JSON schema.
func (m *ManifestLoader) validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(m.schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for i, err := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += err.String()
		}
		return fmt.Errorf("schema validation errors: %s", errMsg)
	}
	return nil
}
