package acquisition

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestLoader_Load(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), ManifestFileName), `{
		"name": "ramsey",
		"operator": "kim",
		"description": "Ramsey interferometry sweep",
		"tags": ["qubit", "coherence"],
		"instruments": ["awg-1", "digitizer-2"]
	}`)

	manifest, err := NewManifestLoader(testLogger()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ramsey", manifest.Name)
	assert.Equal(t, "kim", manifest.Operator)
	assert.Equal(t, []string{"qubit", "coherence"}, manifest.Tags)
	assert.Equal(t, []string{"awg-1", "digitizer-2"}, manifest.Instruments)
}

func TestManifestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", `{"operator": "kim"}`},
		{"empty name", `{"name": ""}`},
		{"unknown field", `{"name": "ramsey", "extra": true}`},
		{"wrong tag type", `{"name": "ramsey", "tags": "qubit"}`},
		{"not json", `{{`},
		{"unsafe name", `{"name": "../escape"}`},
	}

	loader := NewManifestLoader(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, filepath.Join(t.TempDir(), ManifestFileName), tt.content)
			_, err := loader.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestManifestLoader_MissingFile(t *testing.T) {
	_, err := NewManifestLoader(testLogger()).Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
