package acquisition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDuplicateConfigName is returned when two config sources collapse to the
// same basename.
var ErrDuplicateConfigName = errors.New("duplicate config name")

// ConfigSet maps a config file basename to its text content. Basenames are
// unique within a set.
type ConfigSet map[string]string

// ReadFile returns the full UTF-8 text of an existing regular file. The error
// for a missing or non-regular path carries the resolved absolute path.
func ReadFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("config source is not an existing file: %s", abs)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config source %s: %w", abs, err)
	}
	return string(data), nil
}

// ReadConfigFiles reads each path into a ConfigSet keyed by basename,
// preserving input order for duplicate detection: the first occurrence of a
// basename wins silently, the second fails the whole call. No partial result
// is returned on failure.
func ReadConfigFiles(paths []string) (ConfigSet, error) {
	configs := make(ConfigSet, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if _, exists := configs[name]; exists {
			return nil, fmt.Errorf("%w: %s (from %s)", ErrDuplicateConfigName, name, path)
		}
		content, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		configs[name] = content
	}
	return configs, nil
}
