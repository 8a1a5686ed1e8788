package acquisition

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const indexFileName = "index.jsonl"

// IndexEntry is one line of the append-only acquisition catalog.
type IndexEntry struct {
	ID         string    `json:"id"`
	Experiment string    `json:"experiment"`
	Name       string    `json:"name"`
	Filepath   string    `json:"filepath"`
	CreatedAt  time.Time `json:"created_at"`
}

// indexPath returns the catalog location inside a data directory.
func indexPath(dataDir string) string {
	return filepath.Join(dataDir, indexFileName)
}

// appendIndexEntry appends one catalog line. The file is created on first use
// with restricted permissions.
func appendIndexEntry(dataDir string, entry IndexEntry) error {
	file, err := os.OpenFile(indexPath(dataDir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open acquisition index: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(entry); err != nil {
		return fmt.Errorf("failed to append index entry: %w", err)
	}
	return nil
}

// ReadIndex returns catalog entries in append order, newest last. An empty
// experiment filter returns all entries; a missing catalog yields an empty
// list. Corrupt lines are skipped.
func ReadIndex(dataDir string, experiment string) ([]IndexEntry, error) {
	file, err := os.Open(indexPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []IndexEntry{}, nil
		}
		return nil, fmt.Errorf("failed to open acquisition index: %w", err)
	}
	defer file.Close()

	var entries []IndexEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry IndexEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if experiment != "" && entry.Experiment != experiment {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read acquisition index: %w", err)
	}
	if entries == nil {
		entries = []IndexEntry{}
	}
	return entries, nil
}
