package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labrec/labrec/pkg/storage"
)

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Dump an acquisition container as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	path := args[0]

	// The backend is chosen by file extension.
	open := storage.OpenFile
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		open = storage.OpenSQLite
	}

	store, err := open(storage.Options{Filepath: path, ReadOnly: true})
	if err != nil {
		return err
	}
	defer store.Close()

	entries := make(map[string]any)
	for _, key := range store.Keys() {
		value, _ := store.Get(key)
		entries[key] = value
	}

	out, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to render container: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
