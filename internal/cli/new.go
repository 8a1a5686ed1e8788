package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labrec/labrec/internal/logger"
	"github.com/labrec/labrec/pkg/acquisition"
)

var (
	newExperiment string
	newDataDir    string
	newConfigs    []string
	newCellFile   string
	newResults    []string
	newBackend    string
	newSaveFiles  bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create one acquisition and persist it",
	Long: `Create an acquisition record for an experiment: snapshot the given
config files and cell, merge the given results, and print the container path.`,
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&newExperiment, "experiment", "", "experiment name (required)")
	newCmd.Flags().StringVar(&newDataDir, "data-dir", "", "data directory (default from settings)")
	newCmd.Flags().StringArrayVar(&newConfigs, "config", nil, "config file to snapshot (repeatable)")
	newCmd.Flags().StringVar(&newCellFile, "cell", "", "file holding the code cell snapshot")
	newCmd.Flags().StringArrayVar(&newResults, "result", nil, "named result as key=value (repeatable)")
	newCmd.Flags().StringVar(&newBackend, "backend", "", "storage backend: file or sqlite (default from settings)")
	newCmd.Flags().BoolVar(&newSaveFiles, "save-files", false, "mirror configs and cell to side files")
	newCmd.MarkFlagRequired("experiment")

	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	dataDir := settings.DataDir
	if newDataDir != "" {
		dataDir = newDataDir
	}
	backend := settings.Storage.Backend
	if newBackend != "" {
		backend = newBackend
	}
	saveFiles := settings.Storage.SaveFiles
	if cmd.Flags().Changed("save-files") {
		saveFiles = newSaveFiles
	}

	open, ext, err := backendOpen(backend)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level: settings.Logging.Level,
		File:  settings.Logging.File,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	manager, err := acquisition.NewManager(acquisition.ManagerConfig{
		DataDir:    dataDir,
		SaveOnEdit: settings.Storage.SaveOnEdit,
		SaveFiles:  saveFiles,
		Open:       open,
		FileExt:    ext,
		Logger:     log.GetZerolog(),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	configPaths := append(append([]string(nil), settings.ConfigFiles...), newConfigs...)
	if len(configPaths) > 0 {
		if err := manager.SetConfigFiles(configPaths...); err != nil {
			return err
		}
	}

	if newCellFile != "" {
		cell, err := acquisition.ReadFile(newCellFile)
		if err != nil {
			return err
		}
		manager.SetCell(cell)
	}

	record, err := manager.NewAcquisition(newExperiment)
	if err != nil {
		return err
	}

	values, err := parseResults(newResults)
	if err != nil {
		return err
	}
	if _, err := record.SaveAcquisition(values); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), record.Filepath())
	return nil
}

// parseResults converts key=value pairs into named values. Values parse as
// JSON where possible, falling back to plain strings.
func parseResults(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid result %q (expected key=value)", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		values[key] = value
	}
	return values, nil
}
