package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/labrec/labrec/pkg/acquisition"
)

var (
	listExperiment string
	listDataDir    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the acquisition index",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listExperiment, "experiment", "", "only list this experiment")
	listCmd.Flags().StringVar(&listDataDir, "data-dir", "", "data directory (default from settings)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	dataDir := settings.DataDir
	if listDataDir != "" {
		dataDir = listDataDir
	}

	entries, err := acquisition.ReadIndex(dataDir, listExperiment)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No acquisitions recorded")
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  %s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.Experiment, entry.Filepath)
	}
	return nil
}
