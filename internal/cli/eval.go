package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labrec/labrec/pkg/acquisition"
)

var evalVarsFile string

var evalCmd = &cobra.Command{
	Use:   "eval CONFIG",
	Short: "Annotate a config file with drifted live values",
	Long: `Compare the literals written in a config file against live values
from a JSON vars file and print the annotated text. Lines whose written value
differs from the live one gain a trailing "# value:" comment.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalVarsFile, "vars", "", "JSON file mapping variable names to live values (required)")
	evalCmd.MarkFlagRequired("vars")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	body, err := acquisition.ReadFile(args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(evalVarsFile)
	if err != nil {
		return fmt.Errorf("failed to read vars file: %w", err)
	}
	var vars acquisition.Vars
	if err := json.Unmarshal(data, &vars); err != nil {
		return fmt.Errorf("failed to parse vars file: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), acquisition.EvalConfigFile(body, vars))
	return nil
}
