package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labrec/labrec/internal/config"
	"github.com/labrec/labrec/pkg/storage"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "labrec",
	Short: "labrec - laboratory acquisition recorder",
	Long: `labrec persists metadata from laboratory notebook sessions: config
file snapshots, the code cell that produced a run, and named results, all in
one keyed container per acquisition.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "settings file (default is $HOME/.labrec/labrec.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// loadSettings loads and validates the process settings.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		settings.Logging.Level = logLevel
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// backendOpen maps a backend name to its opener and container extension.
func backendOpen(backend string) (storage.OpenFunc, string, error) {
	switch backend {
	case "file":
		return storage.OpenFile, ".json", nil
	case "sqlite":
		return storage.OpenSQLite, ".db", nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend: %s", backend)
	}
}
