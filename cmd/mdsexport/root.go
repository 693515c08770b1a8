package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"mdsexport/pkg/config"
	"mdsexport/pkg/logger"
	"mdsexport/pkg/tokenstore"
	"mdsexport/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdsexport",
	Short: "Manage resumption tokens and download MDS data",
	Long: `mdsexport drives resumable bulk exports from the MDS extract API.

Exported records are appended to a newline-delimited JSON file (optionally
zstd-compressed) and the server's resumption cursor is saved after every
page, so an interrupted export can be continued later without re-fetching
completed pages.

Stored tokens track three cursor variants:
  base    the token as originally added
  last    the cursor from the most recent page fetch
  latest  the cursor at the best known progress point`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.mdsexport.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`mdsexport {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration with the given command flags merged in and
// initializes logging.
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openStore opens the token database configured for this run.
func openStore(cfg *config.Config) (*tokenstore.Store, error) {
	return tokenstore.Open(cfg.Storage.DatabasePath)
}
