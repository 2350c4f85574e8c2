// Package cli implements the unigate command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"unigate/internal/config"
	apperr "unigate/pkg/errors"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Global state initialized in PersistentPreRunE
	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "unigate",
	Short: "University ledger gateway",
	Long: `Unigate is the backend gateway of the university management system.

It custodies student and staff wallets, gates every signing operation behind
a password reconfirmation, and proxies reads and writes against the
University contract.

Example:
  unigate serve --config unigate.yaml
  unigate backup create --dir backups`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperr.Public(err))
		return err
	}
	return nil
}

func initGlobals() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger = config.NewLogger(cfg.Logging)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(versionCmd)
}
