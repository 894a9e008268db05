// Package cmd implements the CLI commands for tsrelay.
package cmd

import (
	"fmt"

	"github.com/jmylchreest/tsrelay/internal/version"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "tsrelay",
	Short:   "UDP-to-HTTP MPEG-TS fan-out relay",
	Version: version.Short(),
	Long: `tsrelay ingests live MPEG-TS over UDP and fans each source out to many
concurrent HTTP clients, tracking per-PID packet and rate statistics along
the way.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
}
