// Command ofsd is the command-line entry point for the OMNIFS storage
// engine: format a container, serve it over the network, check it
// offline, or print its usage statistics. Grounded on cmd/vorteil/main.go
// and pkg/cli/cli.go's root-command bootstrap (flag registration in an
// init-order-safe place, a PersistentPreRunE installing the logger before
// any subcommand runs).
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Zohaasad/file-verse/pkg/ofslog"
)

var log *ofslog.CLI

var (
	flagConfig  string
	flagVerbose bool
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ofsd",
	Short: "OMNIFS container daemon and toolbox",
	Long: `ofsd formats, serves, checks, and inspects OMNIFS containers --
single-file, user-multiplexed virtual filesystems.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config.toml (default ~/.ofsd/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger := ofslog.New()
		if flagDebug {
			logger.IsDebug = true
			logger.IsVerbose = true
		} else if flagVerbose {
			logger.IsVerbose = true
		}
		logrus.SetLevel(logrus.TraceLevel)
		log = logger
		return nil
	}

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fsckCmd)
	rootCmd.AddCommand(statCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
