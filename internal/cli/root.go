// Package cli is the cobra command surface. Every operational command takes
// the configuration file path as its first positional argument and opens its
// own browser session.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mlol",
	Short: "MLOL - digital library lending assistant",
	Long: `mlol drives a real browser against a MediaLibraryOnLine site to inspect
your loans and reservations and to borrow or reserve eBooks while honoring
the limits your library imposes.

Every operational command reads the JSON configuration file given as its
first argument.`,
	Version: version,
}

// Execute runs the root command with a context that ends on SIGINT/SIGTERM.
// This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

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
