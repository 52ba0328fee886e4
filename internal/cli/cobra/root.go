// Package cobra provides the Cobra-based CLI command tree for funcpack.
package cobra

import (
	"io"

	"github.com/spf13/cobra"

	"funcpack/internal/version"
)

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	Verbose bool
}

// globalOpts stores the parsed global options for access by subcommands.
var globalOpts GlobalOpts

// GetGlobalOpts returns the parsed global options.
func GetGlobalOpts() GlobalOpts {
	return globalOpts
}

// NewRootCmd creates the root cobra command for funcpack.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "funcpack",
		Short: "Package serverless function projects into deployable archives",
		Long: `funcpack - package serverless function projects into deployable archives

Funcpack installs a project's declared dependencies into an isolated build
directory, copies the source tree through an exclusion filter, trims dead
weight from installed libraries, and produces a validated zip archive in the
project's publish directory together with a full build log.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // We handle error printing in main.go
		SilenceUsage:  true, // We handle usage printing manually
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Verbose, "verbose", false, "show detailed error context")

	// Disable Cobra's default completion command (we register our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add all subcommands
	rootCmd.AddCommand(
		newPackCmd(),
		newDoctorCmd(),
		newCleanCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}
