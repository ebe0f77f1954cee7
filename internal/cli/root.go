// Package cli implements the command line interface of the tracker service.
package cli

import (
	"github.com/spf13/cobra"

	"jobtracker/tracker-service/internal/config"
)

// RootOptions holds global state shared by all commands.
type RootOptions struct {
	Version string

	// LoadConfig allows overriding configuration loading (for testing).
	// If nil, defaults to config.Load.
	LoadConfig func() (*config.Config, error)
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.LoadConfig != nil {
		return o.LoadConfig()
	}
	return config.Load()
}

// NewRootCommand creates the root command of the tracker CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}
	return newRootCommand(opts)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tracker",
		Short:   "Job application tracker",
		Long:    "Track job applications, their status and their OA and interview deadlines.",
		Version: opts.Version,
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewUpcomingCommand(opts))

	return cmd
}
