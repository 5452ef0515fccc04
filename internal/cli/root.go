package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the punchctl CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	opts := &RootOptions{now: now}

	cmd := &cobra.Command{
		Use:   "punchctl",
		Short: "punchctl - employee attendance from the terminal",
		Long: `Punch in and out of customer sites and browse attendance records.

punchctl keeps its session (credential, signed-in user, open punch) in a
local SQLite file, so commands pick up where the last one left off.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
				return NewExitError(ExitCommandError, msg)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: user config dir)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewPunchInCommand(opts))
	cmd.AddCommand(NewPunchOutCommand(opts))
	cmd.AddCommand(NewCustomersCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewPasswordCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}
