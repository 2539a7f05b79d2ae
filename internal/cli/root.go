package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xapi-tools/xenwrap/internal/errors"
	"github.com/xapi-tools/xenwrap/internal/ui"
)

// rootCmd is the relay itself; there are no operational subcommands.
var rootCmd = &cobra.Command{
	Use:   "xenwrap <config-file> <command> [args...]",
	Short: "Relay filtered privileged commands to the XenAPI management plane",
	Long: `xenwrap validates a command against rule-based filter definitions and,
if permitted, forwards it to this host's XenAPI management plane for
execution, printing the decoded result.

Data on standard input at invocation time is captured and forwarded as
the command's input payload.

Exit statuses:
  0   success
  96  remote execution error
  97  bad or missing configuration
  98  no command given
  99  unauthorized command`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return relayCommand(args)
	},
}

func init() {
	// Tokens after the config path may themselves look like flags
	// (e.g. "ip -s link"); stop flag parsing at the first positional.
	rootCmd.Flags().SetInterspersed(false)
}

// relayCommand validates the positional arguments and runs the relay.
func relayCommand(args []string) error {
	if len(args) < 2 {
		return errors.New(errors.ErrUsage,
			"No command given",
			"Usage: xenwrap <config-file> <command> [args...]")
	}

	return Relay(RelayOptions{
		ConfigPath: args[0],
		Tokens:     args[1:],
	})
}

// Execute runs the root command and terminates the process with the
// exit status of the failure class, printing diagnostics to stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.RenderError(os.Stderr, err)
		os.Exit(errors.ExitStatus(err))
	}
}
