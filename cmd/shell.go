package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/shell"
)

// shellCmd represents the 'shell' command. It is also what the root
// command runs when no subcommand is given.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactively convert inventory files until interrupted",
	Long: `The shell asks for an inventory file name without extension, converts
<name>.csv from the working directory and reports the rows that could not be
converted. It then asks again. Press Ctrl+C to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// runShell runs the prompt loop. An operator interrupt is a clean exit.
func runShell(ctx context.Context) error {
	conv, release, err := newConverter()
	if err != nil {
		return err
	}
	defer release()

	sh := shell.New(
		promptDriver(),
		conv,
		shell.WithMessages(shell.MessagesFor(cfg.Language)),
		shell.WithLogger(logger),
	)

	err = sh.Loop(ctx)
	if errors.Is(err, shell.ErrAborted) || errors.Is(err, context.Canceled) {
		logger.Debug("shell closed by operator")
		return nil
	}
	return err
}

// promptDriver picks interactive prompts on a terminal and plain line input
// when stdin is piped or redirected.
func promptDriver() shell.PromptDriver {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return shell.NewSurveyDriver(os.Stdout)
	}
	logger.Debug("stdin is not a terminal, reading file names line by line")
	return shell.NewLineDriver(os.Stdin, os.Stdout)
}
