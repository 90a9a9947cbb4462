package cli

import (
	"fmt"

	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/spf13/cobra"
)

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Share your email address with the assistant",
	Long: `Validate an email address with the backend and tell the assistant.

Examples:
  signchat email jane@example.com --session session_1718000000000_k3j5h2x9q`,
	Args: cobra.ExactArgs(1),
	RunE: runEmail,
}

func runEmail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	app := newApp()
	fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", app.Session())

	if err := app.SubmitEmail(ctx, args[0]); err != nil {
		fmt.Fprintln(out, defaultTheme.errorStyle().Render(widget.EmailErrorMessage(err)))
		return err
	}

	fmt.Fprintln(out, defaultTheme.completedStyle().Render(widget.EmailSavedMessage))
	printTranscript(out, app.Transcript())
	return nil
}
