package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the transcript of a session",
	Long: `Show the conversation the backend stored for a session, along with the
email and phone number it knows about.

Examples:
  signchat history --session session_1718000000000_k3j5h2x9q`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	app := newApp()
	found, err := app.Resume(cmd.Context())
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(out, "No conversation found for this session.")
		return nil
	}

	printTranscript(out, app.Transcript())
	if email := app.Email().Address; email != "" {
		fmt.Fprintf(out, "Email: %s\n", email)
	}
	if phone := app.Phone(); phone != "" {
		fmt.Fprintf(out, "Phone: %s\n", phone)
	}
	return nil
}
