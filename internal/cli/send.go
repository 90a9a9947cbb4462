package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/spf13/cobra"
)

var sendQuick string

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message to the assistant",
	Long: `Send one message and print the assistant's reply.

Short intents such as "I want a quote" are sent as the matching quick
action. Use --quick to pick a quick action explicitly: start-design,
get-quote or view-portfolio.

The session id is printed on stderr so follow-up commands can continue
the same conversation with --session.

Examples:
  signchat send "Do you make neon signs?"
  signchat send --quick get-quote --email jane@example.com
  signchat send "Here is my logo" --session session_1718000000000_k3j5h2x9q`,
	Args: cobra.ArbitraryArgs,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendQuick, "quick", "q", "", "send a quick action (start-design, get-quote, view-portfolio)")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	text := strings.Join(args, " ")

	action := widget.QuickAction(sendQuick)
	if action == "" {
		if matched, ok := widget.MatchQuickAction(text); ok {
			action = matched
		}
	}
	if action == "" && strings.TrimSpace(text) == "" {
		return fmt.Errorf("message or --quick is required")
	}

	app := newApp()
	fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", app.Session())

	var (
		reply *widget.Reply
		err   error
	)
	if action != "" {
		reply, err = app.QuickAction(ctx, action)
	} else {
		reply, err = app.SendMessage(ctx, text)
	}
	if err != nil {
		if len(app.Transcript()) > 0 {
			printTranscript(out, app.Transcript()[len(app.Transcript())-1:])
		}
		return err
	}

	fmt.Fprintln(out, reply.Text)
	printReplyHints(cmd, app, reply)
	return nil
}

// printReplyHints tells a one-shot user which command answers what the
// assistant asked for.
func printReplyHints(cmd *cobra.Command, app *widget.App, reply *widget.Reply) {
	hint := defaultTheme.hintStyle()
	w := cmd.ErrOrStderr()
	sid := app.Session()

	if reply.EmailRequested {
		fmt.Fprintln(w, hint.Render(fmt.Sprintf("→ share your email: signchat email <address> --session %s", sid)))
	}
	if reply.PhoneRequested {
		fmt.Fprintln(w, hint.Render(fmt.Sprintf("→ leave a number: signchat phone set <number> --session %s", sid)))
	}
	if reply.QuoteFormOpened {
		fmt.Fprintln(w, hint.Render(fmt.Sprintf("→ fill in the quote: signchat quote submit --session %s --email %s", sid, app.Email().Address)))
	}
}
