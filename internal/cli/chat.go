package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/spf13/cobra"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat (default command)",
	Long: `Start an interactive chat with the sign shop assistant.

A full-screen interface is used when the terminal supports it; otherwise,
or with --plain, signchat reads one line at a time from stdin.

Commands inside the chat:
` + chatHelp + `

Examples:
  signchat
  signchat chat --session session_1718000000000_k3j5h2x9q
  echo "Do you make neon signs?" | signchat chat --plain`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-by-line mode without the full-screen interface")
}

const chatHelp = `  /design            start designing a custom sign
  /quote             ask for a mockup and quote
  /portfolio         see examples of previous work
  /form              open the quote request form
  /attach <files>    upload logo files
  /remove <id>       remove an attached logo
  /logos             list the logos uploaded in this session
  /email <address>   share your email address
  /phone <number>    leave a callback number
  /reset             clear the quote form and attached logos
  /help              show this help
  /quit              leave the chat`

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app := newApp()

	if sessionFlag != "" {
		if _, err := app.Resume(ctx); err != nil {
			logger.Warn("session not resumed", "session", sessionFlag, "error", err)
		}
	}

	if !chatPlain && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
		return RunChatUI(ctx, app)
	}
	return runREPL(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
}

// inputResult is what handling one line of chat input produced.
type inputResult struct {
	notice string
	failed bool
	quit   bool
}

// chatSession turns chat input into app operations. Both the line mode and
// the full-screen interface use it.
type chatSession struct {
	app *widget.App
}

// handle runs one line of input. Backend replies land in the transcript;
// the result only carries local notices.
func (s *chatSession) handle(ctx context.Context, line string) inputResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return inputResult{}
	}

	if !strings.HasPrefix(line, "/") {
		if s.app.Email().FieldVisible {
			return s.submitEmail(ctx, line)
		}
		if action, ok := widget.MatchQuickAction(line); ok {
			return s.quickAction(ctx, action)
		}
		_, err := s.app.SendMessage(ctx, line)
		return sendResult(err)
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/quit", "/exit":
		return inputResult{quit: true}
	case "/help":
		return inputResult{notice: chatHelp}
	case "/design":
		return s.quickAction(ctx, widget.ActionStartDesign)
	case "/quote":
		return s.quickAction(ctx, widget.ActionGetQuote)
	case "/portfolio":
		return s.quickAction(ctx, widget.ActionViewPortfolio)
	case "/form":
		if err := s.app.OpenQuoteForm(ctx); err != nil {
			logger.Warn("saved draft not loaded", "error", err)
		}
		return inputResult{}
	case "/email":
		return s.submitEmail(ctx, rest)
	case "/attach":
		paths := strings.Fields(rest)
		if len(paths) == 0 {
			return inputResult{notice: "Usage: /attach <files>", failed: true}
		}
		results := s.app.AttachLogos(ctx, paths)
		return inputResult{notice: strings.TrimRight(formatUploadResults(defaultTheme, results), "\n"), failed: countFailed(results) > 0}
	case "/remove":
		if !s.app.RemoveLogo(rest) {
			return inputResult{notice: fmt.Sprintf("No attached logo with id %q.", rest), failed: true}
		}
		return inputResult{notice: fmt.Sprintf("Removed logo %s. %s", rest, attachedCount(s.app.Logos()))}
	case "/logos":
		_, _ = s.app.ListSessionLogos(ctx)
		return inputResult{}
	case "/phone":
		if err := s.app.SavePhone(ctx, rest); err != nil {
			return inputResult{notice: "Could not save phone number: " + err.Error(), failed: true}
		}
		return inputResult{notice: "Phone number saved."}
	case "/reset":
		s.app.ResetQuote()
		return inputResult{notice: "Quote form cleared."}
	}
	return inputResult{notice: fmt.Sprintf("Unknown command %s. Type /help for the list.", name), failed: true}
}

func (s *chatSession) quickAction(ctx context.Context, action widget.QuickAction) inputResult {
	_, err := s.app.QuickAction(ctx, action)
	return sendResult(err)
}

func (s *chatSession) submitEmail(ctx context.Context, address string) inputResult {
	err := s.app.SubmitEmail(ctx, address)
	return inputResult{notice: widget.EmailErrorMessage(err), failed: err != nil}
}

func sendResult(err error) inputResult {
	switch {
	case err == nil:
		return inputResult{}
	case errors.Is(err, widget.ErrInputDisabled):
		return inputResult{notice: "Please enter your email first...", failed: true}
	case errors.Is(err, widget.ErrBusy):
		return inputResult{notice: "Still waiting for the assistant.", failed: true}
	}
	// The failure message is already in the transcript.
	logger.Debug("chat turn failed", "error", err)
	return inputResult{}
}

func attachedCount(l *logo.List) string {
	return fmt.Sprintf("%d logo(s) attached.", l.Count())
}
