package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/widget"
)

// repl is the line-by-line chat used when stdin is not a terminal.
type repl struct {
	app     *widget.App
	session *chatSession
	in      *bufio.Scanner
	out     io.Writer
	theme   Theme
	shown   int
}

func runREPL(ctx context.Context, app *widget.App, in io.Reader, out io.Writer) error {
	r := &repl{
		app:     app,
		session: &chatSession{app: app},
		in:      bufio.NewScanner(in),
		out:     out,
		theme:   defaultTheme,
	}

	fmt.Fprintf(out, "Connected to the sign shop assistant (session %s).\n", app.Session())
	fmt.Fprintln(out, r.theme.hintStyle().Render("Type /help for commands, /quit to leave."))
	r.flush()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := r.prompt(r.promptText())
		if !ok {
			break
		}

		res := r.session.handle(ctx, line)
		r.flush()
		r.notice(res)
		if res.quit {
			break
		}
		if r.app.QuoteOpen() {
			if err := r.runForm(ctx); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(out, "Goodbye!")
	return r.in.Err()
}

func (r *repl) promptText() string {
	if r.app.Email().FieldVisible {
		return "email> "
	}
	return "> "
}

// prompt writes text and reads one line. It reports false at end of input.
func (r *repl) prompt(text string) (string, bool) {
	fmt.Fprint(r.out, text)
	if !r.in.Scan() {
		fmt.Fprintln(r.out)
		return "", false
	}
	return r.in.Text(), true
}

// flush prints transcript messages not shown yet.
func (r *repl) flush() {
	transcript := r.app.Transcript()
	if r.shown > len(transcript) {
		r.shown = 0
	}
	printTranscript(r.out, transcript[r.shown:])
	r.shown = len(transcript)
}

func (r *repl) notice(res inputResult) {
	if res.notice == "" {
		return
	}
	style := r.theme.statusStyle()
	if res.failed {
		style = r.theme.errorStyle()
	}
	fmt.Fprintln(r.out, style.Render(res.notice))
}

var errInputClosed = errors.New("input closed")

// runForm walks through the quote form one field at a time until the quote
// is submitted or the user cancels.
func (r *repl) runForm(ctx context.Context) error {
	form := r.app.Form()
	fmt.Fprintln(r.out, r.theme.completedStyle().Render("Quote request"))
	fmt.Fprintln(r.out, r.theme.hintStyle().Render("Enter keeps the shown value, '-' clears it. Sizes accept a unit, e.g. '4 ft'."))

	for {
		if err := r.fillFields(form); err != nil {
			if errors.Is(err, errInputClosed) {
				r.app.CloseQuoteForm()
				return nil
			}
			return err
		}

		answer, ok := r.prompt("Submit quote request? [Y/n/edit] ")
		if !ok {
			r.app.CloseQuoteForm()
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "n", "no", "cancel":
			r.app.CloseQuoteForm()
			fmt.Fprintln(r.out, r.theme.hintStyle().Render("Quote form closed."))
			return nil
		case "e", "edit":
			continue
		}

		summary, err := r.app.SubmitQuote(ctx)
		if err != nil {
			fmt.Fprintln(r.out, r.theme.errorStyle().Render(widget.QuoteErrorMessage(err)))
			if errors.Is(err, widget.ErrEmailNotCollected) {
				r.app.CloseQuoteForm()
				return nil
			}
			continue
		}

		fmt.Fprintln(r.out, r.theme.formatSummary(*summary))
		r.app.DismissSummary()
		r.flush()
		return nil
	}
}

func (r *repl) fillFields(form *quote.Form) error {
	for _, spec := range quote.Fields {
		label := spec.Label
		if spec.Dimension {
			label = fmt.Sprintf("%s (%s)", label, form.Unit(spec.Name))
		}
		if cur := form.Value(spec.Name); cur != "" {
			label = fmt.Sprintf("%s [%s]", label, cur)
		}

		line, ok := r.prompt(label + ": ")
		if !ok {
			return errInputClosed
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case line == "-":
			line = ""
		case spec.Dimension:
			value, unit, hasUnit := splitDimension(line)
			if hasUnit {
				if err := form.SetUnit(spec.Name, unit); err != nil {
					return err
				}
			}
			line = value
		}
		if err := form.Set(spec.Name, line); err != nil {
			return err
		}
	}
	return nil
}

// splitDimension separates an optional unit suffix from a size, so "4 ft"
// and "4ft" both yield ("4", feet, true).
func splitDimension(s string) (string, quote.Unit, bool) {
	i := strings.IndexFunc(s, unicode.IsLetter)
	if i <= 0 {
		return s, "", false
	}
	unit, ok := quote.ParseUnit(s[i:])
	if !ok {
		return s, "", false
	}
	return strings.TrimSpace(s[:i]), unit, true
}
