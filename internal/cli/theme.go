package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/widget"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Status    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
	Accent    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	User:      lipgloss.Color("#D7AF5F"), // amber
	Assistant: lipgloss.Color("#5FAFD7"), // light blue
	Status:    lipgloss.Color("#5FAFD7"), // light blue
	Success:   lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
	Accent:    lipgloss.Color("#AF87FF"), // violet
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t Theme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant).Bold(true)
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
}

func (t Theme) boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Accent).
		Padding(0, 1)
}

// formatMessage renders one transcript entry with a speaker label.
func (t Theme) formatMessage(m widget.Message) string {
	label := t.assistantStyle().Render("Assistant")
	if m.Sender == widget.SenderUser {
		label = t.userStyle().Render("You")
	}
	stamp := t.hintStyle().Render(m.Time.Format("15:04"))
	return fmt.Sprintf("%s %s\n%s\n", label, stamp, indent(m.Text, "  "))
}

// formatSummary renders a submitted quote in a bordered box.
func (t Theme) formatSummary(s quote.Summary) string {
	var b strings.Builder
	b.WriteString(t.completedStyle().Render(s.Title))
	b.WriteString("\n\n")
	for _, item := range s.Items {
		fmt.Fprintf(&b, "%-22s %s\n", item.Label+":", item.Value)
	}
	b.WriteString("\n")
	b.WriteString(t.statusStyle().Render("Next Steps:"))
	for _, step := range s.NextSteps {
		fmt.Fprintf(&b, "\n  • %s", step)
	}
	return t.boxStyle().Render(b.String())
}

// formatLogo renders one attached file with its upload state.
func (t Theme) formatLogo(it logo.Item) string {
	switch it.Status {
	case logo.StatusSuccess:
		return fmt.Sprintf("%s %s %s", t.completedStyle().Render("✓"), it.Filename, t.hintStyle().Render(it.ID))
	case logo.StatusError:
		return fmt.Sprintf("%s %s %s", t.errorStyle().Render("✗"), it.Filename, t.errorStyle().Render(it.Err))
	default:
		return fmt.Sprintf("%s %s", t.statusStyle().Render("…"), it.Filename)
	}
}

// printTranscript writes messages to w.
func printTranscript(w io.Writer, msgs []widget.Message) {
	for _, m := range msgs {
		fmt.Fprintln(w, defaultTheme.formatMessage(m))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
