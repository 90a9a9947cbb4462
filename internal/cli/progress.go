package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/widget"
)

// logoUpdateMsg carries a state change of one attached file.
type logoUpdateMsg logo.Item

// uploadsDoneMsg is sent once every upload has finished.
type uploadsDoneMsg struct {
	results []logo.Result
}

// progressModel is the bubbletea model for logo uploads.
type progressModel struct {
	items    []logo.Item
	results  []logo.Result
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
}

// newProgressModel creates a new progress model.
func newProgressModel() progressModel {
	// Create progress bar with color blend
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command.
func (m progressModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case logoUpdateMsg:
		item := logo.Item(msg)
		for i := range m.items {
			if m.items[i].ID == item.ID {
				m.items[i] = item
				return m, nil
			}
		}
		m.items = append(m.items, item)
		return m, nil

	case uploadsDoneMsg:
		m.results = msg.results
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) finished() int {
	n := 0
	for _, it := range m.items {
		if it.Status != logo.StatusUploading {
			n++
		}
	}
	return n
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}
	if len(m.items) == 0 {
		return "Checking files...\n"
	}

	pct := float64(m.finished()) / float64(len(m.items))

	status := m.theme.statusStyle().Render("[uploading]")
	counts := fmt.Sprintf("%d/%d files", m.finished(), len(m.items))

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", status, m.progress.ViewAs(pct), counts)
	for _, it := range m.items {
		b.WriteString("  " + m.theme.formatLogo(it) + "\n")
	}
	b.WriteString(m.theme.hintStyle().Render("Press Ctrl+C to stop watching"))
	b.WriteString("\n")
	return b.String()
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nUploads continue until the command exits.\n")
	}
	return formatUploadResults(m.theme, m.results)
}

// formatUploadResults lists what happened to every requested file.
func formatUploadResults(t Theme, results []logo.Result) string {
	var b strings.Builder
	var ok int
	for _, r := range results {
		switch {
		case r.Item.ID == "":
			b.WriteString(t.errorStyle().Render("✗ "+logo.InvalidFileMessage(r.Path)) + "\n")
			if r.Err != nil {
				b.WriteString(t.hintStyle().Render("  "+r.Err.Error()) + "\n")
			}
		default:
			if r.Err == nil {
				ok++
			}
			b.WriteString(t.formatLogo(r.Item) + "\n")
		}
	}

	summary := fmt.Sprintf("%d of %d file(s) uploaded", ok, len(results))
	if ok == len(results) {
		b.WriteString(t.completedStyle().Render("✓ "+summary) + "\n")
	} else {
		b.WriteString(t.errorStyle().Render("✗ "+summary) + "\n")
	}
	return b.String()
}

// RunUploadProgress uploads paths through app while showing a live progress
// display. It returns the per-file results.
func RunUploadProgress(ctx context.Context, app *widget.App, paths []string) ([]logo.Result, error) {
	p := tea.NewProgram(newProgressModel())

	unsubscribe := app.Subscribe(func(ev widget.Event) {
		if ev.Kind == widget.LogoChanged && ev.Logo != nil {
			p.Send(logoUpdateMsg(*ev.Logo))
		}
	})
	defer unsubscribe()

	resultsCh := make(chan []logo.Result, 1)
	go func() {
		results := app.AttachLogos(ctx, paths)
		resultsCh <- results
		p.Send(uploadsDoneMsg{results: results})
	}()

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}
	return <-resultsCh, nil
}
