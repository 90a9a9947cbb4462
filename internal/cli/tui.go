package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/widget"
)

// maxVisibleMessages is how many transcript entries the chat view shows.
const maxVisibleMessages = 12

type chatMode int

const (
	modeChat chatMode = iota
	modeForm
	modeSummary
)

// handledMsg carries the result of one line of chat input.
type handledMsg struct {
	res inputResult
}

// quoteResultMsg carries the outcome of a quote submission.
type quoteResultMsg struct {
	summary *quote.Summary
	err     error
}

// appEventMsg signals that the app state changed outside Update.
type appEventMsg struct {
	kind widget.EventKind
}

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	ctx     context.Context
	app     *widget.App
	session *chatSession
	theme   Theme

	input  textinput.Model
	fields []textinput.Model
	focus  int

	mode         chatMode
	waiting      bool
	notice       string
	noticeFailed bool
	summary      *quote.Summary
}

// newChatModel creates a new chat model.
func newChatModel(ctx context.Context, app *widget.App) chatModel {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "Type your message here..."
	input.CharLimit = 2000
	input.Focus()

	return chatModel{
		ctx:     ctx,
		app:     app,
		session: &chatSession{app: app},
		theme:   defaultTheme,
		input:   input,
	}
}

// Init implements tea.Model.
func (m chatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeSummary:
			return m.updateSummary(msg)
		}
		return m.updateChat(msg)

	case handledMsg:
		m.waiting = false
		m.setNotice(msg.res.notice, msg.res.failed)
		if msg.res.quit {
			return m, tea.Quit
		}
		return m.syncMode()

	case quoteResultMsg:
		m.waiting = false
		if msg.err != nil {
			m.setNotice(widget.QuoteErrorMessage(msg.err), true)
			return m, nil
		}
		m.summary = msg.summary
		m.mode = modeSummary
		m.setNotice("", false)
		return m, nil

	case appEventMsg:
		// The draft lands after the form opened; show what was restored.
		if msg.kind == widget.QuoteDraftLoaded && m.mode == modeForm {
			m.reloadFields()
		}
		return m.syncMode()
	}

	return m.forward(msg)
}

// forward passes non-key messages such as cursor blinks to the focused input.
func (m chatModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.mode == modeForm && len(m.fields) > 0 {
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// syncMode opens the form when the app opened it, for example after the
// assistant triggered it.
func (m chatModel) syncMode() (tea.Model, tea.Cmd) {
	if m.app.QuoteOpen() && m.mode == modeChat {
		cmd := m.enterForm()
		return m, cmd
	}
	if !m.app.QuoteOpen() && m.mode == modeForm {
		m.mode = modeChat
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m *chatModel) setNotice(text string, failed bool) {
	m.notice = text
	m.noticeFailed = failed
}

func (m chatModel) updateChat(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	if m.waiting {
		m.setNotice("Still waiting for the assistant.", true)
		return m, nil
	}

	m.input.Reset()
	m.waiting = true
	m.setNotice("", false)
	return m, m.handle(line)
}

func (m chatModel) handle(line string) tea.Cmd {
	return func() tea.Msg {
		return handledMsg{res: m.session.handle(m.ctx, line)}
	}
}

// enterForm builds one input per form field from the current form values.
func (m *chatModel) enterForm() tea.Cmd {
	form := m.app.Form()
	m.fields = make([]textinput.Model, len(quote.Fields))
	for i, spec := range quote.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = spec.Placeholder
		ti.SetValue(form.Value(spec.Name))
		m.fields[i] = ti
	}
	m.focus = 0
	m.mode = modeForm
	m.input.Blur()
	return m.fields[0].Focus()
}

func (m *chatModel) moveFocus(delta int) tea.Cmd {
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].Focus()
}

// reloadFields copies form values into the inputs after the form changed
// underneath them.
func (m *chatModel) reloadFields() {
	form := m.app.Form()
	for i, spec := range quote.Fields {
		m.fields[i].SetValue(form.Value(spec.Name))
	}
}

func (m chatModel) updateForm(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	spec := quote.Fields[m.focus]
	form := m.app.Form()

	switch msg.String() {
	case "tab", "down":
		cmd := m.moveFocus(1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.moveFocus(-1)
		return m, cmd
	case "ctrl+u":
		if spec.Dimension {
			if _, err := form.CycleUnit(spec.Name); err != nil {
				m.setNotice(err.Error(), true)
			}
		}
		return m, nil
	case "ctrl+r":
		m.app.ResetQuote()
		m.reloadFields()
		m.setNotice("Quote form cleared.", false)
		return m, nil
	case "esc":
		m.app.CloseQuoteForm()
		m.mode = modeChat
		m.setNotice("Quote form closed.", false)
		cmd := m.input.Focus()
		return m, cmd
	case "enter":
		if m.focus < len(m.fields)-1 {
			cmd := m.moveFocus(1)
			return m, cmd
		}
		return m.submitQuote()
	case "ctrl+s":
		return m.submitQuote()
	}

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	if err := form.Set(spec.Name, m.fields[m.focus].Value()); err != nil {
		m.setNotice(err.Error(), true)
	}
	return m, cmd
}

func (m chatModel) submitQuote() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	if err := m.app.Form().ValidateDimensions(); err != nil {
		m.setNotice(quote.UserMessage(err), true)
		return m, nil
	}
	m.waiting = true
	m.setNotice("Submitting quote request...", false)
	return m, func() tea.Msg {
		summary, err := m.app.SubmitQuote(m.ctx)
		return quoteResultMsg{summary: summary, err: err}
	}
}

func (m chatModel) updateSummary(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		m.summary = nil
		m.mode = modeChat
		return m, func() tea.Msg {
			if err := m.app.RequestChanges(m.ctx); err != nil {
				return handledMsg{res: inputResult{notice: "Saved draft could not be loaded.", failed: true}}
			}
			return handledMsg{}
		}
	case "enter", "esc", "q":
		m.app.DismissSummary()
		m.summary = nil
		m.mode = modeChat
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

// View renders the chat.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m chatModel) renderContent() string {
	var b strings.Builder
	b.WriteString(m.theme.completedStyle().Render("Sign Shop Assistant"))
	b.WriteString(m.theme.hintStyle().Render("  " + m.app.Session().String()))
	b.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.renderForm())
	case modeSummary:
		if m.summary != nil {
			b.WriteString(m.theme.formatSummary(*m.summary))
		}
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render("enter: back to chat • c: request changes"))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderChat())
	}

	if m.notice != "" {
		style := m.theme.statusStyle()
		if m.noticeFailed {
			style = m.theme.errorStyle()
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	}
	return b.String()
}

func (m chatModel) renderChat() string {
	var b strings.Builder

	transcript := m.app.Transcript()
	if len(transcript) == 0 {
		b.WriteString(m.theme.hintStyle().Render("Hi! Ask about custom signs, or try /quote, /design or /portfolio."))
		b.WriteString("\n\n")
	}
	if len(transcript) > maxVisibleMessages {
		transcript = transcript[len(transcript)-maxVisibleMessages:]
	}
	for _, msg := range transcript {
		b.WriteString(m.theme.formatMessage(msg))
		b.WriteString("\n")
	}
	if m.app.Typing() {
		b.WriteString(m.theme.hintStyle().Render("Assistant is typing..."))
		b.WriteString("\n\n")
	}

	if items := m.app.Logos().Items(); len(items) > 0 {
		for _, it := range items {
			b.WriteString("  " + m.theme.formatLogo(it) + "\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.app.Email().FieldVisible:
		b.WriteString(m.theme.statusStyle().Render("Please enter your email first..."))
		b.WriteString("\n")
	case !m.app.InputEnabled():
		b.WriteString(m.theme.hintStyle().Render("Input is disabled."))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render("enter: send • /help: commands • ctrl+c: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m chatModel) renderForm() string {
	form := m.app.Form()
	var b strings.Builder
	b.WriteString(m.theme.statusStyle().Render("Quote Request"))
	b.WriteString("\n\n")

	for i, spec := range quote.Fields {
		marker := "  "
		if i == m.focus {
			marker = m.theme.activeStyle().Render("›") + " "
		}
		fmt.Fprintf(&b, "%s%-22s %s", marker, spec.Label+":", m.fields[i].View())
		if spec.Dimension {
			b.WriteString("  " + m.renderToggles(form.Toggles(spec.Name)))
		}
		b.WriteString("\n")
	}

	if n := m.app.Logos().Count(); n > 0 {
		fmt.Fprintf(&b, "\n  Logo Files: %d file(s) uploaded\n", n)
	}

	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render("tab/↑↓: move • ctrl+u: change unit • ctrl+s: submit • ctrl+r: reset • esc: cancel"))
	b.WriteString("\n")
	return m.theme.boxStyle().Render(b.String())
}

func (m chatModel) renderToggles(toggles []quote.Toggle) string {
	parts := make([]string, len(toggles))
	for i, t := range toggles {
		if t.Active {
			parts[i] = m.theme.activeStyle().Render("[" + t.Unit.Short() + "]")
		} else {
			parts[i] = m.theme.hintStyle().Render(t.Unit.Short())
		}
	}
	return strings.Join(parts, " ")
}

// RunChatUI runs the interactive chat until the user quits.
func RunChatUI(ctx context.Context, app *widget.App) error {
	p := tea.NewProgram(newChatModel(ctx, app))

	unsubscribe := app.Subscribe(func(ev widget.Event) {
		// Events can fire inside Update, where a blocking Send would deadlock.
		go p.Send(appEventMsg{kind: ev.Kind})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
