package cli

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/signchat/internal/client"
	"github.com/raphaelgruber/signchat/internal/fakebackend"
	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// activeToggle matches a unit rendered as the active toggle.
var activeToggle = regexp.MustCompile(`\[(in|ft|cm|m)\]`)

// uiHarness drives a chatModel the way the program loop does: keys go to
// Update, and app events come back as appEventMsg once the key is handled.
type uiHarness struct {
	backend *fakebackend.Backend
	app     *widget.App
	m       chatModel

	mu      sync.Mutex
	pending []widget.EventKind
}

func newUIHarness(t *testing.T, opts ...widget.Option) *uiHarness {
	t.Helper()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	backend, srv := fakebackend.NewServer(t)
	app := widget.New(client.New(srv.URL), opts...)
	h := &uiHarness{
		backend: backend,
		app:     app,
		m:       newChatModel(context.Background(), app),
	}
	t.Cleanup(app.Subscribe(func(ev widget.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.pending = append(h.pending, ev.Kind)
	}))
	return h
}

func (h *uiHarness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(chatModel)
	return cmd
}

// flush delivers queued app events in order.
func (h *uiHarness) flush() {
	for {
		h.mu.Lock()
		if len(h.pending) == 0 {
			h.mu.Unlock()
			return
		}
		kind := h.pending[0]
		h.pending = h.pending[1:]
		h.mu.Unlock()

		h.update(appEventMsg{kind: kind})
	}
}

func (h *uiHarness) press(key tea.KeyPressMsg) {
	h.update(key)
	h.flush()
}

// pressAndWait handles a key that starts backend work and delivers the
// result of that work.
func (h *uiHarness) pressAndWait(t *testing.T, key tea.KeyPressMsg) {
	t.Helper()
	cmd := h.update(key)
	require.NotNil(t, cmd)
	h.update(cmd())
	h.flush()
}

func (h *uiHarness) typeText(s string) {
	for _, r := range s {
		h.press(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func (h *uiHarness) fieldValue(name string) string {
	for i, spec := range quote.Fields {
		if spec.Name == name {
			return h.m.fields[i].Value()
		}
	}
	return ""
}

func keyOf(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// openForm opens the quote form through the /form chat command.
func (h *uiHarness) openForm(t *testing.T) {
	t.Helper()
	h.typeText("/form")
	h.pressAndWait(t, keyOf(tea.KeyEnter))
	require.Equal(t, modeForm, h.m.mode)
}

func TestChatUISendMessage(t *testing.T) {
	h := newUIHarness(t)

	h.typeText("hello there friend")
	h.pressAndWait(t, keyOf(tea.KeyEnter))

	assert.False(t, h.m.waiting)
	assert.Empty(t, h.m.input.Value(), "input cleared after send")
	assert.Contains(t, h.m.renderContent(), "You said: hello there friend")
	assert.Len(t, h.backend.Chats(), 1)
}

func TestChatUIShowsDraftLoadedAfterOpen(t *testing.T) {
	h := newUIHarness(t, widget.WithEmail("jane@example.com"))
	h.backend.SetQuote(h.app.Session().String(), map[string]any{
		"width":             "4",
		"height":            "2",
		"widthUnit":         "feet",
		quote.FieldLocation: "Denver, CO",
	})

	// Deliver the open event while the draft is still being fetched, as the
	// program loop may.
	opened := false
	unsubscribe := h.app.Subscribe(func(ev widget.Event) {
		if ev.Kind == widget.QuoteFormOpened && !opened {
			opened = true
			h.update(appEventMsg{kind: ev.Kind})
			assert.Empty(t, h.fieldValue(quote.FieldLocation), "draft not fetched yet")
		}
	})
	defer unsubscribe()

	h.openForm(t)
	require.True(t, opened)

	assert.Equal(t, "Denver, CO", h.fieldValue(quote.FieldLocation))
	assert.Equal(t, "4", h.fieldValue(quote.FieldWidth))
	assert.Equal(t, "2", h.fieldValue(quote.FieldHeight))

	form := h.m.renderForm()
	assert.Equal(t, []string{"[ft]", "[in]"}, activeToggle.FindAllString(form, -1))
}

func TestChatUICycleUnit(t *testing.T) {
	h := newUIHarness(t)
	h.openForm(t)
	require.Equal(t, 0, h.m.focus)

	h.press(ctrlKey('u'))
	assert.Equal(t, quote.Feet, h.app.Form().Unit(quote.FieldWidth))

	toggles := activeToggle.FindAllString(h.m.renderToggles(h.app.Form().Toggles(quote.FieldWidth)), -1)
	assert.Equal(t, []string{"[ft]"}, toggles)

	// Non-dimension fields ignore the unit key.
	h.press(keyOf(tea.KeyTab))
	h.press(keyOf(tea.KeyTab))
	h.press(ctrlKey('u'))
	assert.Equal(t, quote.Inches, h.app.Form().Unit(quote.FieldHeight))
	assert.Equal(t, quote.Feet, h.app.Form().Unit(quote.FieldWidth))
}

func TestChatUIEscClosesFormKeepsUnits(t *testing.T) {
	h := newUIHarness(t)
	h.openForm(t)

	h.press(ctrlKey('u'))
	h.press(keyOf(tea.KeyDown))
	h.press(keyOf(tea.KeyDown))
	h.typeText("vinyl")
	require.Equal(t, "vinyl", h.app.Form().Value(quote.FieldMaterial))

	h.press(keyOf(tea.KeyEscape))

	assert.Equal(t, modeChat, h.m.mode)
	assert.False(t, h.app.QuoteOpen())
	assert.Equal(t, "Quote form closed.", h.m.notice)
	assert.Empty(t, h.app.Form().Value(quote.FieldMaterial))
	assert.Equal(t, quote.Feet, h.app.Form().Unit(quote.FieldWidth))
}

func TestChatUISubmitInvalidDimensions(t *testing.T) {
	tests := []struct {
		name    string
		width   string
		height  string
		wantErr error
	}{
		{"width only", "4", "", quote.ErrDimensionsIncomplete},
		{"not a number", "4", "tall", quote.ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newUIHarness(t, widget.WithEmail("jane@example.com"))
			h.openForm(t)

			h.typeText(tt.width)
			h.press(keyOf(tea.KeyTab))
			h.typeText(tt.height)

			cmd := h.update(ctrlKey('s'))
			assert.Nil(t, cmd, "nothing is sent")
			assert.Equal(t, quote.UserMessage(tt.wantErr), h.m.notice)
			assert.True(t, h.m.noticeFailed)
			assert.Equal(t, modeForm, h.m.mode)
			assert.True(t, h.app.QuoteOpen())
			assert.Nil(t, h.backend.Quote(h.app.Session().String()))
		})
	}
}

func TestChatUISummaryRequestChanges(t *testing.T) {
	h := newUIHarness(t, widget.WithEmail("jane@example.com"))
	h.openForm(t)

	for range 5 {
		h.press(keyOf(tea.KeyTab))
	}
	require.Equal(t, quote.FieldLocation, quote.Fields[h.m.focus].Name)
	h.typeText("Denver, CO")

	h.pressAndWait(t, ctrlKey('s'))
	require.Equal(t, modeSummary, h.m.mode)
	require.NotNil(t, h.m.summary)
	assert.Contains(t, h.m.renderContent(), "Your Quote Request Details")
	assert.Equal(t, "Denver, CO", h.backend.Quote(h.app.Session().String())[quote.FieldLocation])

	h.pressAndWait(t, tea.KeyPressMsg{Code: 'c', Text: "c"})

	assert.Equal(t, modeForm, h.m.mode)
	assert.True(t, h.app.QuoteOpen())
	assert.Nil(t, h.app.Summary())
	assert.Equal(t, "Denver, CO", h.fieldValue(quote.FieldLocation), "saved draft shown again")
}

func TestChatUISummaryDismiss(t *testing.T) {
	h := newUIHarness(t, widget.WithEmail("jane@example.com"))
	h.openForm(t)
	h.pressAndWait(t, ctrlKey('s'))
	require.Equal(t, modeSummary, h.m.mode)

	h.press(keyOf(tea.KeyEnter))

	assert.Equal(t, modeChat, h.m.mode)
	assert.Nil(t, h.app.Summary())
	assert.Nil(t, h.m.summary)
}
