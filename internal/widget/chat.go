package widget

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/raphaelgruber/signchat/internal/client"
)

// FailureMessage is appended to the transcript when a chat turn fails.
const FailureMessage = "Sorry, I encountered an error. Please try again."

// Reply summarizes what one chat turn changed.
type Reply struct {
	Text            string
	MessageCount    int
	EmailRequested  bool
	PhoneRequested  bool
	QuoteFormOpened bool
}

// SendMessage appends text as a user message and forwards it to the backend.
// Empty text, a turn already in flight or a disabled input leave the
// transcript untouched. A failed turn appends FailureMessage and returns the
// underlying error; it is never retried.
func (a *App) SendMessage(ctx context.Context, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := a.begin(text, true); err != nil {
		return nil, err
	}
	return a.exchange(ctx, text)
}

// announce sends a message on the user's behalf, bypassing the input gate.
// Failures are already reflected in the transcript and only logged here.
func (a *App) announce(ctx context.Context, text string) {
	if err := a.begin(text, false); err != nil {
		a.logger.Warn("announcement skipped", "text", text, "error", err)
		return
	}
	if _, err := a.exchange(ctx, text); err != nil {
		a.logger.Debug("announcement failed", "text", text, "error", err)
	}
}

// begin claims the in-flight flag and appends the user message.
func (a *App) begin(text string, gated bool) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrBusy
	}
	if gated && !a.inputEnabled {
		a.mu.Unlock()
		return ErrInputDisabled
	}
	a.busy = true
	events := a.appendLocked(SenderUser, text)
	a.typing = true
	events = append(events, Event{Kind: TypingChanged, Typing: true})
	a.mu.Unlock()

	a.emit(events...)
	return nil
}

// exchange performs the request for a turn started with begin.
func (a *App) exchange(ctx context.Context, text string) (*Reply, error) {
	a.mu.Lock()
	email := a.email.Address
	a.mu.Unlock()

	start := time.Now()
	resp, err := a.backend.Chat(ctx, client.ChatRequest{
		Message:   text,
		SessionID: a.session.String(),
		Email:     email,
	})
	if err != nil {
		a.logger.Error("chat failed", "session", a.session, "error", err)
		a.mu.Lock()
		a.busy = false
		events := a.appendLocked(SenderAssistant, FailureMessage)
		a.mu.Unlock()
		a.emit(events...)
		return nil, fmt.Errorf("send message: %w", err)
	}

	a.logger.Debug("chat reply", "session", a.session, "duration_ms", time.Since(start).Milliseconds(),
		"quote_form", resp.QuoteFormTriggered, "message_count", resp.MessageCount)

	reply := &Reply{
		Text:           resp.Message,
		MessageCount:   resp.MessageCount,
		PhoneRequested: resp.PhoneNumberTriggered,
	}

	a.mu.Lock()
	a.busy = false
	events := a.appendLocked(SenderAssistant, resp.Message)

	if a.emailRequested(resp) && !a.email.Collected {
		reply.EmailRequested = true
		events = append(events, a.showEmailFieldLocked()...)
	}
	openQuote := resp.QuoteFormTriggered && a.email.Collected
	a.mu.Unlock()

	if reply.PhoneRequested {
		events = append(events, Event{Kind: PhoneRequested})
	}
	a.emit(events...)

	if openQuote {
		if err := a.waitQuoteDelay(ctx); err != nil {
			return reply, nil
		}
		reply.QuoteFormOpened = true
		if err := a.OpenQuoteForm(ctx); err != nil {
			a.logger.Warn("quote draft not loaded", "session", a.session, "error", err)
		}
	}
	return reply, nil
}

// emailRequested prefers the structured flag and only falls back to looking
// for "email" in the reply text when the backend omits it.
func (a *App) emailRequested(resp *client.ChatResponse) bool {
	if resp.EmailRequested != nil {
		return *resp.EmailRequested
	}
	return a.keywordFallback && strings.Contains(strings.ToLower(resp.Message), "email")
}

// showEmailFieldLocked reveals the email field and disables the input.
// Caller must hold a.mu.
func (a *App) showEmailFieldLocked() []Event {
	var events []Event
	if !a.email.FieldVisible {
		a.email.FieldVisible = true
		events = append(events, Event{Kind: EmailFieldShown})
	}
	if a.inputEnabled {
		a.inputEnabled = false
		events = append(events, Event{Kind: InputDisabled})
	}
	return events
}

func (a *App) waitQuoteDelay(ctx context.Context) error {
	if a.quoteDelay <= 0 {
		return nil
	}
	t := time.NewTimer(a.quoteDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QuickAction identifies a canned conversation starter.
type QuickAction string

const (
	ActionStartDesign   QuickAction = "start-design"
	ActionGetQuote      QuickAction = "get-quote"
	ActionViewPortfolio QuickAction = "view-portfolio"
)

var quickActionMessages = map[QuickAction]string{
	ActionStartDesign:   "I'd like to start designing a custom sign. Can you help me with the process?",
	ActionGetQuote:      "I want a mockup and quote for a custom sign.",
	ActionViewPortfolio: "Can you show me some examples of your previous work or portfolio?",
}

// Message returns the sentence sent for the action.
func (q QuickAction) Message() (string, bool) {
	msg, ok := quickActionMessages[q]
	return msg, ok
}

// QuickAction sends the canned sentence for action. It is gated like typed
// input.
func (a *App) QuickAction(ctx context.Context, action QuickAction) (*Reply, error) {
	msg, ok := action.Message()
	if !ok {
		return nil, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	return a.SendMessage(ctx, msg)
}

// maxQuickActionWords bounds how long a typed line may be and still count as
// a quick action rather than a real question.
const maxQuickActionWords = 6

// MatchQuickAction maps a short typed intent such as "I want a quote" to a
// quick action. Longer sentences are left to the assistant.
func MatchQuickAction(text string) (QuickAction, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	if len(words) == 0 || len(words) > maxQuickActionWords {
		return "", false
	}

	has := func(keys ...string) bool {
		return slices.ContainsFunc(words, func(w string) bool { return slices.Contains(keys, w) })
	}

	switch {
	case has("quote", "quotes", "mockup", "mockups", "estimate", "price", "pricing"):
		return ActionGetQuote, true
	case has("portfolio", "examples", "gallery"):
		return ActionViewPortfolio, true
	case has("design", "designing", "start"):
		return ActionStartDesign, true
	}
	return "", false
}
