package widget

import (
	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/quote"
)

// EventKind identifies a state change.
type EventKind int

const (
	MessageAppended EventKind = iota + 1
	TranscriptReplaced
	TypingChanged
	EmailFieldShown
	EmailFieldHidden
	InputEnabled
	InputDisabled
	QuoteFormOpened
	QuoteDraftLoaded
	QuoteFormClosed
	QuoteSubmitted
	LogoChanged
	LogoRemoved
	PhoneRequested
)

var eventNames = map[EventKind]string{
	MessageAppended:    "message_appended",
	TranscriptReplaced: "transcript_replaced",
	TypingChanged:      "typing_changed",
	EmailFieldShown:    "email_field_shown",
	EmailFieldHidden:   "email_field_hidden",
	InputEnabled:       "input_enabled",
	InputDisabled:      "input_disabled",
	QuoteFormOpened:    "quote_form_opened",
	QuoteDraftLoaded:   "quote_draft_loaded",
	QuoteFormClosed:    "quote_form_closed",
	QuoteSubmitted:     "quote_submitted",
	LogoChanged:        "logo_changed",
	LogoRemoved:        "logo_removed",
	PhoneRequested:     "phone_requested",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event describes one state change. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Message *Message       // MessageAppended
	Typing  bool           // TypingChanged
	Logo    *logo.Item     // LogoChanged, LogoRemoved; nil when the list was cleared
	Summary *quote.Summary // QuoteSubmitted
	Filled  int            // QuoteDraftLoaded
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. Events are delivered synchronously on the goroutine that
// caused them, never while the app holds its lock; upload events may arrive
// from several goroutines at once.
func (a *App) Subscribe(fn func(Event)) (unsubscribe func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		delete(a.subs, id)
	}
}

func (a *App) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	a.subMu.Lock()
	subs := make([]func(Event), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
