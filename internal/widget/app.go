// Package widget holds the application state of a chat session: the
// transcript, the email gate, the in-flight flag, attached logos and the quote
// form. Front ends drive it through methods and observe it through events.
package widget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/raphaelgruber/signchat/internal/client"
	"github.com/raphaelgruber/signchat/internal/logo"
	"github.com/raphaelgruber/signchat/internal/quote"
	"github.com/raphaelgruber/signchat/internal/session"
)

// Backend is the set of backend calls the app makes. *client.Client
// implements it.
type Backend interface {
	Chat(ctx context.Context, in client.ChatRequest) (*client.ChatResponse, error)
	ValidateEmail(ctx context.Context, email string) (*client.EmailValidation, error)
	UploadLogo(ctx context.Context, sessionID, filename string, r io.Reader) (*client.UploadResult, error)
	SessionLogos(ctx context.Context, sessionID string) ([]client.RemoteLogo, error)
	SaveQuote(ctx context.Context, in client.SaveQuoteRequest) (*client.SaveQuoteResult, error)
	GetQuote(ctx context.Context, sessionID string) (map[string]any, error)
	SavePhone(ctx context.Context, sessionID, phone string) error
	GetPhone(ctx context.Context, sessionID string) (string, error)
	SessionMessages(ctx context.Context, sessionID string) (*client.SessionHistory, error)
}

// Errors returned by App operations. Use errors.Is to check.
var (
	ErrEmptyMessage      = errors.New("message is empty")
	ErrBusy              = errors.New("a message is already in flight")
	ErrInputDisabled     = errors.New("input is disabled until an email is provided")
	ErrEmailRequired     = errors.New("email address is empty")
	ErrEmailNotCollected = errors.New("email address not collected")
	ErrPhoneRequired     = errors.New("phone number is empty")
	ErrUnknownAction     = errors.New("unknown quick action")
)

// RejectedError carries a business error reported by the backend, such as an
// invalid email or a failed quote save. Message is shown verbatim.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Sender Sender
	Text   string
	Time   time.Time
}

// EmailState tracks the email gate.
type EmailState struct {
	Collected    bool
	Address      string
	FieldVisible bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithSession resumes an existing session instead of generating a new one.
func WithSession(id session.ID) Option {
	return func(a *App) { a.session = id }
}

// WithEmailFirst shows the email field before the first message, keeping the
// conversation input disabled until an address is validated.
func WithEmailFirst(on bool) Option {
	return func(a *App) { a.emailFirst = on }
}

// WithEmail starts the app with an address that was validated earlier, such
// as one remembered from a previous run.
func WithEmail(address string) Option {
	return func(a *App) { a.presetEmail = address }
}

// WithKeywordFallback enables the legacy rule of showing the email field when
// a reply mentions "email" and the backend sends no email_requested flag.
func WithKeywordFallback(on bool) Option {
	return func(a *App) { a.keywordFallback = on }
}

// WithQuoteFormDelay waits before opening a triggered quote form so the reply
// can be read first.
func WithQuoteFormDelay(d time.Duration) Option {
	return func(a *App) { a.quoteDelay = d }
}

// App is the state of one chat session.
type App struct {
	backend         Backend
	logger          *slog.Logger
	session         session.ID
	emailFirst      bool
	presetEmail     string
	keywordFallback bool
	quoteDelay      time.Duration

	form     *quote.Form
	logos    *logo.List
	uploader *logo.Uploader

	mu           sync.Mutex
	transcript   []Message
	typing       bool
	busy         bool
	email        EmailState
	inputEnabled bool
	quoteOpen    bool
	summary      *quote.Summary
	phone        string

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates an app bound to backend with a fresh session.
func New(backend Backend, opts ...Option) *App {
	a := &App{
		backend:         backend,
		logger:          slog.Default(),
		keywordFallback: true,
		form:            quote.NewForm(),
		logos:           logo.NewList(),
		inputEnabled:    true,
		subs:            make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.session == "" {
		a.session = session.New()
	}
	switch {
	case a.presetEmail != "":
		a.email = EmailState{Collected: true, Address: a.presetEmail}
	case a.emailFirst:
		a.email.FieldVisible = true
		a.inputEnabled = false
	}

	a.uploader = logo.NewUploader(backend, a.logos, a.session.String(), a.logger)
	a.uploader.Notify = func(item logo.Item) {
		a.emit(Event{Kind: LogoChanged, Logo: &item})
	}
	return a
}

// Session returns the session token.
func (a *App) Session() session.ID {
	return a.session
}

// Transcript returns a copy of the messages in arrival order.
func (a *App) Transcript() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.transcript)
}

// Typing reports whether the assistant typing placeholder is shown.
func (a *App) Typing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.typing
}

// Email returns the email gate state.
func (a *App) Email() EmailState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email
}

// InputEnabled reports whether the conversation input and quick actions
// accept input.
func (a *App) InputEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inputEnabled
}

// Busy reports whether a chat request is in flight.
func (a *App) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// QuoteOpen reports whether the quote form is shown.
func (a *App) QuoteOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quoteOpen
}

// Summary returns the confirmation of the last submitted quote, or nil once
// it has been dismissed.
func (a *App) Summary() *quote.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// DismissSummary hides the quote confirmation.
func (a *App) DismissSummary() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary = nil
}

// Phone returns the phone number saved for this session, if any.
func (a *App) Phone() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phone
}

// Form returns the quote form.
func (a *App) Form() *quote.Form {
	return a.form
}

// Logos returns the attached logo list.
func (a *App) Logos() *logo.List {
	return a.logos
}

// appendLocked adds a message and clears the typing placeholder.
// Caller must hold a.mu.
func (a *App) appendLocked(sender Sender, text string) []Event {
	msg := Message{Sender: sender, Text: text, Time: time.Now()}
	a.transcript = append(a.transcript, msg)

	events := []Event{{Kind: MessageAppended, Message: &msg}}
	if a.typing {
		a.typing = false
		events = append(events, Event{Kind: TypingChanged})
	}
	return events
}

// addMessage appends a message outside any exchange.
func (a *App) addMessage(sender Sender, text string) {
	a.mu.Lock()
	events := a.appendLocked(sender, text)
	a.mu.Unlock()
	a.emit(events...)
}
