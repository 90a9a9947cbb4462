package widget

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphaelgruber/signchat/internal/client"
	"github.com/raphaelgruber/signchat/internal/quote"
)

// Quote flow texts.
const (
	QuoteSubmittedMessage = "I have submitted my quote request with all the details."
	EmailFirstMessage     = "Please provide your email address first."
	QuoteFailedMessage    = "Error submitting quote. Please try again."
)

// OpenQuoteForm shows the form and pre-fills it from the draft saved for the
// session. Units are restored from the draft or reset to the default. The
// form stays open when the draft cannot be loaded.
func (a *App) OpenQuoteForm(ctx context.Context) error {
	a.mu.Lock()
	a.quoteOpen = true
	a.mu.Unlock()
	a.emit(Event{Kind: QuoteFormOpened})

	data, err := a.backend.GetQuote(ctx, a.session.String())
	if err != nil {
		a.form.Restore(nil)
		return fmt.Errorf("load quote draft: %w", err)
	}

	filled := a.form.Restore(data)
	a.logger.Debug("quote draft loaded", "session", a.session, "filled", filled, "keys", len(data))
	a.emit(Event{Kind: QuoteDraftLoaded, Filled: filled})
	return nil
}

// CloseQuoteForm hides the form, clears its values and the attached logos.
// Unit selections are kept for the next time the form opens.
func (a *App) CloseQuoteForm() {
	a.mu.Lock()
	wasOpen := a.quoteOpen
	a.quoteOpen = false
	a.mu.Unlock()

	a.form.Clear()
	a.logos.Clear()
	a.emit(Event{Kind: LogoChanged})
	if wasOpen {
		a.emit(Event{Kind: QuoteFormClosed})
	}
}

// SubmitQuote validates the form, saves the draft with the session and email
// and, on success, closes the form, records the summary and tells the
// assistant. Validation errors are the quote package sentinels; a save the
// backend refuses returns *RejectedError with its text. The form stays open on
// any error.
func (a *App) SubmitQuote(ctx context.Context) (*quote.Summary, error) {
	email := a.Email()
	if !email.Collected || email.Address == "" {
		return nil, ErrEmailNotCollected
	}

	draft, err := a.form.Draft(a.logos.Uploaded())
	if err != nil {
		return nil, err
	}

	_, err = a.backend.SaveQuote(ctx, client.SaveQuoteRequest{
		SessionID: a.session.String(),
		Email:     email.Address,
		FormData:  draft,
	})
	if err != nil {
		a.logger.Error("save quote failed", "session", a.session, "error", err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return nil, &RejectedError{Message: apiErr.Message}
		}
		return nil, fmt.Errorf("save quote: %w", err)
	}

	summary := quote.Summarize(draft)
	a.CloseQuoteForm()

	a.mu.Lock()
	a.summary = &summary
	a.mu.Unlock()
	a.emit(Event{Kind: QuoteSubmitted, Summary: &summary})

	a.logger.Info("quote submitted", "session", a.session, "logos", len(draft.Logos))
	a.announce(ctx, QuoteSubmittedMessage)
	return &summary, nil
}

// ResetQuote clears every field, the units and the attached logos without
// contacting the backend.
func (a *App) ResetQuote() {
	a.form.Reset()
	a.logos.Clear()
	a.emit(Event{Kind: LogoChanged})
}

// RequestChanges dismisses the summary and reopens the form.
func (a *App) RequestChanges(ctx context.Context) error {
	a.DismissSummary()
	return a.OpenQuoteForm(ctx)
}

// QuoteErrorMessage returns the text shown for a SubmitQuote error.
func QuoteErrorMessage(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmailNotCollected):
		return EmailFirstMessage
	case errors.Is(err, quote.ErrDimensionsIncomplete), errors.Is(err, quote.ErrInvalidDimensions):
		return quote.UserMessage(err)
	case errors.As(err, &rejected):
		return "Error saving quote: " + rejected.Message
	default:
		return QuoteFailedMessage
	}
}
