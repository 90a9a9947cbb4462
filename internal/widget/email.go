package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// User-facing email gate texts.
const (
	EmailMissingMessage = "Please enter an email address"
	EmailSavedMessage   = "Email saved successfully!"
	EmailFailedMessage  = "Email validation failed"
)

// SubmitEmail validates value with the backend. An accepted address is
// recorded, the field is hidden, the input re-enabled and "My email is ..."
// is sent to the assistant. A rejected address returns *RejectedError with
// the backend's reason and leaves the gate closed.
func (a *App) SubmitEmail(ctx context.Context, value string) error {
	email := strings.TrimSpace(value)
	if email == "" {
		return ErrEmailRequired
	}

	res, err := a.backend.ValidateEmail(ctx, email)
	if err != nil {
		a.logger.Error("email validation failed", "error", err)
		return fmt.Errorf("validate email: %w", err)
	}
	if !res.Valid {
		a.logger.Info("email rejected", "reason", res.Message)
		return &RejectedError{Message: res.Message}
	}

	a.mu.Lock()
	a.email.Collected = true
	a.email.Address = email
	var events []Event
	if a.email.FieldVisible {
		a.email.FieldVisible = false
		events = append(events, Event{Kind: EmailFieldHidden})
	}
	if !a.inputEnabled {
		a.inputEnabled = true
		events = append(events, Event{Kind: InputEnabled})
	}
	a.mu.Unlock()
	a.emit(events...)

	a.logger.Info("email collected", "session", a.session)
	a.announce(ctx, "My email is "+email)
	return nil
}

// EmailErrorMessage returns the inline text for a SubmitEmail error.
func EmailErrorMessage(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return EmailSavedMessage
	case errors.Is(err, ErrEmailRequired):
		return EmailMissingMessage
	case errors.As(err, &rejected):
		return rejected.Message
	default:
		return EmailFailedMessage
	}
}
