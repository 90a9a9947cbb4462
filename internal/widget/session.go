package widget

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Resume reloads the transcript, email and phone number the backend holds for
// the session. It reports false when the backend knows nothing about it.
func (a *App) Resume(ctx context.Context) (bool, error) {
	hist, err := a.backend.SessionMessages(ctx, a.session.String())
	if err != nil {
		return false, fmt.Errorf("resume session: %w", err)
	}
	if !hist.Found {
		return false, nil
	}

	now := time.Now()
	transcript := make([]Message, 0, len(hist.Messages))
	for _, m := range hist.Messages {
		sender := SenderAssistant
		if m.Role == string(SenderUser) {
			sender = SenderUser
		}
		transcript = append(transcript, Message{Sender: sender, Text: m.Content, Time: now})
	}

	a.mu.Lock()
	a.transcript = transcript
	a.typing = false
	events := []Event{{Kind: TranscriptReplaced}}
	if hist.Email != "" {
		if a.email.FieldVisible {
			events = append(events, Event{Kind: EmailFieldHidden})
		}
		a.email = EmailState{Collected: true, Address: hist.Email}
		if !a.inputEnabled {
			a.inputEnabled = true
			events = append(events, Event{Kind: InputEnabled})
		}
	}
	if hist.PhoneNumber != "" {
		a.phone = hist.PhoneNumber
	}
	a.mu.Unlock()
	a.emit(events...)

	a.logger.Info("session resumed", "session", a.session, "messages", len(transcript))
	return true, nil
}

// SavePhone stores a callback number for the session.
func (a *App) SavePhone(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return ErrPhoneRequired
	}
	if err := a.backend.SavePhone(ctx, a.session.String(), number); err != nil {
		return fmt.Errorf("save phone: %w", err)
	}

	a.mu.Lock()
	a.phone = number
	a.mu.Unlock()
	return nil
}

// LoadPhone fetches the phone number stored for the session.
func (a *App) LoadPhone(ctx context.Context) (string, error) {
	number, err := a.backend.GetPhone(ctx, a.session.String())
	if err != nil {
		return "", fmt.Errorf("load phone: %w", err)
	}

	a.mu.Lock()
	a.phone = number
	a.mu.Unlock()
	return number, nil
}
