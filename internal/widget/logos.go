package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/signchat/internal/logo"
)

// Assistant texts for the session logo listing.
const (
	NoLogosMessage        = "You haven't uploaded any logos yet."
	LogosUnavailableError = "Sorry, I couldn't retrieve your uploaded logos."
)

// AttachLogos validates and uploads files. Each accepted file uploads on its
// own; results keep the order of paths.
func (a *App) AttachLogos(ctx context.Context, paths []string) []logo.Result {
	return a.uploader.UploadFiles(ctx, paths)
}

// RemoveLogo drops an attached file from the local list. The backend keeps
// its copy.
func (a *App) RemoveLogo(id string) bool {
	removed, ok := a.logos.Remove(id)
	if !ok {
		return false
	}
	a.emit(Event{Kind: LogoRemoved, Logo: &removed})
	return true
}

// ListSessionLogos asks the backend which logos it holds for the session and
// appends the answer to the transcript as an assistant message.
func (a *App) ListSessionLogos(ctx context.Context) (string, error) {
	logos, err := a.backend.SessionLogos(ctx, a.session.String())
	if err != nil {
		a.logger.Error("list logos failed", "session", a.session, "error", err)
		a.addMessage(SenderAssistant, LogosUnavailableError)
		return "", fmt.Errorf("list logos: %w", err)
	}

	text := NoLogosMessage
	if len(logos) > 0 {
		lines := make([]string, len(logos))
		for i, l := range logos {
			lines[i] = fmt.Sprintf("• %s (%s)", l.Filename, l.URL())
		}
		text = "Here are the logos you've uploaded:\n" + strings.Join(lines, "\n")
	}
	a.addMessage(SenderAssistant, text)
	return text, nil
}
