// Package fakebackend is an in-memory stand-in for the chat backend, used by
// tests to exercise the client, the widget state and the CLI end to end.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// allowedExtensions mirrors the server-side upload check.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "svg": true, "pdf": true,
}

// Reply is what the fake assistant answers to one chat turn.
type Reply struct {
	Text           string
	QuoteForm      bool
	Phone          bool
	EmailRequested *bool
	// Status forces an HTTP status; zero means 200.
	Status int
}

// ChatCall records one /chat request.
type ChatCall struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

// Logo is an uploaded file as the backend records it.
type Logo struct {
	Filename   string `json:"filename"`
	DropboxURL string `json:"dropbox_url"`
	Size       int    `json:"-"`
}

// Backend holds the fake server state. Exported fields may be set before
// requests are made; use the accessor methods once the server is running.
type Backend struct {
	// Responder produces assistant replies; defaults to an echo.
	Responder func(message string) Reply
	// SaveQuoteError makes /save-quote fail with this text.
	SaveQuoteError string
	// FailUploads makes /upload-logo fail for these filenames.
	FailUploads map[string]bool

	mu      sync.Mutex
	chats   []ChatCall
	quotes  map[string]map[string]any
	logos   map[string][]Logo
	phones  map[string]string
	history map[string][]map[string]string
	emails  map[string]string
	uploads int
}

// New returns an empty backend with an echo responder.
func New() *Backend {
	return &Backend{
		Responder: func(message string) Reply {
			return Reply{Text: "You said: " + message}
		},
		FailUploads: map[string]bool{},
		quotes:      map[string]map[string]any{},
		logos:       map[string][]Logo{},
		phones:      map[string]string{},
		history:     map[string][]map[string]string{},
		emails:      map[string]string{},
	}
}

// NewServer starts b behind an httptest server that is closed with tb.
func NewServer(tb testing.TB) (*Backend, *httptest.Server) {
	tb.Helper()
	b := New()
	srv := httptest.NewServer(b.Handler())
	tb.Cleanup(srv.Close)
	return b, srv
}

// Handler returns the routed HTTP handler.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/chat", b.handleChat)
	r.Post("/validate-email", b.handleValidateEmail)
	r.Post("/upload-logo", b.handleUploadLogo)
	r.Get("/session/{sessionID}/logos", b.handleSessionLogos)
	r.Get("/session/{sessionID}/messages", b.handleSessionMessages)
	r.Post("/save-quote", b.handleSaveQuote)
	r.Get("/get-quote/{sessionID}", b.handleGetQuote)
	r.Post("/save-phone", b.handleSavePhone)
	r.Get("/get-phone/{sessionID}", b.handleGetPhone)

	return r
}

// Chats returns a copy of every /chat request received so far.
func (b *Backend) Chats() []ChatCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ChatCall(nil), b.chats...)
}

// Quote returns the stored form_data for a session.
func (b *Backend) Quote(sessionID string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quotes[sessionID]
}

// SetQuote seeds a previously saved draft.
func (b *Backend) SetQuote(sessionID string, formData map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[sessionID] = formData
}

// Logos returns the uploads recorded for a session.
func (b *Backend) Logos(sessionID string) []Logo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Logo(nil), b.logos[sessionID]...)
}

// Uploads returns the number of upload requests received.
func (b *Backend) Uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

// Phone returns the stored number for a session.
func (b *Backend) Phone(sessionID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phones[sessionID]
}

func (b *Backend) handleChat(w http.ResponseWriter, r *http.Request) {
	var in ChatCall
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid JSON"})
		return
	}

	b.mu.Lock()
	b.chats = append(b.chats, in)
	responder := b.Responder
	b.mu.Unlock()

	reply := responder(in.Message)
	if reply.Status != 0 && reply.Status != http.StatusOK {
		writeJSON(w, reply.Status, map[string]any{"message": reply.Text})
		return
	}

	b.mu.Lock()
	if in.Email != "" {
		b.emails[in.SessionID] = in.Email
	}
	b.history[in.SessionID] = append(b.history[in.SessionID],
		map[string]string{"role": "user", "content": in.Message},
		map[string]string{"role": "assistant", "content": reply.Text},
	)
	count := len(b.history[in.SessionID])
	b.mu.Unlock()

	out := map[string]any{
		"message":                reply.Text,
		"session_id":             in.SessionID,
		"message_count":          count,
		"quote_form_triggered":   reply.QuoteForm,
		"phone_number_triggered": reply.Phone,
	}
	if reply.EmailRequested != nil {
		out["email_requested"] = *reply.EmailRequested
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleValidateEmail(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	if in.Email == "" {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "message": "Email is required"})
		return
	}
	valid := emailPattern.MatchString(in.Email)
	msg := "Invalid email format"
	if valid {
		msg = "Valid email format"
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": valid, "message": msg})
}

func (b *Backend) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.uploads++
	b.mu.Unlock()

	file, header, err := r.FormFile("logo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No logo file provided"})
		return
	}
	defer file.Close()

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Session ID required"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !allowedExtensions[ext] {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "File type not allowed"})
		return
	}

	data, _ := io.ReadAll(file)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailUploads[header.Filename] {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to upload to Dropbox: quota"})
		return
	}
	logo := Logo{
		Filename:   header.Filename,
		DropboxURL: fmt.Sprintf("https://dl.example.com/logos/%s/%s?dl=1", sessionID, header.Filename),
		Size:       len(data),
	}
	b.logos[sessionID] = append(b.logos[sessionID], logo)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Logo uploaded successfully: " + header.Filename,
		"dropbox_url": logo.DropboxURL,
		"logo_count":  len(b.logos[sessionID]),
	})
}

func (b *Backend) handleSessionLogos(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	logos := b.Logos(sessionID)
	if logos == nil {
		logos = []Logo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logos": logos})
}

func (b *Backend) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	b.mu.Lock()
	defer b.mu.Unlock()
	msgs, ok := b.history[sessionID]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false, "messages": []any{}, "email": "", "message_count": 0,
			"message": "Session not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"messages":      msgs,
		"email":         b.emails[sessionID],
		"phone_number":  b.phones[sessionID],
		"message_count": len(msgs),
	})
}

func (b *Backend) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID string         `json:"session_id"`
		Email     string         `json:"email"`
		FormData  map[string]any `json:"form_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	if in.SessionID == "" || in.Email == "" || in.FormData == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Session ID, email, and form data are required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveQuoteError != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": b.SaveQuoteError})
		return
	}
	action := "created"
	if _, ok := b.quotes[in.SessionID]; ok {
		action = "updated"
	}
	b.quotes[in.SessionID] = in.FormData
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Quote data " + action + " successfully",
		"quote_id": "quote-" + in.SessionID,
	})
}

func (b *Backend) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	formData := b.Quote(sessionID)
	if formData == nil {
		formData = map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "form_data": formData})
}

func (b *Backend) handleSavePhone(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID   string `json:"session_id"`
		PhoneNumber string `json:"phone_number"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.SessionID == "" || in.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Session ID and phone number are required"})
		return
	}

	b.mu.Lock()
	b.phones[in.SessionID] = in.PhoneNumber
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Phone number saved successfully"})
}

func (b *Backend) handleGetPhone(w http.ResponseWriter, r *http.Request) {
	phone := b.Phone(chi.URLParam(r, "sessionID"))
	if phone == "" {
		writeJSON(w, http.StatusOK, map[string]any{"phone_number": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"phone_number": phone})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
