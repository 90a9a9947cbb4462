// Package client provides an HTTP client for the sign-shop chat backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/signchat/internal/metrics"
)

// DefaultServerURL is used when neither the caller nor SIGNCHAT_SERVER_URL
// provide a backend address.
const DefaultServerURL = "http://localhost:5000"

// Client is an HTTP client for the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request timings into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped with request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new backend client.
// If baseURL is empty, uses SIGNCHAT_SERVER_URL env var or defaults to localhost:5000.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("SIGNCHAT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = DefaultServerURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &loggingTransport{next: next, logger: c.logger}
	c.httpClient = &wrapped

	return c
}

// BaseURL returns the backend address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is returned when the backend answers with a non-2xx status or
// reports a failure in its payload. Message carries the backend's own text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server error: %d - %s", e.StatusCode, e.Message)
}

// errorBody captures the two shapes the backend uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Message != "":
			msg = eb.Message
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}

// IsAPIError reports whether err carries a backend-reported failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// do sends req and decodes a JSON body into result, recording timing under
// endpoint.
func (c *Client) do(req *http.Request, endpoint string, result any) error {
	start := time.Now()
	failed := true
	defer func() {
		if c.metrics != nil {
			c.metrics.Record(endpoint, time.Since(start), failed)
		}
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	if pc, ok := result.(payloadChecker); ok {
		if err := pc.payloadError(); err != nil {
			return err
		}
	}

	failed = false
	return nil
}

// payloadChecker is implemented by responses that can report a failure in a
// 200 body.
type payloadChecker interface {
	payloadError() error
}

// postJSON marshals payload and POSTs it to path.
func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload, result any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, result)
}

// getJSON GETs path and decodes the response.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, endpoint, result)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// ChatRequest is the payload for /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

// ChatResponse is the backend reply to a chat turn.
type ChatResponse struct {
	Message              string `json:"message"`
	SessionID            string `json:"session_id,omitempty"`
	MessageCount         int    `json:"message_count,omitempty"`
	QuoteFormTriggered   bool   `json:"quote_form_triggered"`
	PhoneNumberTriggered bool   `json:"phone_number_triggered,omitempty"`
	// EmailRequested is the structured "collect an email" signal. Nil when
	// the backend does not send it.
	EmailRequested *bool `json:"email_requested,omitempty"`
}

// Chat sends one user turn and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.postJSON(ctx, metrics.EndpointChat, "/chat", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoryMessage is one stored turn as returned by the session history endpoint.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionHistory is the persisted state of a session on the backend.
type SessionHistory struct {
	Found        bool             `json:"success"`
	Messages     []HistoryMessage `json:"messages"`
	Email        string           `json:"email"`
	PhoneNumber  string           `json:"phone_number"`
	MessageCount int              `json:"message_count"`
}

// SessionMessages returns the transcript the backend holds for sessionID.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) (*SessionHistory, error) {
	var out SessionHistory
	path := "/session/" + url.PathEscape(sessionID) + "/messages"
	if err := c.getJSON(ctx, metrics.EndpointSessionMessages, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// CONTACT DETAILS
// =============================================================================

// EmailValidation is the result of /validate-email.
type EmailValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ValidateEmail asks the backend whether email is acceptable.
func (c *Client) ValidateEmail(ctx context.Context, email string) (*EmailValidation, error) {
	var out EmailValidation
	if err := c.postJSON(ctx, metrics.EndpointValidateEmail, "/validate-email", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavePhone stores a callback number for the session.
func (c *Client) SavePhone(ctx context.Context, sessionID, phone string) error {
	payload := map[string]string{"session_id": sessionID, "phone_number": phone}
	var out savePhoneResponse
	return c.postJSON(ctx, metrics.EndpointSavePhone, "/save-phone", payload, &out)
}

type savePhoneResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (r *savePhoneResponse) payloadError() error {
	if r.Success {
		return nil
	}
	return &APIError{StatusCode: http.StatusOK, Message: r.Error}
}

// GetPhone returns the stored callback number, or "" when none is saved.
func (c *Client) GetPhone(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		PhoneNumber *string `json:"phone_number"`
	}
	if err := c.getJSON(ctx, metrics.EndpointGetPhone, "/get-phone/"+url.PathEscape(sessionID), &out); err != nil {
		return "", err
	}
	if out.PhoneNumber == nil {
		return "", nil
	}
	return *out.PhoneNumber, nil
}

// =============================================================================
// LOGO UPLOADS
// =============================================================================

// UploadResult is the outcome of a successful /upload-logo call.
type UploadResult struct {
	URL       string
	Message   string
	LogoCount int
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DropboxURL string `json:"dropbox_url"`
	PublicURL  string `json:"public_url"`
	LogoCount  int    `json:"logo_count"`
}

func (r *uploadResponse) payloadError() error {
	if r.Success {
		return nil
	}
	return &APIError{StatusCode: http.StatusOK, Message: r.Message}
}

// UploadLogo sends one file as multipart form data (fields "logo" and
// "session_id"). The whole file is buffered in memory.
func (c *Client) UploadLogo(ctx context.Context, sessionID, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("logo", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("write session field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-logo", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.do(req, metrics.EndpointUploadLogo, &out); err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:       firstNonEmpty(out.DropboxURL, out.PublicURL),
		Message:   out.Message,
		LogoCount: out.LogoCount,
	}, nil
}

// RemoteLogo is a logo the backend has recorded for a session.
type RemoteLogo struct {
	Filename   string `json:"filename"`
	DropboxURL string `json:"dropbox_url,omitempty"`
	PublicURL  string `json:"public_url,omitempty"`
	UploadTime string `json:"upload_time,omitempty"`
}

// URL returns whichever hosted link the backend provided.
func (l RemoteLogo) URL() string {
	return firstNonEmpty(l.DropboxURL, l.PublicURL)
}

// SessionLogos lists logos the backend holds for sessionID.
func (c *Client) SessionLogos(ctx context.Context, sessionID string) ([]RemoteLogo, error) {
	var out struct {
		Logos []RemoteLogo `json:"logos"`
	}
	path := "/session/" + url.PathEscape(sessionID) + "/logos"
	if err := c.getJSON(ctx, metrics.EndpointSessionLogos, path, &out); err != nil {
		return nil, err
	}
	return out.Logos, nil
}

// =============================================================================
// QUOTE DRAFTS
// =============================================================================

// SaveQuoteRequest is the payload for /save-quote. FormData is marshalled
// verbatim, so any json.Marshaler (such as quote.Draft) works.
type SaveQuoteRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	FormData  any    `json:"form_data"`
}

// SaveQuoteResult is the backend acknowledgement of a saved draft.
type SaveQuoteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	QuoteID string `json:"quote_id"`
	Error   string `json:"error"`
}

func (r *SaveQuoteResult) payloadError() error {
	if r.Success {
		return nil
	}
	return &APIError{StatusCode: http.StatusOK, Message: r.Error}
}

// SaveQuote persists the quote draft for a session.
func (c *Client) SaveQuote(ctx context.Context, in SaveQuoteRequest) (*SaveQuoteResult, error) {
	var out SaveQuoteResult
	if err := c.postJSON(ctx, metrics.EndpointSaveQuote, "/save-quote", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQuote returns the saved form_data for sessionID. The map is empty, not
// nil, when no draft exists.
func (c *Client) GetQuote(ctx context.Context, sessionID string) (map[string]any, error) {
	var out struct {
		FormData map[string]any `json:"form_data"`
	}
	if err := c.getJSON(ctx, metrics.EndpointGetQuote, "/get-quote/"+url.PathEscape(sessionID), &out); err != nil {
		return nil, err
	}
	if out.FormData == nil {
		out.FormData = map[string]any{}
	}
	return out.FormData, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
