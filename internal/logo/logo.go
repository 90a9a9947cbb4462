// Package logo validates, tracks and uploads the logo files a customer
// attaches to a quote request.
package logo

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// MaxSize is the largest file accepted for upload (10 MiB).
const MaxSize = 10 << 20

// AcceptedMIMETypes lists content types accepted regardless of extension.
var AcceptedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"application/pdf",
	"application/postscript",
}

// AcceptedExtensions lists file extensions accepted regardless of content type.
var AcceptedExtensions = []string{".jpg", ".jpeg", ".png", ".pdf", ".ai", ".eps"}

// Validation errors. Use errors.Is to check.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds 10MB")
)

// Validate checks a candidate file. A file passes if either its content type
// or its extension is accepted, and its size is within MaxSize.
func Validate(name, mimeType string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(AcceptedMIMETypes, baseMIME(mimeType)) && !slices.Contains(AcceptedExtensions, ext) {
		return fmt.Errorf("%s: %w", name, ErrUnsupportedType)
	}
	if size > MaxSize {
		return fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	return nil
}

// InvalidFileMessage is the user-facing explanation for a rejected file.
func InvalidFileMessage(name string) string {
	return fmt.Sprintf("Invalid file: %s. Please upload JPG, PNG, PDF, AI, or EPS files under 10MB.", name)
}

// MIMEFromName guesses a content type from the file extension.
func MIMEFromName(name string) string {
	return baseMIME(mime.TypeByExtension(strings.ToLower(filepath.Ext(name))))
}

func baseMIME(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(strings.ToLower(t))
}

// Status is the upload state of an attached file.
type Status string

// Upload states.
const (
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Item is one attached file as shown to the user.
type Item struct {
	ID       string
	Filename string
	Size     int64
	MIMEType string
	Status   Status
	URL      string
	Err      string
}

// IsImage reports whether the item can be previewed as a picture.
func (i Item) IsImage() bool {
	return strings.HasPrefix(i.MIMEType, "image/")
}

// Uploaded is an accepted upload as embedded in the quote payload.
type Uploaded struct {
	ID       string `json:"id" yaml:"id"`
	Filename string `json:"filename" yaml:"filename"`
	URL      string `json:"dropbox_url" yaml:"dropbox_url"`
}

// List tracks attached files and the subset the backend accepted.
// All methods are safe for concurrent use.
type List struct {
	mu       sync.Mutex
	items    []Item
	accepted []Uploaded
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Add appends an item, normally in the uploading state.
func (l *List) Add(item Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
}

// MarkSuccess records a completed upload. The accepted list keeps completion
// order, which is the order uploads finish rather than the order they began.
func (l *List) MarkSuccess(id, url string) (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return Item{}, false
	}
	l.items[i].Status = StatusSuccess
	l.items[i].URL = url
	l.items[i].Err = ""
	l.accepted = append(l.accepted, Uploaded{ID: id, Filename: l.items[i].Filename, URL: url})
	return l.items[i], true
}

// MarkError records a failed upload.
func (l *List) MarkError(id string, err error) (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return Item{}, false
	}
	l.items[i].Status = StatusError
	if err != nil {
		l.items[i].Err = err.Error()
	}
	return l.items[i], true
}

// Remove drops an item locally and returns it as it was at removal. The
// backend is not informed.
func (l *List) Remove(id string) (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return Item{}, false
	}
	removed := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	l.accepted = slices.DeleteFunc(l.accepted, func(u Uploaded) bool { return u.ID == id })
	return removed, true
}

// Items returns a copy of every attached item in attach order.
func (l *List) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Uploaded returns a copy of the accepted uploads. Never nil.
func (l *List) Uploaded() []Uploaded {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Uploaded, len(l.accepted))
	copy(out, l.accepted)
	return out
}

// Count returns the number of accepted uploads.
func (l *List) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.accepted)
}

// Clear forgets every item.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.accepted = nil
}

// index returns the position of id in items. Caller must hold the lock.
func (l *List) index(id string) int {
	return slices.IndexFunc(l.items, func(it Item) bool { return it.ID == id })
}
