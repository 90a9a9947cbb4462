package logo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/signchat/internal/client"
	"github.com/raphaelgruber/signchat/internal/session"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API client the uploader needs.
type Backend interface {
	UploadLogo(ctx context.Context, sessionID, filename string, r io.Reader) (*client.UploadResult, error)
}

// Result reports what happened to one requested path.
type Result struct {
	Path string
	Item Item
	Err  error
}

// Uploader validates local files and uploads the accepted ones.
type Uploader struct {
	backend   Backend
	list      *List
	sessionID string
	logger    *slog.Logger

	// Notify, if set, is called whenever an item is added or changes state.
	// It may be called from several goroutines at once.
	Notify func(Item)
}

// NewUploader creates an uploader that records into list.
func NewUploader(backend Backend, list *List, sessionID string, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{
		backend:   backend,
		list:      list,
		sessionID: sessionID,
		logger:    logger,
	}
}

// UploadFiles validates every path and uploads the accepted files
// concurrently. Each upload is independent: a failure is recorded on its own
// item and never cancels the others. Results keep the order of paths.
func (u *Uploader) UploadFiles(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		results[i].Path = path

		f, item, err := u.open(path)
		if err != nil {
			u.logger.Warn("logo rejected", "path", path, "error", err)
			results[i].Err = err
			continue
		}

		u.list.Add(item)
		u.notify(item)

		g.Go(func() error {
			defer f.Close()
			results[i] = u.upload(ctx, path, f, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// UploadFile validates and uploads a single file.
func (u *Uploader) UploadFile(ctx context.Context, path string) Result {
	return u.UploadFiles(ctx, []string{path})[0]
}

// open validates a local file and prepares its list entry.
func (u *Uploader) open(path string) (*os.File, Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Item{}, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Item{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, Item{}, fmt.Errorf("%s: %w", path, ErrUnsupportedType)
	}

	name := filepath.Base(path)
	mimeType, err := sniff(f, name)
	if err != nil {
		f.Close()
		return nil, Item{}, err
	}

	if err := Validate(name, mimeType, info.Size()); err != nil {
		f.Close()
		return nil, Item{}, err
	}

	return f, Item{
		ID:       session.NewLogoID(),
		Filename: name,
		Size:     info.Size(),
		MIMEType: mimeType,
		Status:   StatusUploading,
	}, nil
}

func (u *Uploader) upload(ctx context.Context, path string, f io.Reader, item Item) Result {
	res, err := u.backend.UploadLogo(ctx, u.sessionID, item.Filename, f)
	if err != nil {
		u.logger.Error("logo upload failed", "file", item.Filename, "error", err)
		updated, _ := u.list.MarkError(item.ID, err)
		u.notify(updated)
		return Result{Path: path, Item: updated, Err: err}
	}

	u.logger.Info("logo uploaded", "file", item.Filename, "url", res.URL, "logo_count", res.LogoCount)
	updated, _ := u.list.MarkSuccess(item.ID, res.URL)
	u.notify(updated)
	return Result{Path: path, Item: updated}
}

func (u *Uploader) notify(item Item) {
	if u.Notify != nil {
		u.Notify(item)
	}
}

// sniff determines the content type from the extension, falling back to the
// first bytes of the file. The file offset is restored.
func sniff(f *os.File, name string) (string, error) {
	if t := MIMEFromName(name); t != "" {
		return t, nil
	}

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s: %w", name, err)
	}
	return baseMIME(http.DetectContentType(head[:n])), nil
}
