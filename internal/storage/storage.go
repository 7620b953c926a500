// Package storage keeps uploaded files and hands out their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/khushboocodes/QuickDesk/internal/config"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("upload is empty")
	// ErrTypeNotAllowed is returned when the detected content type is refused.
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

// sniffLen is how many leading bytes mimetype needs for detection.
const sniffLen = 3072

// Uploaded describes a stored file.
type Uploaded struct {
	FileURL     string `json:"file_url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Uploader stores a file and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*Uploaded, error)
}

// LocalStore writes uploads to a directory. Stored names are random so a
// client cannot overwrite or guess another file.
type LocalStore struct {
	fs       afero.Fs
	baseURL  string
	maxBytes int64
	allowed  func(mime *mimetype.MIME) bool
}

var _ Uploader = (*LocalStore)(nil)

// NewLocalStore stores uploads under cfg.Dir, creating it when missing.
func NewLocalStore(cfg config.UploadConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), cfg.Dir), cfg.PublicBaseURL, cfg.MaxBytes), nil
}

// NewStore builds a store over an arbitrary filesystem.
func NewStore(fs afero.Fs, baseURL string, maxBytes int64) *LocalStore {
	return &LocalStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}
}

// ImagesOnly returns a copy of the store that refuses anything but images.
func (s *LocalStore) ImagesOnly() *LocalStore {
	clone := *s
	clone.allowed = func(mime *mimetype.MIME) bool {
		for m := mime; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), "image/") {
				return true
			}
		}
		return false
	}
	return &clone
}

// Upload stores r under a fresh name that keeps the detected extension.
func (s *LocalStore) Upload(ctx context.Context, filename string, r io.Reader) (*Uploaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmpty
	}

	mime := mimetype.Detect(head)
	if s.allowed != nil && !s.allowed(mime) {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, mime.String())
	}

	name := uuid.NewString() + extension(filename, mime)
	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	limit := s.maxBytes
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}
	written, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil && limit > 0 && written > limit {
		copyErr = ErrTooLarge
	}
	if copyErr != nil {
		_ = s.fs.Remove(name)
		if errors.Is(copyErr, ErrTooLarge) {
			return nil, copyErr
		}
		return nil, fmt.Errorf("write upload: %w", copyErr)
	}

	return &Uploaded{
		FileURL:     s.baseURL + "/" + name,
		Name:        name,
		ContentType: mime.String(),
		Size:        written,
	}, nil
}

// extension prefers the detected type's extension and falls back to the
// client's, restricted to a short alphanumeric suffix.
func extension(filename string, mime *mimetype.MIME) string {
	if ext := mime.Extension(); ext != "" {
		return ext
	}
	ext := strings.ToLower(path.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
