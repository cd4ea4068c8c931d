// Package upload stores ad image files on local disk and reports where
// they ended up.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotImage is returned when an uploaded file is not an image.
var ErrNotImage = errors.New("only image files are allowed")

// Result describes one stored file. Location is the single authoritative
// URL path of the file; every consumer reads it from here and nowhere else.
type Result struct {
	Location string `json:"location"`
}

// Store saves multipart files into a local directory and serves their
// locations under a URL prefix.
type Store struct {
	dir       string // filesystem directory files are written to
	urlPrefix string // public path prefix, e.g. "/uploads"
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Save writes one uploaded file to disk under a random name and returns
// its location. Non-image content types are rejected before writing.
func (s *Store) Save(fileHeader *multipart.FileHeader) (*Result, error) {
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotImage
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	// Random name keeps uploads from colliding or overwriting each other;
	// the original extension is kept for content-type sniffing by the
	// static file server.
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Remove the partial file so the directory never accumulates junk
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &Result{Location: s.urlPrefix + "/" + name}, nil
}

// SaveAll stores every file and returns their locations in order. The
// first failure aborts; already-written files are left in place (the ad
// was not created, unreferenced files are garbage-collected out of band).
func (s *Store) SaveAll(fileHeaders []*multipart.FileHeader) ([]*Result, error) {
	results := make([]*Result, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		result, err := s.Save(fh)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Dir returns the filesystem directory uploads are written to, for wiring
// the static file server.
func (s *Store) Dir() string {
	return s.dir
}
