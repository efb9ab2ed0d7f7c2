// Package store holds the upload registry mapping upload IDs to files
// on disk.
package store

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Upload describes one uploaded PDF tracked by the registry.
type Upload struct {
	// ID is the opaque upload identifier returned to clients.
	ID string `json:"id"`
	// Filename is the original client-provided file name.
	Filename string `json:"filename"`
	// Path is the temp file location on disk.
	Path string `json:"-"`
	// Size is the stored file size in bytes.
	Size int64 `json:"size"`
	// UploadedAt is when the upload completed.
	UploadedAt time.Time `json:"uploaded_at"`
}

// UploadStore is an in-memory registry of uploaded PDFs. Files live in
// dir; entries persist for the lifetime of the process.
type UploadStore struct {
	mu      sync.RWMutex
	uploads map[string]*Upload
	dir     string
}

// NewUploadStore creates a registry that stores files under dir. An
// empty dir falls back to the system temp directory.
func NewUploadStore(dir string) (*UploadStore, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &UploadStore{
		uploads: make(map[string]*Upload),
		dir:     dir,
	}, nil
}

// Add persists the content to a temp file and registers it under a new
// upload ID.
func (s *UploadStore) Add(filename string, r io.Reader) (*Upload, error) {
	f, err := os.CreateTemp(s.dir, "docqa-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("write upload: %w", err)
	}

	up := &Upload{
		ID:         ulid.Make().String(),
		Filename:   filename,
		Path:       f.Name(),
		Size:       size,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	s.uploads[up.ID] = up
	s.mu.Unlock()

	return up, nil
}

// Get returns the upload for id, or false when unknown.
func (s *UploadStore) Get(id string) (*Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	up, ok := s.uploads[id]
	return up, ok
}

// List returns all uploads ordered by upload time, oldest first.
func (s *UploadStore) List() []*Upload {
	s.mu.RLock()
	out := make([]*Upload, 0, len(s.uploads))
	for _, up := range s.uploads {
		out = append(out, up)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

// Remove drops the registry entry and deletes the backing file. The
// file removal is best effort. Returns false when id is unknown.
func (s *UploadStore) Remove(id string) (*Upload, bool) {
	s.mu.Lock()
	up, ok := s.uploads[id]
	if ok {
		delete(s.uploads, id)
	}
	s.mu.Unlock()

	if !ok {
		return nil, false
	}

	_ = os.Remove(up.Path)
	return up, true
}

// Len returns the number of tracked uploads.
func (s *UploadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}
