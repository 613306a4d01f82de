package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded chapter documents and hands back durable reference
// URLs. Quick quizzes delete their uploads once generation finishes.
type Store interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// FSStore keeps documents on the local filesystem and returns file:// URLs.
type FSStore struct {
	base string
}

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	// Absolute base keeps the file:// URLs parseable round-trip.
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: abs}, nil
}

func (s *FSStore) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if name == "" {
		return "", errors.New("empty file name")
	}
	// Prefix with a fresh ID so repeated uploads of the same file never collide.
	key := uuid.NewString() + "_" + filepath.Base(filepath.Clean(name))
	dst := filepath.Join(s.base, key)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: dst}
	return u.String(), nil
}

func (s *FSStore) Delete(ctx context.Context, ref string) error {
	u, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("invalid document reference %q: %w", ref, err)
	}
	path := filepath.Clean(u.Path)
	rel, err := filepath.Rel(s.base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("document reference %q outside storage root", ref)
	}
	return os.Remove(path)
}
