package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"medfund/internal/core/domain"
	"medfund/internal/core/port"
)

const refPrefix = "sha256:"

// FileStore keeps documents on local disk under their SHA-256 digest, so the
// same bytes always map to the same reference.
type FileStore struct {
	dir      string
	maxBytes int64
}

var _ port.DocumentStore = (*FileStore)(nil)

func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Put stores r and returns "sha256:<hex digest>".
func (s *FileStore) Put(ctx context.Context, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if n > s.maxBytes {
		return "", domain.Validationf("document exceeds %d bytes", s.maxBytes)
	}
	if n == 0 {
		return "", domain.Validationf("document is empty")
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close document: %w", err)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, digest)); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	return refPrefix + digest, nil
}

// Open returns the content stored under ref.
func (s *FileStore) Open(ref string) (io.ReadCloser, error) {
	digest, ok := strings.CutPrefix(ref, refPrefix)
	if !ok || len(digest) != sha256.Size*2 {
		return nil, domain.Validationf("malformed document reference %q", ref)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return nil, domain.Validationf("malformed document reference %q", ref)
	}
	f, err := os.Open(filepath.Join(s.dir, digest))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.NotFoundf("document %s not found", ref)
	}
	return f, err
}
