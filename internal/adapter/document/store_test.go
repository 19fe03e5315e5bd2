package document

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfund/internal/core/domain"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), 16)
	require.NoError(t, err)

	ref, err := s.Put(ctx, strings.NewReader("hospital invoice"))
	require.NoError(t, err)
	assert.Equal(t, "sha256:93f093920ac5cd430b60332000a52d3d6ae1429a49206ce8c6a677ac8f9cace6", ref)

	again, err := s.Put(ctx, strings.NewReader("hospital invoice"))
	require.NoError(t, err)
	assert.Equal(t, ref, again, "same bytes, same reference")

	rc, err := s.Open(ref)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hospital invoice", string(body))

	_, err = s.Put(ctx, strings.NewReader("seventeen bytes!!"))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Put(ctx, strings.NewReader(""))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Open("md5:abc")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Open("sha256:" + strings.Repeat("0", 64))
	require.ErrorIs(t, err, domain.ErrNotFound)
}
