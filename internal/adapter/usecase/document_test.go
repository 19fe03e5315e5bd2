package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medfund/internal/core/port/mocks"
)

func TestUploadDocument(t *testing.T) {
	store := mocks.NewMockDocumentStore(t)
	store.EXPECT().Put(mock.Anything, mock.Anything).Return("sha256:ab", nil).Once()
	store.EXPECT().Put(mock.Anything, mock.Anything).Return("", errors.New("disk full")).Once()

	docs := NewDocuments(store, nil)
	ref, err := docs.UploadDocument(context.Background(), strings.NewReader("scan"))
	require.NoError(t, err)
	assert.Equal(t, "sha256:ab", ref)

	_, err = docs.UploadDocument(context.Background(), strings.NewReader("scan"))
	require.EqualError(t, err, "disk full")
}
