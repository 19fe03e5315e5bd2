package usecase

import (
	"context"
	"io"
	"log/slog"

	"medfund/internal/core/port"
)

type Documents struct {
	store  port.DocumentStore
	logger *slog.Logger
}

var _ port.DocumentUploader = (*Documents)(nil)

func NewDocuments(store port.DocumentStore, logger *slog.Logger) *Documents {
	if logger == nil {
		logger = slog.Default()
	}
	return &Documents{store: store, logger: logger}
}

func (d *Documents) UploadDocument(ctx context.Context, r io.Reader) (string, error) {
	ref, err := d.store.Put(ctx, r)
	if err != nil {
		return "", err
	}
	d.logger.Info("document stored", slog.String("ref", ref))
	return ref, nil
}
