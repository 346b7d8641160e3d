package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/storage"
	"github.com/voxo-cms/internal/validation"
)

// ErrStorageUnavailable is returned when no object store is configured
var ErrStorageUnavailable = errors.New("object storage is not configured")

// mediaService is the concrete implementation of MediaService
type mediaService struct {
	store   storage.ObjectStore
	maxSize int64
	log     zerolog.Logger
}

func newMediaService(store storage.ObjectStore, maxSize int64, log zerolog.Logger) *mediaService {
	return &mediaService{
		store:   store,
		maxSize: maxSize,
		log:     log.With().Str("service", "media").Logger(),
	}
}

// Upload stores an image under a random name and returns its public URL
func (s *mediaService) Upload(ctx context.Context, contentType string, size int64, r io.Reader) (string, error) {
	if s.store == nil {
		return "", ErrStorageUnavailable
	}

	ext, ok := storage.ExtensionFor(contentType)
	if !ok {
		return "", invalid(validation.Errors{{Field: "file", Message: "only jpeg, png, gif and webp images are accepted", Value: contentType}})
	}
	if s.maxSize > 0 && size > s.maxSize {
		return "", invalid(validation.Errors{{Field: "file", Message: fmt.Sprintf("file exceeds %d bytes", s.maxSize), Value: size}})
	}

	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize)
	}

	name := uuid.New().String() + ext
	url, err := s.store.Put(ctx, name, contentType, r)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	s.log.Info().Str("name", name).Int64("size", size).Msg("Upload stored")
	return url, nil
}
