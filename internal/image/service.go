package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/guard"
	"github.com/clinicore/clinic-services/internal/identity"
)

var (
	ErrEmptyFile = errors.New("file is empty")
)

// Service applies image authorization on resolved internal user ids. Every
// operation resolves the caller's subject through the user service first; a
// failed resolution aborts before any fetch or mutation.
type Service struct {
	repo     Repository
	resolver identity.Resolver
	logger   *slog.Logger
}

func NewService(repo Repository, resolver identity.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "image_service")),
	}
}

// Upload stores a new image owned by the caller's resolved internal id.
func (s *Service) Upload(ctx context.Context, ident auth.Identity, filename, contentType string, data []byte) (*UserImage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	userID, err := s.resolver.InternalID(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	img, err := s.repo.Create(ctx, UserImage{
		UserID:      userID,
		Image:       data,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	s.logger.Info("image uploaded",
		slog.Int64("image_id", img.ID),
		slog.Int64("user_id", userID),
		slog.Int64("size", img.Size),
	)

	return img, nil
}

// Get returns an image only to its owner. Admins are not special-cased.
func (s *Service) Get(ctx context.Context, ident auth.Identity, id int64) (*UserImage, error) {
	userID, err := s.resolver.InternalID(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}

	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load image: %w", err)
	}

	if !guard.CanAccessImage(img.UserID, userID) {
		return nil, guard.ErrDenied
	}

	return img, nil
}

// List returns the caller's own images.
func (s *Service) List(ctx context.Context, ident auth.Identity) ([]Info, error) {
	userID, err := s.resolver.InternalID(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}

	images, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// Delete removes an image after the owner check.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, id int64) error {
	userID, err := s.resolver.InternalID(ctx, ident.Subject)
	if err != nil {
		return err
	}

	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return err
		}
		return fmt.Errorf("load image: %w", err)
	}

	if !guard.CanAccessImage(img.UserID, userID) {
		return guard.ErrDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return err
		}
		return fmt.Errorf("delete image: %w", err)
	}

	s.logger.Info("image deleted",
		slog.Int64("image_id", id),
		slog.Int64("user_id", userID),
	)

	return nil
}
