package image

import (
	"context"
	"errors"
)

var (
	ErrImageNotFound = errors.New("image not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	Create(ctx context.Context, img UserImage) (*UserImage, error)
	GetByID(ctx context.Context, id int64) (*UserImage, error)
	ListByUser(ctx context.Context, userID int64) ([]Info, error)
	Delete(ctx context.Context, id int64) error
}
