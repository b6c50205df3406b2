package user

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetBySubject(ctx context.Context, subject string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u User) (*User, error)
}
