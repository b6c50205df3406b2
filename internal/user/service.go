package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/clinic-services/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureFromClaims returns the user for the caller's subject, creating the
// row on first sight. Optional claims fall back to placeholder values so the
// record is always complete.
func (s *Service) EnsureFromClaims(ctx context.Context, ident auth.Identity) (*User, error) {
	existing, err := s.repo.GetBySubject(ctx, ident.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("load user by subject: %w", err)
	}

	u := User{
		Subject:    ident.Subject,
		Email:      DefaultEmail,
		GivenName:  DefaultGivenName,
		FamilyName: DefaultFamilyName,
		Role:       DefaultRole,
	}
	if c := ident.Claims; c != nil {
		if c.Email != "" {
			u.Email = c.Email
		}
		if c.GivenName != "" {
			u.GivenName = c.GivenName
		}
		if c.FamilyName != "" {
			u.FamilyName = c.FamilyName
		}
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return created, nil
}

// InternalIDForSubject backs the cross-service lookup endpoint. A miss is
// reported as ErrUserNotFound so the transport can answer 404, which the
// resolver on the other side keeps distinct from a transport failure.
func (s *Service) InternalIDForSubject(ctx context.Context, subject string) (int64, error) {
	u, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("lookup user by subject: %w", err)
	}
	return u.ID, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, u User) (*User, error) {
	if u.Role == "" {
		u.Role = DefaultRole
	}
	if u.Email == "" {
		u.Email = DefaultEmail
	}
	if u.GivenName == "" {
		u.GivenName = DefaultGivenName
	}
	if u.FamilyName == "" {
		u.FamilyName = DefaultFamilyName
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}
