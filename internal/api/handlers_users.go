package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/clinicore/clinic-services/internal/api/errors"
	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/user"
)

func createUserHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierrors.ValidationError(w, "could not parse JSON")
			return
		}
		if req.Subject == "" {
			apierrors.ValidationError(w, "subject is required")
			return
		}

		created, err := svc.Create(r.Context(), user.User{
			Subject:    req.Subject,
			Email:      req.Email,
			GivenName:  req.GivenName,
			FamilyName: req.FamilyName,
			Phone:      req.Phone,
			Role:       req.Role,
		})
		if err != nil {
			handleUserError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(created))
	}
}

func listUsersHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			handleUserError(w, err)
			return
		}

		out := make([]UserResponse, 0, len(users))
		for i := range users {
			out = append(out, toUserResponse(&users[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getUserHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			apierrors.ValidationError(w, "id must be an integer")
			return
		}

		u, err := svc.Get(r.Context(), id)
		if err != nil {
			handleUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// currentUserHandler provisions the caller's user row on first sight and
// returns it.
func currentUserHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		u, err := svc.EnsureFromClaims(r.Context(), ident)
		if err != nil {
			handleUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func myUserIDHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		id, err := svc.InternalIDForSubject(r.Context(), ident.Subject)
		if err != nil {
			handleUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, InternalIDResponse{ID: id})
	}
}

// lookupInternalIDHandler is the cross-service resolution endpoint consumed
// by the image service. It lives outside the JWT-protected subtree: callers
// are sibling services on the internal network, not end users.
func lookupInternalIDHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")
		if subject == "" {
			apierrors.ValidationError(w, "subject is required")
			return
		}

		id, err := svc.InternalIDForSubject(r.Context(), subject)
		if err != nil {
			handleUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, InternalIDResponse{ID: id})
	}
}

func handleUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		apierrors.Unauthorized(w, "authentication required")
	case errors.Is(err, user.ErrUserNotFound):
		apierrors.NotFound(w, "user not found")
	default:
		apierrors.InternalError(w)
	}
}
