package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/clinicore/clinic-services/internal/api/errors"
	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/guard"
	"github.com/clinicore/clinic-services/internal/identity"
	"github.com/clinicore/clinic-services/internal/image"
)

func uploadImageHandler(svc *image.Service, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			apierrors.ValidationError(w, "could not parse multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			apierrors.ValidationError(w, "file field is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			apierrors.ValidationError(w, "could not read file")
			return
		}

		img, err := svc.Upload(r.Context(), ident, header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			handleImageError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toImageInfoResponse(img.ID, img.Filename, img.ContentType, img.Size, img.UploadedAt))
	}
}

func getImageHandler(svc *image.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			apierrors.ValidationError(w, "id must be an integer")
			return
		}

		img, err := svc.Get(r.Context(), ident, id)
		if err != nil {
			handleImageError(w, err)
			return
		}

		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Filename))
		w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img.Image)
	}
}

func listImagesHandler(svc *image.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		images, err := svc.List(r.Context(), ident)
		if err != nil {
			handleImageError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toImageInfoResponses(images))
	}
}

func deleteImageHandler(svc *image.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			apierrors.ValidationError(w, "id must be an integer")
			return
		}

		if err := svc.Delete(r.Context(), ident, id); err != nil {
			handleImageError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
	}
}

func handleImageError(w http.ResponseWriter, err error) {
	var resErr *identity.ResolutionError

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		apierrors.Unauthorized(w, "authentication required")
	case errors.Is(err, guard.ErrDenied):
		apierrors.Forbidden(w)
	case errors.Is(err, image.ErrImageNotFound):
		apierrors.NotFound(w, "image not found")
	case errors.Is(err, image.ErrEmptyFile):
		apierrors.ValidationError(w, "file is empty")
	case errors.As(err, &resErr):
		// The system cannot authorize right now; the caller is not at fault.
		apierrors.ResolutionFailed(w)
	default:
		apierrors.InternalError(w)
	}
}
