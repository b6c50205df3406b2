package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/clinicore/clinic-services/internal/api/errors"
	"github.com/clinicore/clinic-services/internal/appointment"
	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/identity"
	"github.com/clinicore/clinic-services/internal/image"
	"github.com/clinicore/clinic-services/internal/user"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testAuth replaces the JWT middleware in router tests. The identity comes
// from request headers set by the test instead of a verified token.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := r.Header.Get("X-Test-Subject")
		if sub == "" {
			apierrors.Unauthorized(w, "authentication required")
			return
		}
		ident := auth.Identity{
			Subject: sub,
			Role:    auth.Role(r.Header.Get("X-Test-Role")),
			Claims: &auth.Claims{
				Email:      r.Header.Get("X-Test-Email"),
				GivenName:  r.Header.Get("X-Test-Given"),
				FamilyName: r.Header.Get("X-Test-Family"),
			},
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
	})
}

func testRouterConfig() RouterConfig {
	return RouterConfig{
		Auth:    testAuth,
		Logger:  testLogger(),
		Env:     "test",
		Version: "test",
	}
}

// doRequest performs a request as the given caller and returns the recorder.
func doRequest(t *testing.T, h http.Handler, method, path string, body io.Reader, subject string, role auth.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("X-Test-Subject", subject)
		req.Header.Set("X-Test-Role", string(role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rec.Body.String())
	}
	return v
}

// errorCode extracts the machine-readable code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v, body: %s", err, rec.Body.String())
	}
	return body.Error.Code
}

// In-memory appointment repository.
type fakeApptRepo struct {
	byID map[uuid.UUID]*appointment.Appointment
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{byID: make(map[uuid.UUID]*appointment.Appointment)}
}

func (f *fakeApptRepo) Create(_ context.Context, a appointment.Appointment) (*appointment.Appointment, error) {
	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	f.byID[a.ID] = &a
	copied := a
	return &copied, nil
}

func (f *fakeApptRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeApptRepo) List(_ context.Context, status *appointment.Status) ([]appointment.Appointment, error) {
	return f.filter(func(a *appointment.Appointment) bool { return true }, status), nil
}

func (f *fakeApptRepo) ListByPatient(_ context.Context, patientID string, status *appointment.Status) ([]appointment.Appointment, error) {
	return f.filter(func(a *appointment.Appointment) bool { return a.PatientID == patientID }, status), nil
}

func (f *fakeApptRepo) ListByDoctor(_ context.Context, doctorID string, status *appointment.Status) ([]appointment.Appointment, error) {
	return f.filter(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID }, status), nil
}

func (f *fakeApptRepo) filter(match func(*appointment.Appointment) bool, status *appointment.Status) []appointment.Appointment {
	out := []appointment.Appointment{}
	for _, a := range f.byID {
		if !match(a) {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, *a)
	}
	return out
}

func (f *fakeApptRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to appointment.Status) (*appointment.Appointment, error) {
	a, ok := f.byID[id]
	if !ok || a.Status != from {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	copied := *a
	return &copied, nil
}

func (f *fakeApptRepo) Cancel(_ context.Context, id uuid.UUID, reason string) (*appointment.Appointment, error) {
	a, ok := f.byID[id]
	if !ok || (a.Status != appointment.StatusScheduled && a.Status != appointment.StatusConfirmed) {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.Status = appointment.StatusCancelled
	if reason != "" {
		a.Description = reason
	}
	copied := *a
	return &copied, nil
}

func (f *fakeApptRepo) FindDoctorConflict(_ context.Context, doctorID string, at time.Time) (*appointment.Appointment, error) {
	for _, a := range f.byID {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(at) &&
			(a.Status == appointment.StatusScheduled || a.Status == appointment.StatusConfirmed) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

// inlineLocker runs booking critical sections without Redis.
type inlineLocker struct{}

func (inlineLocker) WithBookingLock(ctx context.Context, _ string, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// In-memory user repository.
type fakeUserRepo struct {
	byID      map[int64]*user.User
	bySubject map[string]*user.User
	nextID    int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:      make(map[int64]*user.User),
		bySubject: make(map[string]*user.User),
		nextID:    1,
	}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetBySubject(_ context.Context, subject string) (*user.User, error) {
	u, ok := f.bySubject[subject]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	out := []user.User{}
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (*user.User, error) {
	u.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.byID[u.ID] = &u
	f.bySubject[u.Subject] = &u
	copied := u
	return &copied, nil
}

// In-memory image repository.
type fakeImageRepo struct {
	byID   map[int64]*image.UserImage
	nextID int64
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{byID: make(map[int64]*image.UserImage), nextID: 1}
}

func (f *fakeImageRepo) Create(_ context.Context, img image.UserImage) (*image.UserImage, error) {
	img.ID = f.nextID
	f.nextID++
	img.UploadedAt = time.Now().UTC()
	f.byID[img.ID] = &img
	copied := img
	return &copied, nil
}

func (f *fakeImageRepo) GetByID(_ context.Context, id int64) (*image.UserImage, error) {
	img, ok := f.byID[id]
	if !ok {
		return nil, image.ErrImageNotFound
	}
	copied := *img
	return &copied, nil
}

func (f *fakeImageRepo) ListByUser(_ context.Context, userID int64) ([]image.Info, error) {
	out := []image.Info{}
	for _, img := range f.byID {
		if img.UserID == userID {
			out = append(out, image.Info{
				ID:          img.ID,
				UserID:      img.UserID,
				Filename:    img.Filename,
				ContentType: img.ContentType,
				Size:        img.Size,
				UploadedAt:  img.UploadedAt,
			})
		}
	}
	return out, nil
}

func (f *fakeImageRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return image.ErrImageNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeResolver maps subjects to internal ids, or fails every lookup.
type fakeResolver struct {
	ids  map[string]int64
	down bool
}

func (f *fakeResolver) InternalID(_ context.Context, subject string) (int64, error) {
	if f.down {
		return 0, &identity.ResolutionError{Subject: subject, Err: io.ErrUnexpectedEOF}
	}
	id, ok := f.ids[subject]
	if !ok {
		return 0, &identity.ResolutionError{Subject: subject, Err: identity.ErrUnknownSubject}
	}
	return id, nil
}
