package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInternalIDSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/users/by-subject/kc-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second, testLogger())

	id, err := r.InternalID(context.Background(), "kc-42")
	if err != nil {
		t.Fatalf("InternalID: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
}

func TestInternalIDEscapesSubject(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"id": 7}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second, testLogger())

	if _, err := r.InternalID(context.Background(), "kc/odd subject"); err != nil {
		t.Fatalf("InternalID: %v", err)
	}
	if gotPath != "/internal/users/by-subject/kc%2Fodd%20subject" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestInternalIDUnknownSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second, testLogger())

	_, err := r.InternalID(context.Background(), "kc-ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v, want ErrUnknownSubject", err)
	}

	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %T, want *ResolutionError", err)
	}
	if resErr.Subject != "kc-ghost" {
		t.Errorf("subject = %q, want kc-ghost", resErr.Subject)
	}
}

func TestInternalIDUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, time.Second, testLogger())

	_, err := r.InternalID(context.Background(), "kc-1")
	if err == nil {
		t.Fatal("expected error")
	}
	// 5xx is a transport-level failure, not an unknown subject.
	if errors.Is(err, ErrUnknownSubject) {
		t.Errorf("5xx must not map to ErrUnknownSubject: %v", err)
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %T, want *ResolutionError", err)
	}
}

func TestInternalIDTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	r := NewHTTPResolver(srv.URL, time.Second, testLogger())

	_, err := r.InternalID(context.Background(), "kc-1")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %v, want *ResolutionError", err)
	}
}

func TestInternalIDTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, 20*time.Millisecond, testLogger())

	start := time.Now()
	_, err := r.InternalID(context.Background(), "kc-1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("lookup took %v, timeout not applied", elapsed)
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %T, want *ResolutionError", err)
	}
}

func TestInternalIDBadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"zero id", `{"id": 0}`},
		{"negative id", `{"id": -3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r := NewHTTPResolver(srv.URL, time.Second, testLogger())

			_, err := r.InternalID(context.Background(), "kc-1")
			var resErr *ResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("err = %v, want *ResolutionError", err)
			}
		})
	}
}
