// Package identity resolves an external token subject into the internal
// numeric user id by calling the user service synchronously. Every call is a
// fresh round trip: there is no cache, so a resolved id is never stale, at
// the cost of coupling image-service availability to the user service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnknownSubject marks a lookup that reached the user service but matched
// no user. Distinct from transport failures, though both abort authorization.
var ErrUnknownSubject = errors.New("no user for subject")

// ResolutionError wraps any failure to resolve a subject. Callers must treat
// it as "cannot authorize right now" and perform no mutation.
type ResolutionError struct {
	Subject string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve identity for subject %q: %v", e.Subject, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver looks up the internal numeric id for an external subject.
type Resolver interface {
	InternalID(ctx context.Context, subject string) (int64, error)
}

// HTTPResolver calls the user service's internal lookup endpoint.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPResolver creates a resolver against the user service base URL.
// timeout bounds the whole round trip; resolution is never retried.
func NewHTTPResolver(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With(slog.String("component", "identity_resolver")),
	}
}

type lookupResponse struct {
	ID int64 `json:"id"`
}

// InternalID performs the blocking lookup. The request carries the caller's
// context, so a cancelled inbound request abandons the in-flight call.
func (r *HTTPResolver) InternalID(ctx context.Context, subject string) (int64, error) {
	reqURL := fmt.Sprintf("%s/internal/users/by-subject/%s", r.baseURL, url.PathEscape(subject))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return 0, &ResolutionError{Subject: subject, Err: err}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("identity lookup failed",
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		return 0, &ResolutionError{Subject: subject, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, &ResolutionError{Subject: subject, Err: ErrUnknownSubject}
	default:
		return 0, &ResolutionError{Subject: subject, Err: fmt.Errorf("user service returned status %d", resp.StatusCode)}
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, &ResolutionError{Subject: subject, Err: fmt.Errorf("decode lookup response: %w", err)}
	}
	if body.ID <= 0 {
		return 0, &ResolutionError{Subject: subject, Err: ErrUnknownSubject}
	}

	return body.ID, nil
}
