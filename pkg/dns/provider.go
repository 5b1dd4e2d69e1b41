package dns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrForbidden is matched by errors.Is for provider responses rejecting the credentials.
var ErrForbidden = errors.New("dns provider rejected the credentials")

// SRVRecord describes an SRV record relative to the provider zone.
type SRVRecord struct {
	Name     string
	Target   string
	Port     int
	Priority int
	Weight   int
	Comment  string
}

// Record is a provider record as seen by the reconciler.
type Record struct {
	ID      string
	Name    string
	Type    string
	Comment string
	Created time.Time
	// CommentUnsupported is set by providers that cannot store or return a
	// comment, so the record's origin cannot be told from it.
	CommentUnsupported bool
}

type Provider interface {
	// Verify issues a bounded read to prove the credentials are usable.
	Verify(ctx context.Context) error
	CreateSRV(ctx context.Context, record SRVRecord) (string, error)
	Delete(ctx context.Context, id string) error
	// ListSRV returns SRV records whose name starts with prefix.
	ListSRV(ctx context.Context, prefix string) ([]Record, error)
}

// APIError is a non-2xx response from a provider API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrForbidden &&
		(e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusUnauthorized)
}
