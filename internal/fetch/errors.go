package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimited marks an upstream HTTP 429. It always aborts a whole crawl:
// retrying through further transport strategies would only amplify load on a
// host that is already throttling us.
var ErrRateLimited = errors.New("rate limited by upstream (HTTP 429)")

// UpstreamHTTPError is a non-2xx response from the target (through whichever
// strategy was in use).
type UpstreamHTTPError struct {
	URL    string
	Status int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream HTTP %d fetching %s", e.Status, e.URL)
}

func (e *UpstreamHTTPError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// IsRateLimited reports whether err (anywhere in its chain) is an HTTP 429.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Describe turns a fetch error into a short operator-facing message instead
// of a raw transport error.
func Describe(err error) string {
	var up *UpstreamHTTPError
	switch {
	case err == nil:
		return "ok"
	case IsRateLimited(err):
		return "rate limited: the host is throttling requests; retry later with a longer delay"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled before completion"
	case errors.As(err, &up):
		return fmt.Sprintf("blocked or unreachable: %s returned HTTP %d on every transport", up.URL, up.Status)
	default:
		return fmt.Sprintf("unreachable host: %v", err)
	}
}
