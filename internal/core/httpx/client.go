package httpx

import (
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBody caps how much of a failed response is kept for logs.
const maxErrorBody = 4 << 10

// NewClient returns a traced client without its own timeout; deadlines
// come from the caller's context.
func NewClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// StatusError is a completed HTTP exchange with an unexpected status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Service, e.StatusCode, e.Body)
}

func NewStatusError(service string, resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       string(raw),
	}
}

func BearerToken(token string) string {
	const prefix = "Bearer "
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		return token
	}
	return prefix + token
}
