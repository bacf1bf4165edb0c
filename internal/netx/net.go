// Package netx contains small HTTP helpers shared by the shell and the
// terminal UI.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultCheckURL     = "https://www.google.com/generate_204"
	DefaultCheckTimeout = 5 * time.Second

	maxErrorBody = 4 << 10
)

// CheckConnectivity issues one GET to url and reports whether any 2xx or
// 3xx answer arrived within timeout. Redirects are not followed. Every
// failure, including a bad URL, is reported as false.
func CheckConnectivity(ctx context.Context, client *http.Client, url string, timeout time.Duration) bool {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	check := *client
	check.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := check.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status %d %s; body: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// ReadStatusError builds a StatusError from resp, keeping a bounded,
// trimmed copy of the body. It does not close the body.
func ReadStatusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
