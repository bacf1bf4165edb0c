package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckConnectivity(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "no content", status: http.StatusNoContent, want: true},
		{name: "ok", status: http.StatusOK, want: true},
		{name: "redirect counts as online", status: http.StatusFound, want: true},
		{name: "server error", status: http.StatusServiceUnavailable, want: false},
		{name: "not found", status: http.StatusNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusFound {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			got := CheckConnectivity(context.Background(), ts.Client(), ts.URL, time.Second)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckConnectivity_SlowServerTimesOut(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	start := time.Now()
	got := CheckConnectivity(context.Background(), ts.Client(), ts.URL, time.Second)
	elapsed := time.Since(start)

	assert.False(t, got)
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestCheckConnectivity_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	assert.False(t, CheckConnectivity(context.Background(), nil, url, time.Second))
}

func TestCheckConnectivity_BadURL(t *testing.T) {
	assert.False(t, CheckConnectivity(context.Background(), nil, "://nope", time.Second))
}

func TestCheckConnectivity_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, CheckConnectivity(ctx, ts.Client(), ts.URL, time.Second))
}

func TestReadStatusError(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Body:       io.NopCloser(strings.NewReader("  denied \n")),
	}

	err := ReadStatusError(resp)

	var se *StatusError
	assert.True(t, errors.As(error(err), &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, "denied", se.Body)
	assert.Equal(t, "unexpected status 403 Forbidden; body: denied", err.Error())
	assert.Equal(t, "unexpected status 500 Internal Server Error", (&StatusError{Code: 500}).Error())
}
