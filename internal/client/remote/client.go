// Package remote is the terminal UI's HTTP client for the backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/netx"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu    sync.Mutex
	token string
}

// New returns a client for the backend at baseURL. A nil httpClient gets a
// client with a 15s timeout.
func New(baseURL string, httpClient *http.Client, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log.With("module", "remote"),
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) LoggedIn() bool { return c.Token() != "" }

// Login exchanges operator credentials for an access token and keeps it for
// later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out shared.TokenResponse
	in := shared.TokenRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, shared.PathToken, false, in, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", common.ErrInternal)
	}
	c.SetToken(out.AccessToken)
	c.log.Info(ctx, "logged in", "username", username)
	return nil
}

// Push uploads b. The backend stores each record at most once.
func (c *Client) Push(ctx context.Context, b models.Batch) (shared.SyncResponse, error) {
	var out shared.SyncResponse
	err := c.do(ctx, http.MethodPost, shared.PathSync, true, b, &out)
	return out, err
}

// Records lists what the backend holds for one record type.
func (c *Client) Records(ctx context.Context, recordType string) ([]shared.StoredRecord, error) {
	var out shared.RecordsResponse
	path := shared.PathRecords + "?type=" + url.QueryEscape(recordType)
	if err := c.do(ctx, http.MethodGet, path, true, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, shared.PathHealth, false, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return fmt.Errorf("%w: not logged in", common.ErrUnauthorized)
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatus(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	se := netx.ReadStatusError(resp)
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return errors.Join(common.ErrUnauthorized, se)
	case resp.StatusCode >= 500:
		return errors.Join(common.ErrUnavailable, se)
	}
	return se
}
