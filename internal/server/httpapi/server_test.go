package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	clientmodels "github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/client/remote"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/server/auth"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fakeUsers struct {
	err error
}

func (f *fakeUsers) Login(_ context.Context, user, pass string) (string, time.Duration, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	if user != "op" || pass != "pw" {
		return "", 0, fmt.Errorf("%w: %w", common.ErrUnauthorized, shared.ErrorInvalidLoginPassword)
	}
	token, err := auth.GenerateToken("uid-op", user, []byte(secret), time.Minute)
	return token, time.Minute, err
}

type fakeSync struct {
	mu       sync.Mutex
	pushedBy []string
	batches  []clientmodels.Batch
	pushErr  error
	recs     []shared.StoredRecord
	listErr  error
	panicky  bool
}

func (f *fakeSync) Push(_ context.Context, userID string, b clientmodels.Batch) (*shared.SyncResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicky {
		panic("kaboom")
	}
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushedBy = append(f.pushedBy, userID)
	f.batches = append(f.batches, b)
	resp := &shared.SyncResponse{Accepted: map[string]int{}, Duplicates: map[string]int{}}
	for _, s := range b.Sales {
		resp.Accepted[common.TypeSale]++
		resp.Refs = append(resp.Refs, clientmodels.PendingRef{Type: common.TypeSale, ID: s.ID})
	}
	return resp, nil
}

func (f *fakeSync) Records(_ context.Context, typ string) ([]shared.StoredRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if typ == "bogus" {
		return nil, fmt.Errorf("%w: %q", shared.ErrorUnknownRecordType, typ)
	}
	return f.recs, nil
}

func newTestServer(t *testing.T, us *fakeUsers, ss *fakeSync) *httptest.Server {
	t.Helper()
	s := NewHTTPServer("", logging.Discard(), us, ss, secret)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url, token string, body any, wantCode int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	var tr shared.TokenResponse
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathToken, "",
		shared.TokenRequest{Username: "op", Password: "pw"}, http.StatusOK, &tr)
	require.NotEmpty(t, tr.AccessToken)
	assert.Equal(t, int64(60), tr.ExpiresIn)
	return tr.AccessToken
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, &fakeSync{})

	var hr shared.HealthResponse
	doJSON(t, ts.Client(), http.MethodGet, ts.URL+shared.PathHealth, "", nil, http.StatusOK, &hr)
	assert.Equal(t, "ok", hr.Status)

	doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathHealth, "", nil, http.StatusMethodNotAllowed, nil)
}

func TestToken(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, &fakeSync{})
	login(t, ts)

	var er shared.ErrorResponse
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathToken, "",
		shared.TokenRequest{Username: "op", Password: "bad"}, http.StatusUnauthorized, &er)
	assert.Equal(t, "unauthorized", er.Error)

	resp, err := ts.Client().Post(ts.URL+shared.PathToken, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToken_InternalErrorHidden(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{err: errors.New("db is down at 10.0.0.1")}, &fakeSync{})

	var er shared.ErrorResponse
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathToken, "",
		shared.TokenRequest{Username: "op", Password: "pw"}, http.StatusInternalServerError, &er)
	assert.Equal(t, common.ErrInternal.Error(), er.Error)
}

func TestSync_RequiresToken(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, &fakeSync{})

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"empty bearer", "Bearer  "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+shared.PathSync, strings.NewReader("{}"))
			if tc.header != "" {
				req.Header.Set(common.AuthorizationHeaderName, tc.header)
			}
			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestSync_ExpiredToken(t *testing.T) {
	ts := newTestServer(t, &fakeUsers{}, &fakeSync{})
	token, err := auth.GenerateToken("uid-op", "op", []byte(secret), -time.Minute)
	require.NoError(t, err)

	doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathSync, token, clientmodels.Batch{}, http.StatusUnauthorized, nil)
}

func TestSync_Push(t *testing.T) {
	ss := &fakeSync{}
	ts := newTestServer(t, &fakeUsers{}, ss)
	token := login(t, ts)

	var sr shared.SyncResponse
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathSync, token,
		clientmodels.Batch{Sales: []clientmodels.Sale{{ID: "s1"}, {ID: "s2"}}}, http.StatusOK, &sr)

	assert.Equal(t, 2, sr.Accepted["sale"])
	assert.Len(t, sr.Refs, 2)
	assert.Equal(t, []string{"uid-op"}, ss.pushedBy)
}

func TestSync_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t, &fakeUsers{}, &fakeSync{})
		token := login(t, ts)
		req, _ := http.NewRequest(http.MethodPost, ts.URL+shared.PathSync, strings.NewReader(`{"sales":`))
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t, &fakeUsers{}, &fakeSync{pushErr: errors.New("tx failed")})
		token := login(t, ts)
		doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathSync, token, clientmodels.Batch{}, http.StatusInternalServerError, nil)
	})

	t.Run("panic recovered", func(t *testing.T) {
		ts := newTestServer(t, &fakeUsers{}, &fakeSync{panicky: true})
		token := login(t, ts)
		doJSON(t, ts.Client(), http.MethodPost, ts.URL+shared.PathSync, token, clientmodels.Batch{}, http.StatusInternalServerError, nil)
	})
}

func TestRecords(t *testing.T) {
	ss := &fakeSync{recs: []shared.StoredRecord{{Type: "sale", ID: "s1", Payload: json.RawMessage(`{"id":"s1"}`)}}}
	ts := newTestServer(t, &fakeUsers{}, ss)
	token := login(t, ts)

	var rr shared.RecordsResponse
	doJSON(t, ts.Client(), http.MethodGet, ts.URL+shared.PathRecords+"?type=sale", token, nil, http.StatusOK, &rr)
	require.Len(t, rr.Records, 1)
	assert.Equal(t, "s1", rr.Records[0].ID)

	doJSON(t, ts.Client(), http.MethodGet, ts.URL+shared.PathRecords+"?type=bogus", token, nil, http.StatusBadRequest, nil)
	doJSON(t, ts.Client(), http.MethodGet, ts.URL+shared.PathRecords+"?type=sale", "", nil, http.StatusUnauthorized, nil)
}

// The terminal's remote client against the real router.
func TestRemoteClientContract(t *testing.T) {
	ss := &fakeSync{recs: []shared.StoredRecord{}}
	ts := newTestServer(t, &fakeUsers{}, ss)
	c := remote.New(ts.URL, ts.Client(), logging.Discard())
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.Push(ctx, clientmodels.Batch{})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	require.ErrorIs(t, c.Login(ctx, "op", "bad"), common.ErrUnauthorized)
	require.NoError(t, c.Login(ctx, "op", "pw"))

	resp, err := c.Push(ctx, clientmodels.Batch{Sales: []clientmodels.Sale{{ID: "s9"}}})
	require.NoError(t, err)
	assert.Equal(t, []clientmodels.PendingRef{{Type: "sale", ID: "s9"}}, resp.Refs)

	recs, err := c.Records(ctx, "sale")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestServe_StopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewHTTPServer(l.Addr().String(), logging.Discard(), &fakeUsers{}, &fakeSync{}, secret)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + shared.PathHealth)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := NewHTTPServer("256.0.0.1:bad", logging.Discard(), &fakeUsers{}, &fakeSync{}, secret)
	require.Error(t, s.Run(context.Background()))
}
