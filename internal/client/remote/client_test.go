package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/netx"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginThenPush(t *testing.T) {
	var gotAuth string
	var gotBatch models.Batch

	mux := http.NewServeMux()
	mux.HandleFunc(shared.PathToken, func(w http.ResponseWriter, r *http.Request) {
		var in shared.TokenRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Username != "cashier" || in.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, shared.ErrorResponse{Error: "invalid login/password"})
			return
		}
		writeJSON(w, http.StatusOK, shared.TokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc(shared.PathSync, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(common.AuthorizationHeaderName)
		_ = json.NewDecoder(r.Body).Decode(&gotBatch)
		writeJSON(w, http.StatusOK, shared.SyncResponse{
			Accepted: map[string]int{common.TypeSale: 1},
			Refs:     []models.PendingRef{{Type: common.TypeSale, ID: "s1"}},
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL+"/", ts.Client(), logging.Discard())
	ctx := context.Background()

	_, err := c.Push(ctx, models.Batch{})
	assert.ErrorIs(t, err, common.ErrUnauthorized, "push before login")

	err = c.Login(ctx, "cashier", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.False(t, c.LoggedIn())

	require.NoError(t, c.Login(ctx, "cashier", "pw"))
	assert.Equal(t, "tok", c.Token())

	res, err := c.Push(ctx, models.Batch{Sales: []models.Sale{{ID: "s1"}}})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, gotBatch.Sales, 1)
	assert.Equal(t, 1, res.Accepted[common.TypeSale])
	assert.Equal(t, []models.PendingRef{{Type: common.TypeSale, ID: "s1"}}, res.Refs)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: common.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: common.ErrUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, want: common.ErrUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, want: common.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer ts.Close()

			c := New(ts.URL, ts.Client(), logging.Discard())
			c.SetToken("tok")

			_, err := c.Push(context.Background(), models.Batch{})
			assert.ErrorIs(t, err, tt.want)

			var se *netx.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, "nope", se.Body)
		})
	}
}

func TestBadRequestIsPlainStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown record type", http.StatusBadRequest)
	}))
	defer ts.Close()

	c := New(ts.URL, ts.Client(), logging.Discard())
	c.SetToken("tok")

	_, err := c.Records(context.Background(), "spaceship")
	var se *netx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.NotErrorIs(t, err, common.ErrUnavailable)
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := New(url, nil, logging.Discard())
	assert.ErrorIs(t, c.Ping(context.Background()), common.ErrUnavailable)
}

func TestPingAndRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(shared.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, shared.HealthResponse{Status: "ok"})
	})
	mux.HandleFunc(shared.PathRecords, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, common.TypeProduct, r.URL.Query().Get("type"))
		writeJSON(w, http.StatusOK, shared.RecordsResponse{Records: []shared.StoredRecord{
			{Type: common.TypeProduct, ID: "p1", Payload: json.RawMessage(`{"id":"p1"}`)},
		}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL, ts.Client(), logging.Discard())
	require.NoError(t, c.Ping(context.Background()))

	_, err := c.Records(context.Background(), common.TypeProduct)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	c.SetToken("tok")
	recs, err := c.Records(context.Background(), common.TypeProduct)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p1", recs[0].ID)
}
