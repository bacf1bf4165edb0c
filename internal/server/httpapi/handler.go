package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

// maxBodyBytes bounds a sync request.
const maxBodyBytes = 32 << 20

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shared.HealthResponse{Status: "ok"})
}

func (s *HTTPServer) token(w http.ResponseWriter, r *http.Request) {
	var req shared.TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeErr(w, "malformed request", http.StatusBadRequest)
		return
	}

	token, ttl, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		code, msg := statusOf(err)
		if code >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "login failed", "username", req.Username, "error", err)
		} else {
			s.logger.Info(r.Context(), "login rejected", "username", req.Username)
		}
		writeErr(w, msg, code)
		return
	}

	writeJSON(w, http.StatusOK, shared.TokenResponse{AccessToken: token, ExpiresIn: int64(ttl.Seconds())})
}

func (s *HTTPServer) pushBatch(w http.ResponseWriter, r *http.Request) {
	var req shared.SyncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeErr(w, "malformed batch", http.StatusBadRequest)
		return
	}

	resp, err := s.batches.Push(r.Context(), UserIDFrom(r.Context()), req)
	if err != nil {
		s.logger.Error(r.Context(), "sync failed", "error", err)
		code, msg := statusOf(err)
		writeErr(w, msg, code)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.batches.Records(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		code, msg := statusOf(err)
		if code >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "list records failed", "error", err)
		}
		writeErr(w, msg, code)
		return
	}

	writeJSON(w, http.StatusOK, shared.RecordsResponse{Records: recs})
}
