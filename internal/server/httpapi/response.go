package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, shared.ErrorResponse{Error: msg})
}

// statusOf maps service errors to HTTP answers. Internal failures never
// leak their message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrorValidation),
		errors.Is(err, shared.ErrorUnknownRecordType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, shared.ErrorInvalidAuthheaderFormat):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, shared.ErrorAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, common.ErrInternal.Error()
}
