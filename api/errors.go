package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/opptakhq/opptak/pkg/apperr"
)

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response", slog.Any("err", err))
	}
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError is the single place handler errors become HTTP responses.
func respondError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("internal error", slog.Any("err", err))
	}
	writeJSON(w, errorResponse{Message: apperr.Message(err)}, statusForKind(kind))
}

// paramError formats one parameter violation for the 400 error list.
func paramError(location, param, value, msg string) string {
	return fmt.Sprintf("%s[%s](Value=%s): %s", location, param, value, msg)
}

func respondParamErrors(w http.ResponseWriter, errs []string) {
	writeJSON(w, errorResponse{Message: "invalid parameters", Errors: errs}, http.StatusBadRequest)
}

// callerID extracts the membership number placed in the context by the JWT
// middleware.
func callerID(r *http.Request) (int64, error) {
	v := r.Context().Value(CtxUserID)
	if v == nil {
		return 0, apperr.New(apperr.KindUnauthorized, "missing caller identity")
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, apperr.New(apperr.KindUnauthorized, "missing caller identity")
	}
	return id, nil
}
