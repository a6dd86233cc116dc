package http

import (
	"net/http"

	"github.com/goccy/go-json"

	"ledger/internal/core"
	"ledger/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a domain error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case core.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case core.IsDuplicateName(err):
		return http.StatusConflict, "duplicate_name"
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.LogError(r.Context(), "Request failed", err, r.Method+" "+r.Pattern,
			log.NewFields().With(log.FieldRequestID, log.RequestID(r.Context())))
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
