package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/visit-recap/internal/common"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId"`
}

// ErrorBody describes one error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// writeFailure maps a recap error to a response. Bad backend data is the
// backend's fault (502); everything else is ours (500).
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("recap request failed",
		"error", err,
		"request_id", RequestIDFromContext(r.Context()))

	switch {
	case errors.Is(err, common.ErrUpstreamData):
		writeError(w, r, http.StatusBadGateway, "upstream_data", err.Error())
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads the body.
		writeError(w, r, http.StatusInternalServerError, "canceled", "request canceled")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal", err.Error())
	}
}
