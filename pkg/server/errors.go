package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidTrace, errs.ErrCodeCyclicTrace,
		errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidTheme, errs.ErrCodeInvalidViz,
		errs.ErrCodeInvalidTraceID:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeTraceNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeNetwork:
		return http.StatusBadGateway
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrCodeRenderTarget, errs.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error     string    `json:"error"`
	Code      errs.Code `json:"code,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", RequestID(r.Context()))
		msg = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:     msg,
		Code:      errs.GetCode(err),
		RequestID: RequestID(r.Context()),
	})
}
