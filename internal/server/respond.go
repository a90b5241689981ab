package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errNoOverlay is returned by map endpoints when no GeoJSON is configured.
var errNoOverlay = errors.New("no region overlay configured")

// requestError marks client input errors.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...interface{}) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, ErrorResponse{
		Code:    http.StatusText(statusCode),
		Message: err.Error(),
	})
}

// writeAppError maps domain errors to status codes. Anything unrecognised
// is logged and masked as 500.
func writeAppError(w http.ResponseWriter, logger logging.Logger, err error) {
	var reqErr *requestError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, errNoOverlay):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, err)
	default:
		logger.Error("request failed", logging.Err(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

// decodeJSON reads one JSON value into dst. An empty body is allowed when
// optional is set.
func decodeJSON(r *http.Request, dst interface{}, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("invalid request body: %v", err)
	}
	return nil
}
