package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"zenledger/internal/assistant"
	"zenledger/internal/core"
	applog "zenledger/internal/log"
	"zenledger/internal/snapshot"
)

// errBadRequest marks request parsing failures.
var errBadRequest = errors.New("bad request")

// validationErrors map to 400. They are safe to echo to the client.
var validationErrors = []error{
	errBadRequest,
	core.ErrEmptyName,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidKind,
	core.ErrInvalidPolarity,
	core.ErrInvalidBudget,
	core.ErrInvalidSort,
	core.ErrMissingAccount,
	core.ErrMissingDestination,
	core.ErrUnknownAccount,
	core.ErrUnknownTag,
	core.ErrUnknownSubTag,
	core.ErrDuplicateSubTag,
	core.ErrTagPolarity,
	core.ErrTooManyImages,
	snapshot.ErrMalformed,
	snapshot.ErrInvalid,
	assistant.ErrEmptyInput,
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, core.ErrNotFound) {
		return http.StatusNotFound
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError logs err and writes it as {"error": ...}. Internal errors are
// not echoed.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, nil)
		msg = http.StatusText(status)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.FieldOperation, op, applog.FieldError, msg)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeAttachment sends body as a file download.
func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
