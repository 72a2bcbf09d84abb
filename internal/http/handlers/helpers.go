package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vinkenoogm/ks-bear/internal/metrics"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
	"github.com/vmihailenco/msgpack/v5"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey    ContextKey = "dryRun"
	RequestIDKey ContextKey = "requestID"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"

	maxBodyBytes = 1 << 20
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// RequestIDFromContext returns the id assigned to the request, or "" outside the request id middleware.
func RequestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, ContentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// Respond writes v as JSON, or as MessagePack when the client asks for it in Accept.
func Respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		buf         bytes.Buffer
		contentType = ContentTypeJSON
		err         error
	)
	if wantsMsgpack(r) {
		contentType = ContentTypeMsgpack
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.UseCompactInts(true)
		err = enc.Encode(v)
	} else {
		err = json.NewEncoder(&buf).Encode(v)
	}
	if err != nil {
		log.Error("Failed to encode response", "error", err, "content_type", contentType)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warn("Failed to write response", "error", err)
	}
}

// RespondError writes an ErrorResponse with the given status and counts it.
func RespondError(w http.ResponseWriter, r *http.Request, m metrics.Metrics, status int, message string) {
	if m != nil {
		m.IncRequestErrors(r.Pattern, status)
	}
	Respond(w, r, status, ErrorResponse{Error: message, RequestID: RequestIDFromContext(r)})
}

// RespondStoreError maps a tracker error onto an HTTP status.
func RespondStoreError(w http.ResponseWriter, r *http.Request, m metrics.Metrics, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err, "pattern", r.Pattern, "request_id", RequestIDFromContext(r))
		RespondError(w, r, m, status, http.StatusText(status))
		return
	}
	log.Warn("Request rejected", "error", err, "status", status, "pattern", r.Pattern)
	RespondError(w, r, m, status, err.Error())
}

// StatusForError returns the HTTP status for an error returned by the tracker store.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, tracker.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
