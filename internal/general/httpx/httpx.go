// Package httpx holds the JSON response and request plumbing shared by the HTTP handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON encodes data with the given status. Encoding happens before the header is
// written so a marshal failure can still become a 500.
func JSON(ctx context.Context, log *logger.Logger, w http.ResponseWriter, status int, data any) {
	buf := []byte("{}")
	if data != nil {
		var err error
		buf, err = json.Marshal(data)
		if err != nil {
			log.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// Fail writes an error response with an explicit status.
func Fail(ctx context.Context, log *logger.Logger, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	switch {
	case status >= 500:
		action = "http_internal_error"
	case status == http.StatusBadRequest:
		action = "validation_failed"
	case status == http.StatusUnsupportedMediaType:
		action = "unsupported_media_type"
	}
	log.Error(ctx, action, msg, err, nil)
	JSON(ctx, log, w, status, ErrorBody{Error: msg})
}

// Error maps a service error onto its HTTP status by kind. Internal errors hide
// their message from the client.
func Error(ctx context.Context, log *logger.Logger, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)

	msg := err.Error()
	var tagged *apperr.Error
	if errors.As(err, &tagged) {
		msg = tagged.Msg
	}
	if status >= 500 {
		msg = "internal error"
		log.Error(ctx, "http_internal_error", "Request failed", err, nil)
	} else {
		log.Debug(ctx, "request_rejected", msg, map[string]any{"code": apperr.CodeOf(err)})
	}
	JSON(ctx, log, w, status, ErrorBody{Error: msg, Code: apperr.CodeOf(err)})
}

// StatusOf is the HTTP status used for an error kind.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindInvalidState, apperr.KindInsufficientSeats, apperr.KindDuplicate,
		apperr.KindEditWindowExpired, apperr.KindBelowBookedSeats:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a strict JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func Decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) (int, error) {
	if r.ContentLength == 0 && allowEmpty {
		return 0, nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return http.StatusUnsupportedMediaType, errors.New("Content-Type must be application/json")
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return http.StatusRequestEntityTooLarge, errors.New("request body too large")
		}
		if allowEmpty && errors.Is(err, io.EOF) {
			return 0, nil
		}
		return http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err)
	}
	return 0, nil
}

// PageFrom reads ?limit= and ?offset=.
func PageFrom(r *http.Request) (ports.Page, error) {
	var p ports.Page
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apperr.Invalid("limit must be an integer")
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apperr.Invalid("offset must be an integer")
		}
		p.Offset = n
	}
	return p.Normalize(), nil
}

// RequestID takes X-Request-ID from the request or mints one, stores it in the
// logging context and echoes it back.
func RequestID(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(log.WithRequestID(r.Context(), reqID)))
	})
}

// Health answers GET /health.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = fmt.Fprintf(w, `{"status":"ok","service":%q}`, service)
	}
}
