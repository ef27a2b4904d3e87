package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
)

// ----- Public wire types -----

// ErrorObject is emitted only for error logs.
type ErrorObject struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Every line is a single JSON object:
//
//	{"timestamp":"...","level":"INFO","message":"...","service":"booking-service","action":"booking_approved",
//	 "hostname":"...","request_id":"...","ride_id":"...","booking_id":"...","details":{...}}

// ----- Logger -----

type Logger struct {
	service  string
	hostname string
	stack    bool
	handler  *slog.Logger
}

// New creates a structured logger for the given service writing to stdout at INFO.
func New(service string) *Logger {
	return NewWithWriter(service, os.Stdout, "info")
}

// NewWithWriter creates a structured logger writing JSON lines to w at the given level
// (debug | info | error). Unknown levels fall back to info.
func NewWithWriter(service string, w io.Writer, level string) *Logger {
	hn, err := os.Hostname()
	if err != nil || strings.TrimSpace(hn) == "" {
		hn = "unknown-hostname"
	}

	if strings.TrimSpace(service) == "" {
		service = "unknown-service"
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: renameAttrs,
	})

	return &Logger{
		service:  service,
		hostname: hn,
		stack:    ParseLevel(level) <= slog.LevelDebug,
		handler:  slog.New(h),
	}
}

// Discard returns a logger that drops every line.
func Discard() *Logger {
	return NewWithWriter("discard", io.Discard, "error")
}

// ParseLevel maps a textual level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// renameAttrs keeps the field names used by the log pipeline.
func renameAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
		a.Value = slog.StringValue(a.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// emit writes one line with the common fields.
func (l *Logger) emit(ctx context.Context, level slog.Level, action, msg string, details any, errObj *ErrorObject) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs,
		slog.String("service", l.service),
		slog.String("action", safeAction(action)),
		slog.String("hostname", l.hostname),
	)
	for _, kv := range []struct{ key, val string }{
		{"request_id", requestID(ctx)},
		{"ride_id", rideID(ctx)},
		{"booking_id", bookingID(ctx)},
	} {
		if kv.val != "" {
			attrs = append(attrs, slog.String(kv.key, kv.val))
		}
	}
	if details != nil {
		attrs = append(attrs, slog.Any("details", details))
	}
	if errObj != nil {
		attrs = append(attrs, slog.Any("error", errObj))
	}

	l.handler.LogAttrs(ctx, level, strings.TrimSpace(msg), attrs...)
}

// Debug writes a DEBUG line with optional details.
func (l *Logger) Debug(ctx context.Context, action, msg string, details any) {
	l.emit(ctx, slog.LevelDebug, action, msg, details, nil)
}

// Info writes an INFO line with optional details.
func (l *Logger) Info(ctx context.Context, action, msg string, details any) {
	l.emit(ctx, slog.LevelInfo, action, msg, details, nil)
}

// Error writes an ERROR line. The stack trace is attached at debug level only.
func (l *Logger) Error(ctx context.Context, action, msg string, err error, details any) {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}

	obj := &ErrorObject{Msg: strings.TrimSpace(err.Error())}
	if l.stack {
		obj.Stack = string(debug.Stack())
	}
	l.emit(ctx, slog.LevelError, action, msg, details, obj)
}

// ------------ Context helpers -------------

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "rideshare_request_id"
	ctxKeyRideID    ctxKey = "rideshare_ride_id"
	ctxKeyBookingID ctxKey = "rideshare_booking_id"
)

// WithRequestID returns a new context carrying request_id.
func (l *Logger) WithRequestID(ctx context.Context, reqID string) context.Context {
	return withValue(ctx, ctxKeyRequestID, reqID)
}

// WithRideID returns a new context carrying ride_id.
func (l *Logger) WithRideID(ctx context.Context, rideID string) context.Context {
	return withValue(ctx, ctxKeyRideID, rideID)
}

// WithBookingID returns a new context carrying booking_id.
func (l *Logger) WithBookingID(ctx context.Context, bookingID string) context.Context {
	return withValue(ctx, ctxKeyBookingID, bookingID)
}

// RequestID extracts request_id from ctx (if any).
func RequestID(ctx context.Context) string {
	return requestID(ctx)
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if strings.TrimSpace(v) == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func requestID(ctx context.Context) string { return stringValue(ctx, ctxKeyRequestID) }
func rideID(ctx context.Context) string    { return stringValue(ctx, ctxKeyRideID) }
func bookingID(ctx context.Context) string { return stringValue(ctx, ctxKeyBookingID) }

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

// ----- Small utilities -----

func safeAction(a string) string {
	a = strings.TrimSpace(a)
	if a == "" {
		return "unspecified"
	}
	return a
}
