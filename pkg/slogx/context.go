package slogx

import (
	"context"
	"log/slog"
)

type (
	loggerKey  struct{}
	requestKey struct{}
)

// request collects attributes learned while a request is being served so
// the access log line can report them.
type request struct {
	userID string
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithUserID tags the request logger with the resolved caller and records
// the caller for the access log.
func WithUserID(ctx context.Context, userID string) context.Context {
	if req, ok := ctx.Value(requestKey{}).(*request); ok {
		req.userID = userID
	}
	return WithContext(ctx, FromContext(ctx).With("user_id", userID))
}
