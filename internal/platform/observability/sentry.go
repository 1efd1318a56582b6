package observability

import (
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables error tracking when dsn is set. The returned flush func
// should run before the process exits and is safe to call when disabled.
func InitSentry(dsn, environment, release string) func() {
	if strings.TrimSpace(dsn) == "" {
		return func() {}
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		SendDefaultPII:   false,
	})
	if err != nil {
		slog.Error("failed to init sentry", slog.String("error", err.Error()))
		return func() {}
	}
	return func() { sentry.Flush(5 * time.Second) }
}

// CaptureError reports an unexpected error to sentry. It is a no-op when
// sentry was never initialised.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CurrentHub().CaptureException(err)
}
