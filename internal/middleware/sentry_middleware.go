package middleware

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

// SentryMiddleware recovers panics in next, reports them to Sentry and re-panics so the
// server still logs them. Each request gets its own hub, tagged with the route path and the
// feed query parameter when present.
func SentryMiddleware(next http.Handler) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: true,
		Timeout:         2 * time.Second,
	})

	tagged := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.Scope().SetTag("http.path", r.URL.Path)
			if feed := r.URL.Query().Get("name"); feed != "" {
				hub.Scope().SetTag("feed", feed)
			}
		}
		next.ServeHTTP(w, r)
	})

	return sentryHandler.Handle(tagged)
}
