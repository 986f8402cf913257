package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"validator.onebusaway.org/internal/middleware"
)

// maxUploadSize caps the GTFS zip accepted by POST /v1/validate.
const maxUploadSize = 512 << 20

// Routes returns the application's HTTP handler.
//
//   - GET  /v1/healthcheck           service status and number of configured feeds
//   - GET  /metrics                  Prometheus exposition, cached for 10s
//   - GET  /v1/feeds/:name/notices   last validation result of a configured feed
//   - POST /v1/validate?name=        validates the GTFS zip sent as request body
//
// Every route goes through the Sentry and security header middlewares. ctx stops the metrics
// cache refresh.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))
	router.HandlerFunc(http.MethodGet, "/v1/feeds/:name/notices", app.feedNoticesHandler)
	router.Handler(http.MethodPost, "/v1/validate", middleware.MaxBytes(maxUploadSize)(http.HandlerFunc(app.validateHandler)))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.errorResponse(w, http.StatusNotFound, "the requested resource could not be found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.errorResponse(w, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
	})

	handler := middleware.SentryMiddleware(router)
	return middleware.SecurityHeaders(handler)
}
