package app

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"
	"validator.onebusaway.org/internal/gtfs"
	"validator.onebusaway.org/internal/validator"
)

// HealthStatus is the body of GET /v1/healthcheck.
//
// Ready is true when at least one feed is configured; the handler answers 500 otherwise so
// that orchestrators keep the instance out of rotation.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Feeds       int    `json:"feeds"`
	Ready       bool   `json:"ready"`
}

func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	numFeeds := len(app.ConfigService.Config.GetFeeds())
	ready := numFeeds > 0

	status := HealthStatus{
		Status:      "available",
		Environment: app.ConfigService.Config.Env,
		Version:     app.Version,
		Feeds:       numFeeds,
		Ready:       ready,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, status)
}

// feedNoticesHandler returns the last validation result of a configured feed.
func (app *Application) feedNoticesHandler(w http.ResponseWriter, r *http.Request) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("name")

	if _, ok := app.ConfigService.Config.GetFeed(name); !ok {
		app.errorResponse(w, http.StatusNotFound, "unknown feed "+name)
		return
	}
	result, ok := app.ValidationService.Results.Get(name)
	if !ok {
		app.errorResponse(w, http.StatusNotFound, "feed "+name+" has not been validated yet")
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

// validateHandler validates the GTFS zip sent as request body and returns the result.
// ?name= (default "upload") only labels the response and logs; it may not be the name of a
// configured feed. Uploaded results are not kept.
func (app *Application) validateHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	if _, ok := app.ConfigService.Config.GetFeed(name); ok {
		app.errorResponse(w, http.StatusConflict, "feed "+name+" is configured and validated by the server")
		return
	}

	var body bytes.Buffer
	if _, err := io.Copy(&body, r.Body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			app.errorResponse(w, http.StatusRequestEntityTooLarge, "feed exceeds the upload limit")
			return
		}
		app.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	feed, err := gtfs.LoadFeedFromZip(name, body.Bytes())
	if err != nil {
		app.Logger.Info("Rejected uploaded feed", "feed", name, "error", err)
		app.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := app.ValidationService.ValidateUpload(r.Context(), feed)
	if err != nil {
		var execErr *validator.ExecutionError
		if errors.As(err, &execErr) {
			app.errorResponse(w, http.StatusInternalServerError, "validation failed: "+execErr.Error())
			return
		}
		// the client went away or the server is shutting down
		app.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		app.Logger.Error("Failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (app *Application) errorResponse(w http.ResponseWriter, status int, message string) {
	app.writeJSON(w, status, map[string]string{"error": message})
}
