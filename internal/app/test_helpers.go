package app

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"validator.onebusaway.org/internal/config"
)

func newTestApplication(t *testing.T, feeds ...config.FeedSource) *Application {
	t.Helper()

	cfg := config.NewConfig(4000, "testing", feeds)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := New(cfg, logger, &http.Client{Timeout: 5 * time.Second}, "test-version", "")
	app.GtfsService.MaxRetries = 0
	return app
}

// buildFeedZip zips a feed made of routes and stopTimes CSV content.
func buildFeedZip(t *testing.T, routes, stopTimes string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{"routes.txt": routes, "stop_times.txt": stopTimes} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

const (
	duplicateRoutes = "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
		"r1,agency,1,Downtown,3\n" +
		"r2,agency,1,Downtown,3\n"
	orderedStopTimes = "trip_id,arrival_time,departure_time,stop_sequence\n" +
		"t1,08:00:00,08:00:00,1\n" +
		"t1,08:10:00,08:10:00,2\n"
)
