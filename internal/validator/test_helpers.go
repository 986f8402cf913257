package validator

import (
	"io"
	"log/slog"
	"testing"

	"validator.onebusaway.org/internal/models"
	"validator.onebusaway.org/internal/notice"
	"validator.onebusaway.org/internal/table"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gtfsTime parses s or fails the test. An empty string yields nil (absent time).
func gtfsTime(t *testing.T, s string) *models.GtfsTime {
	t.Helper()
	if s == "" {
		return nil
	}
	parsed, err := models.ParseGtfsTime(s)
	if err != nil {
		t.Fatalf("invalid time fixture %q: %v", s, err)
	}
	return &parsed
}

func newStopTime(t *testing.T, row int64, tripID string, seq int, arrival, departure string) models.StopTime {
	t.Helper()
	return models.StopTime{
		TripID:        tripID,
		StopSequence:  seq,
		ArrivalTime:   gtfsTime(t, arrival),
		DepartureTime: gtfsTime(t, departure),
		CsvRowNumber:  row,
	}
}

func newRoute(row int64, id, agency, short, long string, routeType int) models.Route {
	return models.Route{
		RouteID:        id,
		AgencyID:       agency,
		RouteShortName: short,
		RouteLongName:  long,
		RouteType:      models.RouteType(routeType),
		CsvRowNumber:   row,
	}
}

func validate(v Validator) []notice.Notice {
	container := notice.NewContainer()
	v.Validate(container)
	return container.Notices()
}

func newTestFeed(routes []models.Route, stopTimes []models.StopTime) *table.Feed {
	return table.NewFeed("test", table.NewRouteTable(routes), table.NewStopTimeTable(stopTimes))
}
