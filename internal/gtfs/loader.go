package gtfs

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jamespfennell/gtfs/constants"
	"github.com/jamespfennell/gtfs/csv"
	"validator.onebusaway.org/internal/models"
	"validator.onebusaway.org/internal/table"
)

const (
	RoutesFile    constants.StaticFile = "routes.txt"
	StopTimesFile constants.StaticFile = "stop_times.txt"
)

// headerRowNumber is the csvRowNumber of the header line; data rows start right after it.
const headerRowNumber = 1

// ErrMissingFile is returned when a required file is absent from a feed.
var ErrMissingFile = errors.New("required GTFS file is missing")

// RowError reports a value the loader could not convert. It aborts the load: tables handed to
// validators only ever contain typed, well-formed rows.
type RowError struct {
	File   constants.StaticFile
	Row    int64
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s row %d: missing required value for %s", e.File, e.Row, e.Column)
	}
	return fmt.Sprintf("%s row %d: invalid %s %q: %v", e.File, e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// MissingColumnsError reports required columns absent from the header of a file.
type MissingColumnsError struct {
	File    constants.StaticFile
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns %s", e.File, strings.Join(e.Columns, ", "))
}

// fileOpener returns the content of a feed file, or ErrMissingFile.
type fileOpener func(file constants.StaticFile) (io.ReadCloser, error)

// LoadFeedFromZip parses a zipped GTFS feed held in memory.
func LoadFeedFromZip(name string, data []byte) (*table.Feed, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS zip: %w", err)
	}
	files := map[constants.StaticFile]*zip.File{}
	for _, f := range reader.File {
		// some producers nest the files in a single top-level directory
		files[constants.StaticFile(filepath.Base(f.Name))] = f
	}
	return loadTables(name, func(file constants.StaticFile) (io.ReadCloser, error) {
		f, ok := files[file]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, file)
		}
		return f.Open()
	})
}

// LoadFeedFromDir parses an unzipped GTFS feed stored in dir.
func LoadFeedFromDir(name, dir string) (*table.Feed, error) {
	return loadTables(name, func(file constants.StaticFile) (io.ReadCloser, error) {
		f, err := os.Open(filepath.Join(dir, string(file)))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, file)
		}
		return f, err
	})
}

func loadTables(name string, open fileOpener) (*table.Feed, error) {
	var routes []models.Route
	var stopTimes []models.StopTime

	for _, step := range []struct {
		file  constants.StaticFile
		parse func(*csv.File) error
	}{
		{RoutesFile, func(f *csv.File) (err error) {
			routes, err = parseRoutes(f)
			return err
		}},
		{StopTimesFile, func(f *csv.File) (err error) {
			stopTimes, err = parseStopTimes(f)
			return err
		}},
	} {
		if err := readFile(step.file, open, step.parse); err != nil {
			return nil, err
		}
	}

	sortStopTimes(stopTimes)
	return table.NewFeed(name, table.NewRouteTable(routes), table.NewStopTimeTable(stopTimes)), nil
}

func readFile(file constants.StaticFile, open fileOpener, parse func(*csv.File) error) error {
	content, err := open(file)
	if err != nil {
		return err
	}
	f, err := csv.New(file, stripBOM(content))
	if err != nil {
		content.Close()
		return fmt.Errorf("failed to read %q: %w", file, err)
	}
	parseErr := parse(f)
	closeErr := f.Close()
	if parseErr != nil {
		return parseErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to read %q: %w", file, closeErr)
	}
	return nil
}

func parseRoutes(f *csv.File) ([]models.Route, error) {
	idColumn := f.RequiredColumn("route_id")
	agencyIDColumn := f.OptionalColumn("agency_id")
	shortNameColumn := f.OptionalColumn("route_short_name")
	longNameColumn := f.OptionalColumn("route_long_name")
	routeTypeColumn := f.RequiredColumn("route_type")

	if missing := f.MissingRequiredColumns(); len(missing) > 0 {
		return nil, &MissingColumnsError{File: RoutesFile, Columns: missing}
	}

	var routes []models.Route
	row := int64(headerRowNumber)
	for f.NextRow() {
		row++
		route := models.Route{
			RouteID:        idColumn.Read(),
			AgencyID:       agencyIDColumn.Read(),
			RouteShortName: shortNameColumn.Read(),
			RouteLongName:  longNameColumn.Read(),
			CsvRowNumber:   row,
		}
		rawType := routeTypeColumn.Read()
		if err := missingValue(f, RoutesFile, row); err != nil {
			return nil, err
		}
		routeType, err := strconv.Atoi(rawType)
		if err != nil {
			return nil, &RowError{File: RoutesFile, Row: row, Column: "route_type", Value: rawType, Err: err}
		}
		route.RouteType = models.RouteType(routeType)
		routes = append(routes, route)
	}
	return routes, nil
}

func parseStopTimes(f *csv.File) ([]models.StopTime, error) {
	tripIDColumn := f.RequiredColumn("trip_id")
	stopSequenceColumn := f.RequiredColumn("stop_sequence")
	stopIDColumn := f.OptionalColumn("stop_id")
	arrivalColumn := f.OptionalColumn(models.ArrivalTimeFieldName)
	departureColumn := f.OptionalColumn(models.DepartureTimeFieldName)
	pickupColumn := f.OptionalColumn("pickup_type")
	dropOffColumn := f.OptionalColumn("drop_off_type")

	if missing := f.MissingRequiredColumns(); len(missing) > 0 {
		return nil, &MissingColumnsError{File: StopTimesFile, Columns: missing}
	}

	var stopTimes []models.StopTime
	row := int64(headerRowNumber)
	for f.NextRow() {
		row++
		stopTime := models.StopTime{
			TripID:       tripIDColumn.Read(),
			StopID:       stopIDColumn.Read(),
			CsvRowNumber: row,
		}
		rawSequence := stopSequenceColumn.Read()
		if err := missingValue(f, StopTimesFile, row); err != nil {
			return nil, err
		}

		sequence, err := strconv.Atoi(rawSequence)
		if err == nil && sequence < 0 {
			err = errors.New("must not be negative")
		}
		if err != nil {
			return nil, &RowError{File: StopTimesFile, Row: row, Column: "stop_sequence", Value: rawSequence, Err: err}
		}
		stopTime.StopSequence = sequence

		if stopTime.ArrivalTime, err = parseOptionalTime(arrivalColumn.Read()); err != nil {
			return nil, &RowError{File: StopTimesFile, Row: row, Column: models.ArrivalTimeFieldName, Value: arrivalColumn.Read(), Err: err}
		}
		if stopTime.DepartureTime, err = parseOptionalTime(departureColumn.Read()); err != nil {
			return nil, &RowError{File: StopTimesFile, Row: row, Column: models.DepartureTimeFieldName, Value: departureColumn.Read(), Err: err}
		}
		if stopTime.PickupType, err = parsePickupDropOff(pickupColumn.Read()); err != nil {
			return nil, &RowError{File: StopTimesFile, Row: row, Column: "pickup_type", Value: pickupColumn.Read(), Err: err}
		}
		if stopTime.DropOffType, err = parsePickupDropOff(dropOffColumn.Read()); err != nil {
			return nil, &RowError{File: StopTimesFile, Row: row, Column: "drop_off_type", Value: dropOffColumn.Read(), Err: err}
		}

		stopTimes = append(stopTimes, stopTime)
	}
	return stopTimes, nil
}

// missingValue turns the required columns left empty on the current row into a RowError.
func missingValue(f *csv.File, file constants.StaticFile, row int64) error {
	if missing := f.MissingRowKeys(); len(missing) > 0 {
		return &RowError{File: file, Row: row, Column: missing[0]}
	}
	return nil
}

// parseOptionalTime returns nil for an empty value: the time is absent, not midnight.
func parseOptionalTime(raw string) (*models.GtfsTime, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := models.ParseGtfsTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePickupDropOff(raw string) (models.PickupDropOff, error) {
	if raw == "" {
		return models.PickupDropOffAllowed, nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if _, ok := models.LookupEnum(models.PickupDropOffValues, code); !ok {
		return 0, fmt.Errorf("unknown code %d", code)
	}
	return models.PickupDropOff(code), nil
}

// sortStopTimes orders stop times by trip, in first-seen trip order, then by stop_sequence.
// Stop time tables rely on this order.
func sortStopTimes(stopTimes []models.StopTime) {
	tripOrder := make(map[string]int)
	for _, st := range stopTimes {
		if _, ok := tripOrder[st.TripID]; !ok {
			tripOrder[st.TripID] = len(tripOrder)
		}
	}
	slices.SortStableFunc(stopTimes, func(a, b models.StopTime) int {
		if d := tripOrder[a.TripID] - tripOrder[b.TripID]; d != 0 {
			return d
		}
		return a.StopSequence - b.StopSequence
	})
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type bomStrippingReader struct {
	*bufio.Reader
	io.Closer
}

// stripBOM drops a leading UTF-8 byte order mark, which would otherwise become part of the
// first header name.
func stripBOM(rc io.ReadCloser) io.ReadCloser {
	r := bufio.NewReader(rc)
	if prefix, err := r.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = r.Discard(len(utf8BOM))
	}
	return bomStrippingReader{Reader: r, Closer: rc}
}
