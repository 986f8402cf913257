package gtfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"validator.onebusaway.org/internal/models"
)

func TestLoadFeedFromZip(t *testing.T) {
	feed, err := LoadFeedFromZip("metro", testFeedZip(t))
	require.NoError(t, err)

	assert.Equal(t, "metro", feed.Name)
	require.Equal(t, 2, feed.Routes.EntityCount())
	assert.Equal(t, models.Route{
		RouteID:        "r1",
		AgencyID:       "agency",
		RouteShortName: "1",
		RouteLongName:  "Downtown",
		RouteType:      3,
		CsvRowNumber:   2,
	}, feed.Routes.Entities()[0])
	assert.Equal(t, int64(3), feed.Routes.Entities()[1].CsvRowNumber)

	stopTimes := feed.StopTimes.Entities()
	require.Len(t, stopTimes, 3)

	// t1 rows are grouped before t2, in stop_sequence order, keeping their file row numbers.
	assert.Equal(t, []string{"t1", "t1", "t2"}, []string{stopTimes[0].TripID, stopTimes[1].TripID, stopTimes[2].TripID})
	assert.Equal(t, []int64{2, 4, 3}, []int64{stopTimes[0].CsvRowNumber, stopTimes[1].CsvRowNumber, stopTimes[2].CsvRowNumber})

	second := stopTimes[1]
	assert.Equal(t, 2, second.StopSequence)
	assert.Equal(t, "s2", second.StopID)
	require.True(t, second.HasArrivalTime())
	assert.Equal(t, "07:59:00", second.ArrivalTime.String())
	assert.False(t, second.HasDepartureTime(), "empty departure_time is absent, not midnight")
	assert.Equal(t, models.PickupDropOffNotAvailable, second.PickupType)
	assert.Equal(t, models.PickupDropOffOnRequestToDriver, second.DropOffType)

	assert.Equal(t, models.PickupDropOffAllowed, stopTimes[2].PickupType, "empty pickup_type defaults to ALLOWED")
}

func TestLoadFeedSortsBySequence(t *testing.T) {
	data := buildZip(t, map[string]string{
		"routes.txt": "route_id,route_type\nr1,3\n",
		"stop_times.txt": "trip_id,stop_sequence,arrival_time,departure_time\n" +
			"t1,10,08:20:00,08:20:00\n" +
			"t1,2,08:00:00,08:00:00\n" +
			"t1,5,08:10:00,08:10:00\n",
	})

	feed, err := LoadFeedFromZip("sorted", data)
	require.NoError(t, err)

	var sequences []int
	for _, st := range feed.StopTimes.ByTripID().Get("t1") {
		sequences = append(sequences, st.StopSequence)
	}
	assert.Equal(t, []int{2, 5, 10}, sequences)
}

func TestLoadFeedFromZipNestedDirectory(t *testing.T) {
	data := buildZip(t, map[string]string{
		"feed/routes.txt":     "route_id,route_type\nr1,3\n",
		"feed/stop_times.txt": "trip_id,stop_sequence\n",
	})

	feed, err := LoadFeedFromZip("nested", data)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Routes.EntityCount())
	assert.Equal(t, 0, feed.StopTimes.EntityCount())
}

func TestLoadFeedStripsByteOrderMark(t *testing.T) {
	data := buildZip(t, map[string]string{
		"routes.txt":     "\xEF\xBB\xBFroute_id,route_type\nr1,3\n",
		"stop_times.txt": "\xEF\xBB\xBFtrip_id,stop_sequence\nt1,1\n",
	})

	feed, err := LoadFeedFromZip("bom", data)
	require.NoError(t, err)
	assert.Equal(t, "r1", feed.Routes.Entities()[0].RouteID)
	assert.Equal(t, "t1", feed.StopTimes.Entities()[0].TripID)
}

func TestLoadFeedFromDir(t *testing.T) {
	dir := writeFeedDir(t, map[string]string{"routes.txt": testRoutes, "stop_times.txt": testStopTimes})

	feed, err := LoadFeedFromDir("dir", dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"routes.txt": 2, "stop_times.txt": 3}, feed.EntityCounts())
}

func TestLoadFeedErrors(t *testing.T) {
	validStopTimes := "trip_id,stop_sequence\nt1,1\n"
	validRoutes := "route_id,route_type\nr1,3\n"

	tests := []struct {
		name      string
		files     map[string]string
		rowError  *RowError
		errTarget error
	}{
		{
			name:      "Missing routes.txt",
			files:     map[string]string{"stop_times.txt": validStopTimes},
			errTarget: ErrMissingFile,
		},
		{
			name:      "Missing stop_times.txt",
			files:     map[string]string{"routes.txt": validRoutes},
			errTarget: ErrMissingFile,
		},
		{
			name:     "Non numeric route_type",
			files:    map[string]string{"routes.txt": "route_id,route_type\nr1,3\nr2,bus\n", "stop_times.txt": validStopTimes},
			rowError: &RowError{File: RoutesFile, Row: 3, Column: "route_type", Value: "bus"},
		},
		{
			name:     "Empty route_id",
			files:    map[string]string{"routes.txt": "route_id,route_type\n,3\n", "stop_times.txt": validStopTimes},
			rowError: &RowError{File: RoutesFile, Row: 2, Column: "route_id"},
		},
		{
			name:     "Negative stop_sequence",
			files:    map[string]string{"routes.txt": validRoutes, "stop_times.txt": "trip_id,stop_sequence\nt1,-1\n"},
			rowError: &RowError{File: StopTimesFile, Row: 2, Column: "stop_sequence", Value: "-1"},
		},
		{
			name:     "Malformed arrival_time",
			files:    map[string]string{"routes.txt": validRoutes, "stop_times.txt": "trip_id,stop_sequence,arrival_time\nt1,1,8:0\n"},
			rowError: &RowError{File: StopTimesFile, Row: 2, Column: "arrival_time", Value: "8:0"},
		},
		{
			name:     "Unknown pickup_type",
			files:    map[string]string{"routes.txt": validRoutes, "stop_times.txt": "trip_id,stop_sequence,pickup_type\nt1,1,7\n"},
			rowError: &RowError{File: StopTimesFile, Row: 2, Column: "pickup_type", Value: "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := LoadFeedFromZip("broken", buildZip(t, tt.files))

			assert.Nil(t, feed)
			require.Error(t, err)
			if tt.errTarget != nil {
				assert.True(t, errors.Is(err, tt.errTarget), "got %v", err)
			}
			if tt.rowError != nil {
				var rowErr *RowError
				require.ErrorAs(t, err, &rowErr)
				assert.Equal(t, tt.rowError.File, rowErr.File)
				assert.Equal(t, tt.rowError.Row, rowErr.Row)
				assert.Equal(t, tt.rowError.Column, rowErr.Column)
				assert.Equal(t, tt.rowError.Value, rowErr.Value)
			}
		})
	}
}

func TestLoadFeedMissingRequiredColumn(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		file    string
		columns []string
	}{
		{
			name: "routes without route_type",
			files: map[string]string{
				"routes.txt":     "route_id,route_short_name\nr1,1\n",
				"stop_times.txt": "trip_id,stop_sequence\n",
			},
			file:    "routes.txt",
			columns: []string{"route_type"},
		},
		{
			name: "stop times without trip_id and stop_sequence",
			files: map[string]string{
				"routes.txt":     "route_id,route_type\nr1,3\n",
				"stop_times.txt": "stop_id,arrival_time\ns1,08:00:00\n",
			},
			file:    "stop_times.txt",
			columns: []string{"trip_id", "stop_sequence"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFeedFromZip("columns", buildZip(t, tt.files))

			var colErr *MissingColumnsError
			require.ErrorAs(t, err, &colErr)
			assert.Equal(t, tt.file, string(colErr.File))
			assert.ElementsMatch(t, tt.columns, colErr.Columns)
			for _, c := range tt.columns {
				assert.ErrorContains(t, err, c)
			}
		})
	}
}

func TestLoadFeedFromZipInvalidArchive(t *testing.T) {
	_, err := LoadFeedFromZip("garbage", []byte("not a zip"))
	assert.ErrorContains(t, err, "failed to open GTFS zip")
}

func TestRowErrorMessage(t *testing.T) {
	err := &RowError{File: RoutesFile, Row: 4, Column: "route_type", Value: "x", Err: errors.New("bad")}
	assert.Equal(t, `routes.txt row 4: invalid route_type "x": bad`, err.Error())

	missing := &RowError{File: StopTimesFile, Row: 2, Column: "trip_id"}
	assert.Equal(t, "stop_times.txt row 2: missing required value for trip_id", missing.Error())
}
