package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGtfsTime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  GtfsTime
		expectErr bool
	}{
		{"Morning", "08:00:00", NewGtfsTime(8, 0, 0), false},
		{"Single digit hour", "7:59:30", NewGtfsTime(7, 59, 30), false},
		{"After midnight", "25:10:05", NewGtfsTime(25, 10, 5), false},
		{"Whitespace", " 12:00:01 ", NewGtfsTime(12, 0, 1), false},
		{"Missing seconds", "08:00", GtfsTime{}, true},
		{"Minutes out of range", "08:60:00", GtfsTime{}, true},
		{"Seconds out of range", "08:00:75", GtfsTime{}, true},
		{"Letters", "ab:cd:ef", GtfsTime{}, true},
		{"Negative", "-1:00:00", GtfsTime{}, true},
		{"Empty", "", GtfsTime{}, true},
		{"Plus sign on hours", "+8:00:00", GtfsTime{}, true},
		{"Plus sign on minutes", "08:+5:00", GtfsTime{}, true},
		{"Plus sign on seconds", "08:00:+5", GtfsTime{}, true},
		{"Inner space", "08: 5:00", GtfsTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGtfsTime(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGtfsTimeOrdering(t *testing.T) {
	early := NewGtfsTime(7, 59, 0)
	late := NewGtfsTime(8, 0, 0)
	afterMidnight := NewGtfsTime(24, 5, 0)

	assert.True(t, early.IsBefore(late))
	assert.False(t, late.IsBefore(early))
	assert.False(t, late.IsBefore(late))
	assert.True(t, afterMidnight.IsAfter(late), "times past 24:00 must not wrap")
	assert.Equal(t, -1, early.Compare(late))
	assert.Equal(t, 0, late.Compare(NewGtfsTime(8, 0, 0)))
	assert.Equal(t, 1, afterMidnight.Compare(early))
}

func TestGtfsTimeString(t *testing.T) {
	assert.Equal(t, "08:00:00", NewGtfsTime(8, 0, 0).String())
	assert.Equal(t, "25:01:09", NewGtfsTime(25, 1, 9).String())
	assert.Equal(t, 90061, NewGtfsTime(25, 1, 1).SecondsSinceMidnight())

	text, err := NewGtfsTime(7, 59, 0).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "07:59:00", string(text))

	var parsed GtfsTime
	require.NoError(t, parsed.UnmarshalText([]byte("26:00:00")))
	assert.Equal(t, 26, parsed.Hour())
}

func TestEnumTables(t *testing.T) {
	v, ok := LookupEnum(PickupDropOffValues, 2)
	require.True(t, ok)
	assert.Equal(t, "MUST_PHONE", v.Name)

	_, ok = LookupEnum(PickupDropOffValues, 4)
	assert.False(t, ok)

	assert.Equal(t, "ON_REQUEST_TO_DRIVER", PickupDropOffOnRequestToDriver.String())
	assert.Equal(t, "BUS", RouteType(3).String())
	assert.Equal(t, "UNRECOGNIZED", RouteType(700).String())

	for i, v := range PickupDropOffValues {
		assert.Equal(t, i, v.Value, "pickup/drop-off codes are dense and ordered")
	}
}

func TestStopTimeOptionalTimes(t *testing.T) {
	arrival := NewGtfsTime(8, 0, 0)
	st := StopTime{TripID: "t1", ArrivalTime: &arrival}
	assert.True(t, st.HasArrivalTime())
	assert.False(t, st.HasDepartureTime())

	zero := NewGtfsTime(0, 0, 0)
	st.DepartureTime = &zero
	assert.True(t, st.HasDepartureTime(), "00:00:00 is a present time, not an absent one")
}
