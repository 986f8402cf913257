package models

// Route is one row of routes.txt.
//
// Routes are immutable once loaded. CsvRowNumber is the line of the row in the
// source file (the header is line 1), so notices can point back at the input.
type Route struct {
	RouteID        string
	AgencyID       string
	RouteShortName string
	RouteLongName  string
	RouteType      RouteType
	CsvRowNumber   int64
}

// RouteTypeValue returns the numeric route_type code.
func (r Route) RouteTypeValue() int {
	return int(r.RouteType)
}

// StopTime is one row of stop_times.txt.
//
// ArrivalTime and DepartureTime are nil when the column is empty in the source row.
// An absent time is not the same as 00:00:00.
type StopTime struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   *GtfsTime
	DepartureTime *GtfsTime
	PickupType    PickupDropOff
	DropOffType   PickupDropOff
	CsvRowNumber  int64
}

func (st StopTime) HasArrivalTime() bool {
	return st.ArrivalTime != nil
}

func (st StopTime) HasDepartureTime() bool {
	return st.DepartureTime != nil
}

// Column names referenced by notices.
const (
	ArrivalTimeFieldName   = "arrival_time"
	DepartureTimeFieldName = "departure_time"
)
