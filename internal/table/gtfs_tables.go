package table

import (
	"sync"

	"validator.onebusaway.org/internal/models"
)

// RouteTable holds routes.txt with a lookup on route_id.
type RouteTable struct {
	*Table[models.Route]
	byID map[string]int
}

// NewRouteTable builds a RouteTable. When route_id repeats, ByRouteID resolves to the first row.
func NewRouteTable(routes []models.Route) *RouteTable {
	byID := make(map[string]int, len(routes))
	for i, r := range routes {
		if _, exists := byID[r.RouteID]; !exists {
			byID[r.RouteID] = i
		}
	}
	return &RouteTable{Table: NewTable(routes), byID: byID}
}

func (rt *RouteTable) ByRouteID(id string) (models.Route, bool) {
	i, ok := rt.byID[id]
	if !ok {
		return models.Route{}, false
	}
	return rt.Entities()[i], true
}

// StopTimeTable holds stop_times.txt.
//
// The loader must keep the rows of each trip in ascending stop_sequence order; ByTripID
// relies on it and does not check it.
type StopTimeTable struct {
	*Table[models.StopTime]

	once     sync.Once
	byTripID *Index[string, models.StopTime]
}

func NewStopTimeTable(stopTimes []models.StopTime) *StopTimeTable {
	return &StopTimeTable{Table: NewTable(stopTimes)}
}

// ByTripID groups stop times by trip_id. The index is built on first call and shared afterwards.
func (st *StopTimeTable) ByTripID() *Index[string, models.StopTime] {
	st.once.Do(func() {
		st.byTripID = GroupBy(st.Table, func(s models.StopTime) string { return s.TripID })
	})
	return st.byTripID
}

// Feed is the snapshot of loaded tables a validation run works on.
type Feed struct {
	Name      string
	Routes    *RouteTable
	StopTimes *StopTimeTable
}

// NewFeed builds a Feed. Nil tables are replaced by empty ones.
func NewFeed(name string, routes *RouteTable, stopTimes *StopTimeTable) *Feed {
	if routes == nil {
		routes = NewRouteTable(nil)
	}
	if stopTimes == nil {
		stopTimes = NewStopTimeTable(nil)
	}
	return &Feed{Name: name, Routes: routes, StopTimes: stopTimes}
}

// BuildIndexes builds every derived index up front so that validators only ever read.
func (f *Feed) BuildIndexes() {
	f.StopTimes.ByTripID()
}

// EntityCounts returns the number of rows per GTFS file name.
func (f *Feed) EntityCounts() map[string]int {
	return map[string]int{
		"routes.txt":     f.Routes.EntityCount(),
		"stop_times.txt": f.StopTimes.EntityCount(),
	}
}
