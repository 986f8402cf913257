package table

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"validator.onebusaway.org/internal/models"
)

func stopTime(tripID string, seq int, row int64) models.StopTime {
	return models.StopTime{TripID: tripID, StopSequence: seq, CsvRowNumber: row}
}

func TestTableEntities(t *testing.T) {
	routes := []models.Route{{RouteID: "b"}, {RouteID: "a"}, {RouteID: "c"}}
	tbl := NewTable(routes)

	assert.Equal(t, 3, tbl.EntityCount())
	ids := []string{}
	for _, r := range tbl.Entities() {
		ids = append(ids, r.RouteID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "entities keep load order")

	var empty *Table[models.Route]
	assert.Equal(t, 0, empty.EntityCount())
	assert.Nil(t, empty.Entities())
}

func TestGroupByPreservesOrder(t *testing.T) {
	tbl := NewTable([]models.StopTime{
		stopTime("t2", 1, 2),
		stopTime("t1", 1, 3),
		stopTime("t2", 2, 4),
		stopTime("t1", 2, 5),
		stopTime("t2", 3, 6),
	})

	idx := GroupBy(tbl, func(s models.StopTime) string { return s.TripID })

	require.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"t2", "t1"}, idx.Keys())

	var rows []int64
	for _, st := range idx.Get("t2") {
		rows = append(rows, st.CsvRowNumber)
	}
	assert.Equal(t, []int64{2, 4, 6}, rows)
	assert.Nil(t, idx.Get("missing"))

	var seen []string
	for k, group := range idx.Groups() {
		seen = append(seen, k)
		assert.NotEmpty(t, group)
	}
	assert.Equal(t, []string{"t2", "t1"}, seen)
}

func TestGroupByDoesNotSort(t *testing.T) {
	tbl := NewTable([]models.StopTime{
		stopTime("t1", 3, 2),
		stopTime("t1", 1, 3),
	})
	idx := GroupBy(tbl, func(s models.StopTime) string { return s.TripID })

	group := idx.Get("t1")
	require.Len(t, group, 2)
	assert.Equal(t, 3, group[0].StopSequence)
	assert.Equal(t, 1, group[1].StopSequence)
}

func TestGroupsStopsEarly(t *testing.T) {
	tbl := NewTable([]models.StopTime{stopTime("a", 1, 2), stopTime("b", 1, 3), stopTime("c", 1, 4)})
	idx := GroupBy(tbl, func(s models.StopTime) string { return s.TripID })

	count := 0
	for range idx.Groups() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestRouteTableByRouteID(t *testing.T) {
	rt := NewRouteTable([]models.Route{
		{RouteID: "r1", RouteShortName: "first", CsvRowNumber: 2},
		{RouteID: "r2", CsvRowNumber: 3},
		{RouteID: "r1", RouteShortName: "second", CsvRowNumber: 4},
	})

	r, ok := rt.ByRouteID("r1")
	require.True(t, ok)
	assert.Equal(t, "first", r.RouteShortName)

	_, ok = rt.ByRouteID("nope")
	assert.False(t, ok)
	assert.Equal(t, 3, rt.EntityCount())
}

func TestStopTimeTableByTripIDConcurrent(t *testing.T) {
	st := NewStopTimeTable([]models.StopTime{
		stopTime("t1", 1, 2),
		stopTime("t1", 2, 3),
		stopTime("t2", 1, 4),
	})

	var wg sync.WaitGroup
	results := make([]*Index[string, models.StopTime], 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = st.ByTripID()
		}(i)
	}
	wg.Wait()

	for _, idx := range results {
		assert.Same(t, results[0], idx, "index is built once and shared")
	}
	assert.Len(t, results[0].Get("t1"), 2)
}

func TestFeed(t *testing.T) {
	f := NewFeed("empty", nil, nil)
	f.BuildIndexes()
	assert.Equal(t, map[string]int{"routes.txt": 0, "stop_times.txt": 0}, f.EntityCounts())
	assert.Equal(t, 0, f.StopTimes.ByTripID().Len())
}
