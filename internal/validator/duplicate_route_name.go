package validator

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"validator.onebusaway.org/internal/models"
	"validator.onebusaway.org/internal/notice"
	"validator.onebusaway.org/internal/table"
)

const DuplicateRouteNameValidatorName = "duplicate_route_name"

// DuplicateRouteNameValidator checks that the combination of route_long_name,
// route_short_name and route_type is unique within an agency.
type DuplicateRouteNameValidator struct {
	routes *table.RouteTable
}

func NewDuplicateRouteNameValidator(routes *table.RouteTable) *DuplicateRouteNameValidator {
	return &DuplicateRouteNameValidator{routes: routes}
}

// routeKey fingerprints the fields that must be unique per agency.
//
// Two routes with the same key are reported as duplicates without comparing the fields
// themselves; a 64-bit collision between different routes is accepted as a false positive.
func routeKey(route models.Route) uint64 {
	var routeType [4]byte
	binary.BigEndian.PutUint32(routeType[:], uint32(int32(route.RouteType)))

	h := xxhash.New()
	_, _ = h.WriteString(route.RouteLongName)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(route.RouteShortName)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(routeType[:])
	_, _ = h.WriteString(route.AgencyID)
	return h.Sum64()
}

func (v *DuplicateRouteNameValidator) Validate(notices *notice.Container) {
	firstByKey := make(map[uint64]models.Route, v.routes.EntityCount())
	for _, route := range v.routes.Entities() {
		key := routeKey(route)
		if first, seen := firstByKey[key]; seen {
			// later duplicates are always reported against the first occurrence
			notices.Add(newDuplicateRouteNameNotice(first, route))
			continue
		}
		firstByKey[key] = route
	}
}

// DuplicateRouteNameNotice describes two routes of the same agency with the same long name,
// short name and route type.
//
// Severity: WARNING
type DuplicateRouteNameNotice struct {
	CsvRowNumber1  int64  `json:"csvRowNumber1"`
	RouteID1       string `json:"routeId1"`
	CsvRowNumber2  int64  `json:"csvRowNumber2"`
	RouteID2       string `json:"routeId2"`
	RouteShortName string `json:"routeShortName"`
	RouteLongName  string `json:"routeLongName"`
	RouteTypeValue int    `json:"routeTypeValue"`
	AgencyID       string `json:"agencyId"`
}

func newDuplicateRouteNameNotice(route1, route2 models.Route) DuplicateRouteNameNotice {
	return DuplicateRouteNameNotice{
		CsvRowNumber1:  route1.CsvRowNumber,
		RouteID1:       route1.RouteID,
		CsvRowNumber2:  route2.CsvRowNumber,
		RouteID2:       route2.RouteID,
		RouteShortName: route1.RouteShortName,
		RouteLongName:  route1.RouteLongName,
		RouteTypeValue: route1.RouteTypeValue(),
		AgencyID:       route1.AgencyID,
	}
}

func (DuplicateRouteNameNotice) Code() string { return "duplicate_route_name" }

func (DuplicateRouteNameNotice) Severity() notice.SeverityLevel { return notice.SeverityWarning }
