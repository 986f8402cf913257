package models

// EnumValue is one symbolic name of a GTFS enumerated column and its numeric code.
type EnumValue struct {
	Name  string
	Value int
}

// PickupDropOff is the value of pickup_type and drop_off_type in stop_times.txt.
type PickupDropOff int

const (
	PickupDropOffAllowed           PickupDropOff = 0
	PickupDropOffNotAvailable      PickupDropOff = 1
	PickupDropOffMustPhone         PickupDropOff = 2
	PickupDropOffOnRequestToDriver PickupDropOff = 3
)

// PickupDropOffValues lists the codes accepted for pickup_type and drop_off_type.
var PickupDropOffValues = []EnumValue{
	{Name: "ALLOWED", Value: int(PickupDropOffAllowed)},
	{Name: "NOT_AVAILABLE", Value: int(PickupDropOffNotAvailable)},
	{Name: "MUST_PHONE", Value: int(PickupDropOffMustPhone)},
	{Name: "ON_REQUEST_TO_DRIVER", Value: int(PickupDropOffOnRequestToDriver)},
}

// RouteType is the value of route_type in routes.txt.
type RouteType int

// RouteTypeValues lists the basic route_type codes.
// Extended route types (100-1702) are accepted by the loader but not named here.
var RouteTypeValues = []EnumValue{
	{Name: "LIGHT_RAIL", Value: 0},
	{Name: "SUBWAY", Value: 1},
	{Name: "RAIL", Value: 2},
	{Name: "BUS", Value: 3},
	{Name: "FERRY", Value: 4},
	{Name: "CABLE_TRAM", Value: 5},
	{Name: "AERIAL_LIFT", Value: 6},
	{Name: "FUNICULAR", Value: 7},
	{Name: "TROLLEYBUS", Value: 11},
	{Name: "MONORAIL", Value: 12},
}

// LookupEnum returns the entry of table whose numeric code is value.
func LookupEnum(table []EnumValue, value int) (EnumValue, bool) {
	for _, v := range table {
		if v.Value == value {
			return v, true
		}
	}
	return EnumValue{}, false
}

// String returns the symbolic name of the pickup/drop-off code, or "UNRECOGNIZED".
func (p PickupDropOff) String() string {
	if v, ok := LookupEnum(PickupDropOffValues, int(p)); ok {
		return v.Name
	}
	return "UNRECOGNIZED"
}

// String returns the symbolic name of a basic route type, or "UNRECOGNIZED" for extended codes.
func (r RouteType) String() string {
	if v, ok := LookupEnum(RouteTypeValues, int(r)); ok {
		return v.Name
	}
	return "UNRECOGNIZED"
}
