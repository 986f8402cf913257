package models

import (
	"fmt"
	"strconv"
	"strings"
)

// GtfsTime is a GTFS time-of-day, stored as seconds after the start of the service day.
//
// Service that runs past midnight is written as 24:10:00, 25:30:00 and so on, so values are
// never wrapped modulo 24h and later times always compare greater.
type GtfsTime struct {
	seconds int
}

// NewGtfsTime builds a GtfsTime from hours, minutes and seconds. Hours may exceed 23.
func NewGtfsTime(hours, minutes, seconds int) GtfsTime {
	return GtfsTime{seconds: (hours*60+minutes)*60 + seconds}
}

// GtfsTimeFromSeconds builds a GtfsTime from a count of seconds after the start of the service day.
func GtfsTimeFromSeconds(seconds int) GtfsTime {
	return GtfsTime{seconds: seconds}
}

// ParseGtfsTime parses H:MM:SS or HH:MM:SS. Surrounding whitespace is ignored.
func ParseGtfsTime(s string) (GtfsTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return GtfsTime{}, fmt.Errorf("invalid GTFS time %q: expected HH:MM:SS", s)
	}
	if len(parts[1]) != 2 || len(parts[2]) != 2 || len(parts[0]) == 0 {
		return GtfsTime{}, fmt.Errorf("invalid GTFS time %q: expected HH:MM:SS", s)
	}

	var values [3]int
	for i, part := range parts {
		if !isDigits(part) {
			return GtfsTime{}, fmt.Errorf("invalid GTFS time %q: %q is not a non-negative number", s, part)
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return GtfsTime{}, fmt.Errorf("invalid GTFS time %q: %w", s, err)
		}
		values[i] = v
	}
	if values[1] > 59 || values[2] > 59 {
		return GtfsTime{}, fmt.Errorf("invalid GTFS time %q: minutes and seconds must be below 60", s)
	}
	return NewGtfsTime(values[0], values[1], values[2]), nil
}

// isDigits rejects the signs strconv.Atoi would accept.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (t GtfsTime) Hour() int   { return t.seconds / 3600 }
func (t GtfsTime) Minute() int { return t.seconds / 60 % 60 }
func (t GtfsTime) Second() int { return t.seconds % 60 }

// SecondsSinceMidnight returns the number of seconds after the start of the service day.
func (t GtfsTime) SecondsSinceMidnight() int {
	return t.seconds
}

func (t GtfsTime) IsBefore(other GtfsTime) bool {
	return t.seconds < other.seconds
}

func (t GtfsTime) IsAfter(other GtfsTime) bool {
	return t.seconds > other.seconds
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or after other.
func (t GtfsTime) Compare(other GtfsTime) int {
	switch {
	case t.seconds < other.seconds:
		return -1
	case t.seconds > other.seconds:
		return 1
	default:
		return 0
	}
}

// String formats the time as HH:MM:SS.
func (t GtfsTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t GtfsTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *GtfsTime) UnmarshalText(b []byte) error {
	parsed, err := ParseGtfsTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
