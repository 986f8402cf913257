package validator

import (
	"validator.onebusaway.org/internal/models"
	"validator.onebusaway.org/internal/notice"
	"validator.onebusaway.org/internal/table"
)

const StopTimeArrivalAndDepartureTimeValidatorName = "stop_time_arrival_and_departure_time"

// StopTimeArrivalAndDepartureTimeValidator checks arrival_time and departure_time in stop_times.txt.
//
// Generated notices:
//   - StopTimeWithOnlyArrivalOrDepartureTimeNotice: a row sets exactly one of the two times.
//   - StopTimeWithArrivalBeforePreviousDepartureTimeNotice: a row arrives before the last
//     departure recorded earlier in the same trip.
//
// Rows of a trip are expected in ascending stop_sequence order.
type StopTimeArrivalAndDepartureTimeValidator struct {
	stopTimes *table.StopTimeTable
}

func NewStopTimeArrivalAndDepartureTimeValidator(stopTimes *table.StopTimeTable) *StopTimeArrivalAndDepartureTimeValidator {
	return &StopTimeArrivalAndDepartureTimeValidator{stopTimes: stopTimes}
}

func (v *StopTimeArrivalAndDepartureTimeValidator) Validate(notices *notice.Container) {
	for _, stopTimes := range v.stopTimes.ByTripID().Groups() {
		validateTrip(stopTimes, notices)
	}
}

func validateTrip(stopTimes []models.StopTime, notices *notice.Container) {
	previousDepartureRow := -1
	for i, stopTime := range stopTimes {
		hasArrival := stopTime.HasArrivalTime()
		hasDeparture := stopTime.HasDepartureTime()

		if hasArrival != hasDeparture {
			specifiedField := models.DepartureTimeFieldName
			if hasArrival {
				specifiedField = models.ArrivalTimeFieldName
			}
			notices.Add(StopTimeWithOnlyArrivalOrDepartureTimeNotice{
				CsvRowNumber:   stopTime.CsvRowNumber,
				TripID:         stopTime.TripID,
				StopSequence:   stopTime.StopSequence,
				SpecifiedField: specifiedField,
			})
		}

		if hasArrival && previousDepartureRow != -1 {
			previous := stopTimes[previousDepartureRow]
			if stopTime.ArrivalTime.IsBefore(*previous.DepartureTime) {
				notices.Add(StopTimeWithArrivalBeforePreviousDepartureTimeNotice{
					CsvRowNumber:     stopTime.CsvRowNumber,
					PrevCsvRowNumber: previous.CsvRowNumber,
					TripID:           stopTime.TripID,
					ArrivalTime:      *stopTime.ArrivalTime,
					DepartureTime:    *previous.DepartureTime,
				})
			}
		}

		if hasDeparture {
			previousDepartureRow = i
		}
	}
}

// StopTimeWithArrivalBeforePreviousDepartureTimeNotice: a stop time arrives before the
// departure of an earlier stop time of the same trip.
//
// Severity: ERROR
type StopTimeWithArrivalBeforePreviousDepartureTimeNotice struct {
	CsvRowNumber     int64           `json:"csvRowNumber"`
	PrevCsvRowNumber int64           `json:"prevCsvRowNumber"`
	TripID           string          `json:"tripId"`
	ArrivalTime      models.GtfsTime `json:"arrivalTime"`
	DepartureTime    models.GtfsTime `json:"departureTime"`
}

func (StopTimeWithArrivalBeforePreviousDepartureTimeNotice) Code() string {
	return "stop_time_with_arrival_before_previous_departure_time"
}

func (StopTimeWithArrivalBeforePreviousDepartureTimeNotice) Severity() notice.SeverityLevel {
	return notice.SeverityError
}

// StopTimeWithOnlyArrivalOrDepartureTimeNotice: a stop time sets arrival_time or
// departure_time but not both. SpecifiedField names the one that is set.
//
// Severity: ERROR
type StopTimeWithOnlyArrivalOrDepartureTimeNotice struct {
	CsvRowNumber   int64  `json:"csvRowNumber"`
	TripID         string `json:"tripId"`
	StopSequence   int    `json:"stopSequence"`
	SpecifiedField string `json:"specifiedField"`
}

func (StopTimeWithOnlyArrivalOrDepartureTimeNotice) Code() string {
	return "stop_time_with_only_arrival_or_departure_time"
}

func (StopTimeWithOnlyArrivalOrDepartureTimeNotice) Severity() notice.SeverityLevel {
	return notice.SeverityError
}
