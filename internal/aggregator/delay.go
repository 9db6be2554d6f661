package aggregator

import (
	"time"

	"github.com/petarceklic/FlightCapacity/internal/models"
	"github.com/petarceklic/FlightCapacity/internal/providers"
	"github.com/petarceklic/FlightCapacity/internal/timezone"
)

func aircraftFromSchedule(flights []models.DatedFlight) string {
	if len(flights) == 0 {
		return ""
	}
	for _, leg := range flights[0].Legs {
		if leg.AircraftEquipment.AircraftType != "" {
			return leg.AircraftEquipment.AircraftType
		}
	}
	return ""
}

// delayRequest derives the delay-prediction parameters from the schedule.
// ok is false when the schedule lacks timings or no aircraft is known.
func delayRequest(q models.FlightQuery, flights []models.DatedFlight, aircraftCode string) (providers.DelayRequest, bool) {
	if len(flights) == 0 || aircraftCode == "" {
		return providers.DelayRequest{}, false
	}

	points := flights[0].FlightPoints
	if len(points) < 2 {
		return providers.DelayRequest{}, false
	}

	departure, err := timezone.ParseTimeWithOffset(points[0].Departure.Scheduled())
	if err != nil {
		return providers.DelayRequest{}, false
	}
	arrival, err := timezone.ParseTimeWithOffset(points[len(points)-1].Arrival.Scheduled())
	if err != nil {
		return providers.DelayRequest{}, false
	}

	duration := legDuration(flights[0].Legs)
	if duration <= 0 {
		duration = arrival.Sub(departure)
	}
	if duration <= 0 {
		return providers.DelayRequest{}, false
	}

	return providers.DelayRequest{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: timezone.LocalDate(departure),
		DepartureTime: timezone.LocalClock(departure),
		ArrivalDate:   timezone.LocalDate(arrival),
		ArrivalTime:   timezone.LocalClock(arrival),
		AircraftCode:  aircraftCode,
		CarrierCode:   q.CarrierCode,
		FlightNumber:  q.FlightNumber,
		Duration:      timezone.FormatISODuration(duration),
	}, true
}

func legDuration(legs []models.Leg) time.Duration {
	var total time.Duration
	for _, leg := range legs {
		d, err := timezone.ParseISODuration(leg.ScheduledLegDuration)
		if err != nil {
			return 0
		}
		total += d
	}
	return total
}
