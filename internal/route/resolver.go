// Package route derives a flight's origin and destination from its schedule.
package route

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petarceklic/FlightCapacity/internal/models"
)

type ScheduleSource interface {
	ScheduleLookup(ctx context.Context, carrierCode, flightNumber, date string) (json.RawMessage, error)
}

type Route struct {
	Origin      string
	Destination string
}

func (r Route) String() string {
	return r.Origin + "-" + r.Destination
}

// NotFoundError means the schedule lookup succeeded but held no usable route.
type NotFoundError struct {
	FlightCode string
	Date       string
	Reason     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s on %s: %s", e.FlightCode, e.Date, e.Reason)
}

// Resolution is a resolved route plus the schedule payload it came from,
// so the caller does not have to fetch the schedule a second time.
type Resolution struct {
	Route    Route
	Schedule json.RawMessage
}

type Resolver struct {
	schedules ScheduleSource
}

func NewResolver(schedules ScheduleSource) *Resolver {
	return &Resolver{schedules: schedules}
}

func (r *Resolver) Resolve(ctx context.Context, carrierCode, flightNumber, date string) (*Resolution, error) {
	schedule, err := r.schedules.ScheduleLookup(ctx, carrierCode, flightNumber, date)
	if err != nil {
		return nil, err
	}

	flights, err := models.DecodeSchedule(schedule)
	if err != nil {
		return nil, &NotFoundError{
			FlightCode: carrierCode + flightNumber,
			Date:       date,
			Reason:     "unreadable schedule: " + err.Error(),
		}
	}

	rt, reason := FromSchedule(flights)
	if reason != "" {
		return nil, &NotFoundError{
			FlightCode: carrierCode + flightNumber,
			Date:       date,
			Reason:     reason,
		}
	}

	return &Resolution{Route: rt, Schedule: schedule}, nil
}

// FromSchedule takes the first and last flight points of the first dated
// flight. Intermediate stops are ignored. A non-empty reason explains why no
// route could be derived.
func FromSchedule(flights []models.DatedFlight) (Route, string) {
	if len(flights) == 0 {
		return Route{}, "schedule has no flights"
	}

	points := flights[0].FlightPoints
	if len(points) < 2 {
		return Route{}, fmt.Sprintf("schedule has %d flight point(s), need at least 2", len(points))
	}

	origin := points[0].IataCode
	destination := points[len(points)-1].IataCode
	if origin == "" || destination == "" {
		return Route{}, "flight point without IATA code"
	}

	return Route{Origin: origin, Destination: destination}, ""
}
