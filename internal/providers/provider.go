package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	OpSchedule        = "scheduleLookup"
	OpAvailability    = "availabilitySearch"
	OpAirline         = "airlineLookup"
	OpAircraft        = "aircraftLookup"
	OpDelayPrediction = "delayPrediction"
	OpFareSample      = "fareSample"
)

// ErrNotFound is returned by reference lookups that succeed with no entry.
var ErrNotFound = errors.New("no matching reference data")

// Gateway is the upstream flight-data provider. Every method authenticates,
// performs exactly one HTTP call, and returns the payload's data member
// unmodified. Nothing is retried here.
type Gateway interface {
	ScheduleLookup(ctx context.Context, carrierCode, flightNumber, date string) (json.RawMessage, error)
	AvailabilitySearch(ctx context.Context, req AvailabilityRequest) (json.RawMessage, error)
	AirlineLookup(ctx context.Context, airlineCode string) (json.RawMessage, error)
	AircraftLookup(ctx context.Context, aircraftCode string) (json.RawMessage, error)
	DelayPrediction(ctx context.Context, req DelayRequest) (json.RawMessage, error)
	FareSample(ctx context.Context, req FareSampleRequest) (json.RawMessage, error)
}

type AvailabilityRequest struct {
	Origin      string
	Destination string
	Date        string
	Adults      int
	// When both are set, only offers with a segment matching them are kept.
	CarrierCode  string
	FlightNumber string
}

type DelayRequest struct {
	Origin        string
	Destination   string
	DepartureDate string
	DepartureTime string
	ArrivalDate   string
	ArrivalTime   string
	AircraftCode  string
	CarrierCode   string
	FlightNumber  string
	Duration      string
}

type FareSampleRequest struct {
	Origin      string
	Destination string
	Date        string
	CarrierCode string
}

// UpstreamError is a failed provider call. StatusCode is zero when no HTTP
// response was received (transport failure, timeout, cancelled wait).
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": upstream call failed"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(operation string, err error) *UpstreamError {
	return &UpstreamError{
		Operation: operation,
		Err:       err,
	}
}
