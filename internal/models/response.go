package models

import "encoding/json"

// CapacityQuery is the normalized query echoed back with a capacity answer.
type CapacityQuery struct {
	CarrierCode  string `json:"carrierCode"`
	FlightNumber string `json:"flightNumber"`
	FlightCode   string `json:"flightCode"`
	Date         string `json:"date"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Route        string `json:"route"`
}

func NewCapacityQuery(q FlightQuery) CapacityQuery {
	return CapacityQuery{
		CarrierCode:  q.CarrierCode,
		FlightNumber: q.FlightNumber,
		FlightCode:   q.FlightCode(),
		Date:         q.Date,
		Origin:       q.Origin,
		Destination:  q.Destination,
		Route:        q.Route(),
	}
}

// FareTrendPoint is the cheapest fare found for one day. A nil Price means
// no offer was found or the lookup failed; it is never encoded as zero.
type FareTrendPoint struct {
	Date     string   `json:"date"`
	Price    *float64 `json:"price"`
	Currency string   `json:"currency,omitempty"`
}

type Fare struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

type CabinBreakdown struct {
	Cabin  string `json:"cabin"`
	Offers int    `json:"offers"`
	Seats  int    `json:"seats"`
	Lowest *Fare  `json:"lowestFare,omitempty"`
}

// CapacitySummary is derived from the availability offers. When HasSeatData
// is false the carrier shared no seat data; that is not the same as a full or
// an empty flight, so EstimatedLoadFactor stays nil.
type CapacitySummary struct {
	HasSeatData         bool             `json:"hasSeatData"`
	OfferCount          int              `json:"offerCount"`
	SeatsAvailable      int              `json:"seatsAvailable"`
	Cabins              []CabinBreakdown `json:"cabins"`
	LowestFare          *Fare            `json:"lowestFare,omitempty"`
	AircraftCode        string           `json:"aircraftCode,omitempty"`
	AircraftName        string           `json:"aircraftName,omitempty"`
	TypicalSeats        int              `json:"typicalSeats,omitempty"`
	EstimatedLoadFactor *float64         `json:"estimatedLoadFactor,omitempty"`
	SeatPitchInches     *int             `json:"economySeatPitchInches,omitempty"`
}

// Capacity is the aggregated answer for one flight. Optional fields are only
// set when their upstream call succeeded.
type Capacity struct {
	Query           CapacityQuery    `json:"query"`
	Schedule        json.RawMessage  `json:"schedule"`
	Availability    json.RawMessage  `json:"availability"`
	Airline         json.RawMessage  `json:"airline,omitempty"`
	Aircraft        json.RawMessage  `json:"aircraft,omitempty"`
	DelayPrediction json.RawMessage  `json:"delayPrediction,omitempty"`
	FareTrend       []FareTrendPoint `json:"fareTrend,omitempty"`
	Summary         *CapacitySummary `json:"summary,omitempty"`
}

type CapacityResponse struct {
	Success bool `json:"success"`
	*Capacity
}

type OfferSearchCriteria struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Adults      int    `json:"adults"`
}

type FlightsResponse struct {
	Success bool                `json:"success"`
	Query   OfferSearchCriteria `json:"query"`
	Data    json.RawMessage     `json:"data"`
}

type StatusQuery struct {
	CarrierCode  string `json:"carrierCode"`
	FlightNumber string `json:"flightNumber"`
	FlightCode   string `json:"flightCode"`
	Date         string `json:"date"`
}

type FlightStatusResponse struct {
	Success bool            `json:"success"`
	Query   StatusQuery     `json:"query"`
	Data    json.RawMessage `json:"data"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Environment string `json:"environment,omitempty"`
	APIBaseURL  string `json:"apiBaseUrl,omitempty"`
	Timestamp   string `json:"timestamp"`
}

type ErrorResponse struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Expected   string          `json:"expected,omitempty"`
	Received   *string         `json:"received,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
	Details    any             `json:"details,omitempty"`
}

type NotFoundResponse struct {
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}
