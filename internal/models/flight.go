package models

import (
	"encoding/json"
	"strings"
)

// The types below decode only the parts of provider payloads the service
// reads. Payloads are passed through to callers unmodified.

type DatedFlight struct {
	FlightDesignator FlightDesignator `json:"flightDesignator"`
	FlightPoints     []FlightPoint    `json:"flightPoints"`
	Legs             []Leg            `json:"legs"`
}

type FlightDesignator struct {
	CarrierCode  string `json:"carrierCode"`
	FlightNumber int    `json:"flightNumber"`
}

type FlightPoint struct {
	IataCode  string        `json:"iataCode"`
	Departure *PointTimings `json:"departure,omitempty"`
	Arrival   *PointTimings `json:"arrival,omitempty"`
}

type PointTimings struct {
	Timings []Timing `json:"timings"`
}

type Timing struct {
	Qualifier string `json:"qualifier"`
	Value     string `json:"value"`
}

// Scheduled returns the scheduled (STD/STA) timing value, falling back to
// the first timing present.
func (p *PointTimings) Scheduled() string {
	if p == nil || len(p.Timings) == 0 {
		return ""
	}
	for _, t := range p.Timings {
		if t.Qualifier == "STD" || t.Qualifier == "STA" {
			return t.Value
		}
	}
	return p.Timings[0].Value
}

type Leg struct {
	BoardPointIataCode   string            `json:"boardPointIataCode"`
	OffPointIataCode     string            `json:"offPointIataCode"`
	AircraftEquipment    AircraftEquipment `json:"aircraftEquipment"`
	ScheduledLegDuration string            `json:"scheduledLegDuration"`
}

type AircraftEquipment struct {
	AircraftType string `json:"aircraftType"`
}

// DecodeSchedule reads the dated flights of a schedule payload.
func DecodeSchedule(raw json.RawMessage) ([]DatedFlight, error) {
	var flights []DatedFlight
	if len(raw) == 0 {
		return flights, nil
	}
	if err := json.Unmarshal(raw, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

type Offer struct {
	ID                     string            `json:"id"`
	NumberOfBookableSeats  int               `json:"numberOfBookableSeats"`
	Itineraries            []Itinerary       `json:"itineraries"`
	Price                  OfferPrice        `json:"price"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes"`
	TravelerPricings       []TravelerPricing `json:"travelerPricings"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	ID          string          `json:"id"`
	CarrierCode string          `json:"carrierCode"`
	Number      string          `json:"number"`
	Aircraft    SegmentAircraft `json:"aircraft"`
}

type SegmentAircraft struct {
	Code string `json:"code"`
}

type OfferPrice struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	GrandTotal string `json:"grandTotal"`
}

type TravelerPricing struct {
	FareDetailsBySegment []FareDetail `json:"fareDetailsBySegment"`
}

type FareDetail struct {
	SegmentID string `json:"segmentId"`
	Cabin     string `json:"cabin"`
}

// HasSegment reports whether any segment of the offer is operated under the
// given carrier code and flight number.
func (o Offer) HasSegment(carrierCode, flightNumber string) bool {
	for _, it := range o.Itineraries {
		for _, s := range it.Segments {
			if strings.EqualFold(s.CarrierCode, carrierCode) && trimLeadingZeros(s.Number) == trimLeadingZeros(flightNumber) {
				return true
			}
		}
	}
	return false
}

// HasCarrier reports whether the offer is validated by, or flies a segment
// of, the given carrier.
func (o Offer) HasCarrier(carrierCode string) bool {
	for _, c := range o.ValidatingAirlineCodes {
		if strings.EqualFold(c, carrierCode) {
			return true
		}
	}
	for _, it := range o.Itineraries {
		for _, s := range it.Segments {
			if strings.EqualFold(s.CarrierCode, carrierCode) {
				return true
			}
		}
	}
	return false
}

// Cabin returns the cabin booked on the first segment of the offer.
func (o Offer) Cabin() string {
	for _, tp := range o.TravelerPricings {
		for _, fd := range tp.FareDetailsBySegment {
			if fd.Cabin != "" {
				return strings.ToUpper(fd.Cabin)
			}
		}
	}
	return ""
}

// AircraftCode returns the aircraft code of the first segment that has one.
func (o Offer) AircraftCode() string {
	for _, it := range o.Itineraries {
		for _, s := range it.Segments {
			if s.Aircraft.Code != "" {
				return s.Aircraft.Code
			}
		}
	}
	return ""
}

func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" && s != "" {
		return "0"
	}
	return t
}
