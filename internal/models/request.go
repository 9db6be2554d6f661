package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	carrierCodePattern  = regexp.MustCompile(`^[A-Za-z]{2}$`)
	flightNumberPattern = regexp.MustCompile(`^[0-9]{1,4}$`)
	datePattern         = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	airportCodePattern  = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// ValidationError describes a caller-supplied value that does not have the
// expected shape. It is always reported before any upstream call is made.
type ValidationError struct {
	Field    string
	Message  string
	Expected string
	Received string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: expected %s, received %q", e.Message, e.Expected, e.Received)
}

// FlightQuery identifies one scheduled flight on one day.
type FlightQuery struct {
	CarrierCode  string
	FlightNumber string
	Date         string
	Origin       string
	Destination  string
}

// Validate normalizes the query in place (trimmed, uppercased codes) and
// checks every field against its expected pattern.
func (q *FlightQuery) Validate() error {
	q.CarrierCode = strings.ToUpper(strings.TrimSpace(q.CarrierCode))
	q.FlightNumber = strings.TrimSpace(q.FlightNumber)
	q.Date = strings.TrimSpace(q.Date)
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))

	if err := ValidateCarrierCode(q.CarrierCode); err != nil {
		return err
	}
	if !flightNumberPattern.MatchString(q.FlightNumber) {
		return &ValidationError{
			Field:    "number",
			Message:  "Invalid flight number",
			Expected: "1-4 digits (e.g. 400)",
			Received: q.FlightNumber,
		}
	}
	if err := ValidateDate(q.Date); err != nil {
		return err
	}
	if q.Origin != "" {
		if err := ValidateAirportCode("origin", q.Origin); err != nil {
			return err
		}
	}
	if q.Destination != "" {
		if err := ValidateAirportCode("destination", q.Destination); err != nil {
			return err
		}
	}
	return nil
}

func (q FlightQuery) HasRoute() bool {
	return q.Origin != "" && q.Destination != ""
}

// FlightCode is the carrier code followed by the flight number, e.g. LH400.
func (q FlightQuery) FlightCode() string {
	return q.CarrierCode + q.FlightNumber
}

// Route is ORIGIN-DEST, or empty while the route is unresolved.
func (q FlightQuery) Route() string {
	if !q.HasRoute() {
		return ""
	}
	return q.Origin + "-" + q.Destination
}

// OfferSearch is the input of a plain origin/destination offers search.
type OfferSearch struct {
	Origin      string
	Destination string
	Date        string
	Adults      int
}

func (s *OfferSearch) Validate() error {
	s.Origin = strings.ToUpper(strings.TrimSpace(s.Origin))
	s.Destination = strings.ToUpper(strings.TrimSpace(s.Destination))
	s.Date = strings.TrimSpace(s.Date)

	if err := ValidateAirportCode("origin", s.Origin); err != nil {
		return err
	}
	if err := ValidateAirportCode("destination", s.Destination); err != nil {
		return err
	}
	if err := ValidateDate(s.Date); err != nil {
		return err
	}
	if s.Adults == 0 {
		s.Adults = 1
	}
	if s.Adults < 1 || s.Adults > 9 {
		return &ValidationError{
			Field:    "adults",
			Message:  "Invalid number of adults",
			Expected: "an integer between 1 and 9",
			Received: strconv.Itoa(s.Adults),
		}
	}
	return nil
}

func ValidateCarrierCode(code string) error {
	if !carrierCodePattern.MatchString(code) {
		return &ValidationError{
			Field:    "carrier",
			Message:  "Invalid carrier code",
			Expected: "2 letters (e.g. LH)",
			Received: code,
		}
	}
	return nil
}

func ValidateAirportCode(field, code string) error {
	if !airportCodePattern.MatchString(code) {
		return &ValidationError{
			Field:    field,
			Message:  "Invalid airport code",
			Expected: "3 letters (e.g. FRA)",
			Received: code,
		}
	}
	return nil
}

// ValidateDate accepts YYYY-MM-DD strings that name a real calendar day.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return &ValidationError{
			Field:    "date",
			Message:  "Invalid date format",
			Expected: "YYYY-MM-DD",
			Received: date,
		}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{
			Field:    "date",
			Message:  "Invalid calendar date",
			Expected: "YYYY-MM-DD",
			Received: date,
		}
	}
	return nil
}
