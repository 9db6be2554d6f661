// Package capacity derives seat and fare figures from availability offers.
package capacity

import (
	"math"

	"github.com/petarceklic/FlightCapacity/internal/filter"
	"github.com/petarceklic/FlightCapacity/internal/models"
	"github.com/petarceklic/FlightCapacity/pkg/currency"
)

var cabinOrder = []string{"ECONOMY", "PREMIUM_ECONOMY", "BUSINESS", "FIRST"}

// Summarize builds the capacity summary for one flight. aircraftCode may be
// empty, in which case the first offer's aircraft is used.
func Summarize(offers []models.Offer, aircraftCode, carrierCode string) *models.CapacitySummary {
	summary := &models.CapacitySummary{
		HasSeatData: len(offers) > 0,
		OfferCount:  len(offers),
		Cabins:      make([]models.CabinBreakdown, 0),
	}

	byCabin := make(map[string]*models.CabinBreakdown)
	var extra []string
	for _, o := range offers {
		summary.SeatsAvailable += o.NumberOfBookableSeats

		cabin := o.Cabin()
		if cabin == "" {
			cabin = "UNKNOWN"
		}
		cb, ok := byCabin[cabin]
		if !ok {
			cb = &models.CabinBreakdown{Cabin: cabin}
			byCabin[cabin] = cb
			if !isKnownCabin(cabin) {
				extra = append(extra, cabin)
			}
		}
		cb.Offers++
		cb.Seats += o.NumberOfBookableSeats
		cb.Lowest = lower(cb.Lowest, o.Price)
		summary.LowestFare = lower(summary.LowestFare, o.Price)
	}

	for _, cabin := range append(append([]string{}, cabinOrder...), extra...) {
		if cb, ok := byCabin[cabin]; ok {
			summary.Cabins = append(summary.Cabins, *cb)
		}
	}

	if aircraftCode == "" && len(offers) > 0 {
		aircraftCode = offers[0].AircraftCode()
	}
	summary.AircraftCode = aircraftCode
	if info, ok := LookupAircraft(aircraftCode); ok {
		summary.AircraftName = info.Name
		summary.TypicalSeats = info.Seats
	}

	if pitch, ok := EconomySeatPitch(carrierCode); ok {
		summary.SeatPitchInches = &pitch
	}

	summary.EstimatedLoadFactor = LoadFactor(summary.SeatsAvailable, summary.TypicalSeats, summary.HasSeatData)

	return summary
}

// LoadFactor estimates the percentage of seats already sold. It is nil when
// there is no seat data or the cabin size is unknown; "no data" must never
// read as an empty flight.
func LoadFactor(seatsAvailable, typicalSeats int, hasSeatData bool) *float64 {
	if !hasSeatData || typicalSeats <= 0 {
		return nil
	}

	sold := float64(typicalSeats-seatsAvailable) / float64(typicalSeats) * 100
	sold = math.Max(0, math.Min(100, sold))
	sold = math.Round(sold*10) / 10
	return &sold
}

func lower(current *models.Fare, price models.OfferPrice) *models.Fare {
	amount, err := filter.Total(price)
	if err != nil {
		return current
	}
	if current != nil && current.Amount <= amount {
		return current
	}
	return &models.Fare{
		Amount:    amount,
		Currency:  price.Currency,
		Formatted: currency.Format(amount, price.Currency),
	}
}

func isKnownCabin(cabin string) bool {
	for _, c := range cabinOrder {
		if c == cabin {
			return true
		}
	}
	return false
}
