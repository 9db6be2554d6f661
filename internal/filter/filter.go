package filter

import (
	"encoding/json"
	"strconv"

	"github.com/petarceklic/FlightCapacity/internal/models"
)

// DecodeOffers reads the offers of an availability payload.
func DecodeOffers(data json.RawMessage) ([]models.Offer, error) {
	offers := make([]models.Offer, 0)
	if len(data) == 0 {
		return offers, nil
	}
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// MatchFlight keeps only the offers with a segment flown under the given
// carrier code and flight number. Kept offers are passed through byte for
// byte. The result is always a JSON array, possibly empty.
func MatchFlight(data json.RawMessage, carrierCode, flightNumber string) (json.RawMessage, error) {
	return apply(data, func(o models.Offer) bool {
		return o.HasSegment(carrierCode, flightNumber)
	})
}

// MatchCarrier keeps only the offers sold or operated by the carrier.
func MatchCarrier(data json.RawMessage, carrierCode string) (json.RawMessage, error) {
	return apply(data, func(o models.Offer) bool {
		return o.HasCarrier(carrierCode)
	})
}

func apply(data json.RawMessage, keep func(models.Offer) bool) (json.RawMessage, error) {
	var items []json.RawMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	}

	result := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		var o models.Offer
		if err := json.Unmarshal(item, &o); err != nil {
			continue
		}
		if keep(o) {
			result = append(result, item)
		}
	}

	return json.Marshal(result)
}

// Cheapest returns the lowest grand total among offers, optionally
// restricted to one carrier. ok is false when no offer carries a usable price.
func Cheapest(offers []models.Offer, carrierCode string) (amount float64, currency string, ok bool) {
	for _, o := range offers {
		if carrierCode != "" && !o.HasCarrier(carrierCode) {
			continue
		}
		price, err := Total(o.Price)
		if err != nil {
			continue
		}
		if !ok || price < amount {
			amount = price
			currency = o.Price.Currency
			ok = true
		}
	}
	return amount, currency, ok
}

// Total parses an offer price, preferring the grand total.
func Total(p models.OfferPrice) (float64, error) {
	s := p.GrandTotal
	if s == "" {
		s = p.Total
	}
	return strconv.ParseFloat(s, 64)
}
