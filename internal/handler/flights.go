package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/petarceklic/FlightCapacity/internal/aggregator"
	"github.com/petarceklic/FlightCapacity/internal/models"
	"github.com/petarceklic/FlightCapacity/internal/providers"
)

type FlightHandler struct {
	gateway    providers.Gateway
	aggregator *aggregator.Aggregator
	logger     *zap.Logger
}

func NewFlightHandler(gateway providers.Gateway, agg *aggregator.Aggregator, logger *zap.Logger) *FlightHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightHandler{
		gateway:    gateway,
		aggregator: agg,
		logger:     logger,
	}
}

// Flights searches offers between two airports on one day.
func (h *FlightHandler) Flights(c echo.Context) error {
	search := models.OfferSearch{
		Origin:      c.QueryParam("origin"),
		Destination: c.QueryParam("destination"),
		Date:        c.QueryParam("date"),
	}
	if raw := strings.TrimSpace(c.QueryParam("adults")); raw != "" {
		adults, err := strconv.Atoi(raw)
		if err != nil {
			return h.writeError(c, &models.ValidationError{
				Field:    "adults",
				Message:  "Invalid number of adults",
				Expected: "an integer between 1 and 9",
				Received: raw,
			})
		}
		search.Adults = adults
	}

	if err := search.Validate(); err != nil {
		return h.writeError(c, err)
	}

	data, err := h.gateway.AvailabilitySearch(c.Request().Context(), providers.AvailabilityRequest{
		Origin:      search.Origin,
		Destination: search.Destination,
		Date:        search.Date,
		Adults:      search.Adults,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, models.FlightsResponse{
		Success: true,
		Query: models.OfferSearchCriteria{
			Origin:      search.Origin,
			Destination: search.Destination,
			Date:        search.Date,
			Adults:      search.Adults,
		},
		Data: data,
	})
}

// FlightStatus returns the raw schedule of one flight.
func (h *FlightHandler) FlightStatus(c echo.Context) error {
	q := models.FlightQuery{
		CarrierCode:  c.QueryParam("carrier"),
		FlightNumber: c.QueryParam("number"),
		Date:         c.QueryParam("date"),
	}
	if err := q.Validate(); err != nil {
		return h.writeError(c, err)
	}

	data, err := h.gateway.ScheduleLookup(c.Request().Context(), q.CarrierCode, q.FlightNumber, q.Date)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, models.FlightStatusResponse{
		Success: true,
		Query: models.StatusQuery{
			CarrierCode:  q.CarrierCode,
			FlightNumber: q.FlightNumber,
			FlightCode:   q.FlightCode(),
			Date:         q.Date,
		},
		Data: data,
	})
}

// Capacity aggregates schedule, availability and enrichment for one flight.
func (h *FlightHandler) Capacity(c echo.Context) error {
	q := models.FlightQuery{
		CarrierCode:  c.QueryParam("carrier"),
		FlightNumber: c.QueryParam("number"),
		Date:         c.QueryParam("date"),
		Origin:       c.QueryParam("origin"),
		Destination:  c.QueryParam("destination"),
	}

	result, err := h.aggregator.GetCapacity(c.Request().Context(), q)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, models.CapacityResponse{
		Success:  true,
		Capacity: result,
	})
}
