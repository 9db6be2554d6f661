package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/petarceklic/FlightCapacity/internal/aggregator"
	"github.com/petarceklic/FlightCapacity/internal/auth"
	"github.com/petarceklic/FlightCapacity/internal/faretrend"
	"github.com/petarceklic/FlightCapacity/internal/handler"
	"github.com/petarceklic/FlightCapacity/internal/providers"
	"github.com/petarceklic/FlightCapacity/internal/providers/providertest"
	"github.com/petarceklic/FlightCapacity/internal/ratelimit"
)

const scheduleLH400 = `[{
  "flightDesignator": {"carrierCode": "LH", "flightNumber": 400},
  "flightPoints": [
    {"iataCode": "FRA", "departure": {"timings": [{"qualifier": "STD", "value": "2025-12-01T10:20+01:00"}]}},
    {"iataCode": "JFK", "arrival": {"timings": [{"qualifier": "STA", "value": "2025-12-01T13:05-05:00"}]}}
  ],
  "legs": [{"boardPointIataCode": "FRA", "offPointIataCode": "JFK", "aircraftEquipment": {"aircraftType": "748"}, "scheduledLegDuration": "PT8H45M"}]
}]`

const offersLH400 = `[
  {"id":"1","numberOfBookableSeats":20,"validatingAirlineCodes":["LH"],"itineraries":[{"segments":[{"carrierCode":"LH","number":"400"}]}],"price":{"currency":"EUR","grandTotal":"700.00"}},
  {"id":"2","numberOfBookableSeats":13,"validatingAirlineCodes":["LH"],"itineraries":[{"segments":[{"carrierCode":"LH","number":"400"}]}],"price":{"currency":"EUR","grandTotal":"820.00"}},
  {"id":"3","numberOfBookableSeats":9,"validatingAirlineCodes":["LH"],"itineraries":[{"segments":[{"carrierCode":"LH","number":"400"}]}],"price":{"currency":"EUR","grandTotal":"3100.00"}},
  {"id":"4","numberOfBookableSeats":9,"validatingAirlineCodes":["LH"],"itineraries":[{"segments":[{"carrierCode":"LH","number":"402"}]}],"price":{"currency":"EUR","grandTotal":"540.00"}}
]`

type capacityBody struct {
	Success      bool              `json:"success"`
	Error        string            `json:"error"`
	Message      string            `json:"message"`
	Expected     string            `json:"expected"`
	Received     string            `json:"received"`
	Query        map[string]string `json:"query"`
	Schedule     json.RawMessage   `json:"schedule"`
	Availability []struct {
		Seats int `json:"numberOfBookableSeats"`
	} `json:"availability"`
	Airline         json.RawMessage   `json:"airline"`
	Aircraft        json.RawMessage   `json:"aircraft"`
	DelayPrediction json.RawMessage   `json:"delayPrediction"`
	FareTrend       []json.RawMessage `json:"fareTrend"`
	Summary         struct {
		HasSeatData         bool     `json:"hasSeatData"`
		SeatsAvailable      int      `json:"seatsAvailable"`
		EstimatedLoadFactor *float64 `json:"estimatedLoadFactor"`
	} `json:"summary"`
}

func newStub() *providertest.Server {
	srv := providertest.NewServer()
	srv.Respond(providertest.SchedulePath, providertest.Data(scheduleLH400))
	srv.Respond(providertest.FlightOffersPath, providertest.Data(offersLH400))
	srv.Respond(providertest.AirlinesPath, providertest.Data(`[{"iataCode":"LH","businessName":"LUFTHANSA"}]`))
	srv.Respond(providertest.AircraftPath, providertest.Data(`[{"code":"748","name":"BOEING 747-8"}]`))
	srv.Respond(providertest.DelayPredictionPath, providertest.Data(`[{"result":"LESS_THAN_30_MINUTES","probability":"0.80"}]`))
	return srv
}

func newServer(t *testing.T, srv *providertest.Server) *echo.Echo {
	t.Helper()

	tokens := auth.NewTokenSource(auth.Config{
		TokenURL:     srv.URL + providers.TokenPath,
		ClientID:     "id",
		ClientSecret: "secret",
	}, srv.Client(), nil, nil)
	gateway := providers.NewAmadeusClient(providers.AmadeusConfig{
		BaseURL: srv.URL,
		Limiter: ratelimit.NewOperationLimiter(ratelimit.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100}),
	}, srv.Client(), tokens, nil)
	sampler := faretrend.NewSampler(gateway, faretrend.Config{Timeout: time.Second}, nil)
	agg := aggregator.NewAggregator(gateway, sampler, aggregator.DefaultConfig(), nil)

	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(nil)
	handler.RegisterRoutes(e, handler.NewFlightHandler(gateway, agg, nil), handler.HealthInfo{Service: "flight-capacity-api"})
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) capacityBody {
	t.Helper()
	var body capacityBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestCapacityEndToEnd(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	rec := get(e, "/api/flight-capacity?carrier=lh&number=400&date=2025-12-01")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	require.True(t, body.Success)
	require.Equal(t, "LH400", body.Query["flightCode"])
	require.Equal(t, "FRA-JFK", body.Query["route"])
	require.NotEmpty(t, body.Schedule)

	require.Len(t, body.Availability, 3)
	seats := 0
	for _, o := range body.Availability {
		seats += o.Seats
	}
	require.Equal(t, 42, seats)
	require.Equal(t, 42, body.Summary.SeatsAvailable)

	require.NotEmpty(t, body.Airline)
	require.NotEmpty(t, body.Aircraft)
	require.NotEmpty(t, body.DelayPrediction)
	require.Len(t, body.FareTrend, 7)

	delayQuery := srv.Queries(providertest.DelayPredictionPath)[0]
	require.Equal(t, "748", delayQuery.Get("aircraftCode"))
	require.Equal(t, "PT8H45M", delayQuery.Get("duration"))
	require.Equal(t, "10:20:00", delayQuery.Get("departureTime"))
	require.Equal(t, 1, srv.Calls(providertest.TokenPath))
}

func TestCapacityEmptyAvailability(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	srv.Respond(providertest.FlightOffersPath, providertest.Data(`[]`))
	e := newServer(t, srv)

	rec := get(e, "/api/flight-capacity?carrier=LH&number=400&date=2025-12-01")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.True(t, body.Success)
	require.NotNil(t, body.Availability)
	require.Empty(t, body.Availability)
	require.Contains(t, rec.Body.String(), `"availability":[]`)
	require.False(t, body.Summary.HasSeatData)
	require.Nil(t, body.Summary.EstimatedLoadFactor)
}

func TestCapacityDelayPredictionForbidden(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	srv.Respond(providertest.DelayPredictionPath, providertest.Response{
		Status: http.StatusForbidden,
		Body:   `{"errors":[{"status":403,"detail":"Not available on your plan"}]}`,
	})
	e := newServer(t, srv)

	rec := get(e, "/api/flight-capacity?carrier=LH&number=400&date=2025-12-01")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.NotEmpty(t, body.Schedule)
	require.Len(t, body.Availability, 3)
	require.Nil(t, body.DelayPrediction)
	require.NotContains(t, rec.Body.String(), "delayPrediction")
	require.Equal(t, 1, srv.Calls(providertest.DelayPredictionPath))
}

func TestCapacityMalformedDateRejectedBeforeUpstream(t *testing.T) {
	for _, date := range []string{"2025/12/01", "Dec 1"} {
		srv := newStub()
		e := newServer(t, srv)

		rec := get(e, "/api/flight-capacity?carrier=LH&number=400&date="+url.QueryEscape(date))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode(t, rec)
		require.False(t, body.Success)
		require.NotEmpty(t, body.Error)
		require.Equal(t, "YYYY-MM-DD", body.Expected)
		require.Equal(t, date, body.Received)
		require.Zero(t, srv.TotalCalls())
		srv.Close()
	}
}

func TestCapacityValidationErrors(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	for _, target := range []string{
		"/api/flight-capacity?carrier=LHX&number=400&date=2025-12-01",
		"/api/flight-capacity?carrier=LH&number=40000&date=2025-12-01",
		"/api/flight-capacity?carrier=LH&number=400&date=2025-12-01&origin=FRANK",
		"/api/flight-capacity",
	} {
		rec := get(e, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	require.Zero(t, srv.TotalCalls())
}

func TestCapacityRouteNotFound(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	srv.Respond(providertest.SchedulePath, providertest.Data(`[]`))
	e := newServer(t, srv)

	rec := get(e, "/api/flight-capacity?carrier=LH&number=400&date=2025-12-01")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode(t, rec)
	require.False(t, body.Success)
	require.NotEmpty(t, body.Error)
	require.NotEmpty(t, body.Message)
}

func TestCapacityRequiredUpstreamFailure(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	srv.Respond(providertest.FlightOffersPath, providertest.Response{Status: http.StatusInternalServerError, Body: `{"errors":[{"status":500,"title":"SYSTEM ERROR"}]}`})
	e := newServer(t, srv)

	rec := get(e, "/api/flight-capacity?carrier=LH&number=400&date=2025-12-01&origin=FRA&destination=JFK")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["error"])
	require.Contains(t, fmt.Sprint(body["details"]), "SYSTEM ERROR")
	require.NotContains(t, body, "schedule")
}

func TestCapacityAuthFailure(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	srv.Respond(providertest.TokenPath, providertest.Response{Status: http.StatusUnauthorized, Body: `{"error":"invalid_client"}`})
	e := newServer(t, srv)

	rec := get(e, "/api/flight-capacity?carrier=LH&number=400&date=2025-12-01")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_client")
}

func TestFlights(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	rec := get(e, "/api/flights?origin=fra&destination=jfk&date=2025-12-01&adults=2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool              `json:"success"`
		Query   map[string]any    `json:"query"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "FRA", body.Query["origin"])
	require.EqualValues(t, 2, body.Query["adults"])
	require.Len(t, body.Data, 4)
	require.Equal(t, "2", srv.Queries(providertest.FlightOffersPath)[0].Get("adults"))
}

func TestFlightsValidation(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	for _, target := range []string{
		"/api/flights?origin=FRA&destination=JFK&date=01-12-2025",
		"/api/flights?origin=FR&destination=JFK&date=2025-12-01",
		"/api/flights?origin=FRA&destination=JFK&date=2025-12-01&adults=many",
		"/api/flights?origin=FRA&destination=JFK&date=2025-12-01&adults=10",
	} {
		rec := get(e, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		require.Contains(t, rec.Body.String(), `"error"`)
	}
	require.Zero(t, srv.TotalCalls())
}

func TestFlightStatus(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	rec := get(e, "/api/flight-status?carrier=lh&number=400&date=2025-12-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Query   map[string]string `json:"query"`
		Data    json.RawMessage   `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "LH400", body.Query["flightCode"])
	require.JSONEq(t, scheduleLH400, string(body.Data))

	rec = get(e, "/api/flight-status?carrier=lh&number=abc&date=2025-12-01")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	rec := get(e, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "flight-capacity-api", body["service"])
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newStub()
	defer srv.Close()
	e := newServer(t, srv)

	rec := get(e, "/api/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error              string   `json:"error"`
		AvailableEndpoints []string `json:"availableEndpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Endpoint not found", body.Error)
	require.Equal(t, handler.AvailableEndpoints, body.AvailableEndpoints)
}
