package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petarceklic/FlightCapacity/internal/filter"
	"github.com/petarceklic/FlightCapacity/internal/ratelimit"
)

const (
	TestBaseURL       = "https://test.api.amadeus.com"
	ProductionBaseURL = "https://api.amadeus.com"

	TokenPath           = "/v1/security/oauth2/token"
	schedulePath        = "/v2/schedule/flights"
	flightOffersPath    = "/v2/shopping/flight-offers"
	airlinesPath        = "/v1/reference-data/airlines"
	aircraftPath        = "/v1/reference-data/aircraft"
	delayPredictionPath = "/v1/travel/predictions/flight-delay"
)

// BaseURLFor maps the environment selector to the provider host.
func BaseURLFor(environment string) string {
	if strings.EqualFold(environment, "production") || strings.EqualFold(environment, "prod") {
		return ProductionBaseURL
	}
	return TestBaseURL
}

type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type AmadeusConfig struct {
	BaseURL      string
	MaxOffers    int
	SampleOffers int
	Limiter      *ratelimit.OperationLimiter
}

// AmadeusClient is the HTTP implementation of Gateway.
type AmadeusClient struct {
	baseURL      string
	maxOffers    int
	sampleOffers int
	client       *http.Client
	tokens       TokenProvider
	limiter      *ratelimit.OperationLimiter
	logger       *zap.Logger
}

func NewAmadeusClient(cfg AmadeusConfig, client *http.Client, tokens TokenProvider, logger *zap.Logger) *AmadeusClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = TestBaseURL
	}
	if cfg.MaxOffers <= 0 {
		cfg.MaxOffers = 50
	}
	if cfg.SampleOffers <= 0 {
		cfg.SampleOffers = 5
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmadeusClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		maxOffers:    cfg.MaxOffers,
		sampleOffers: cfg.SampleOffers,
		client:       client,
		tokens:       tokens,
		limiter:      cfg.Limiter,
		logger:       logger,
	}
}

func (c *AmadeusClient) ScheduleLookup(ctx context.Context, carrierCode, flightNumber, date string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("carrierCode", carrierCode)
	params.Set("flightNumber", flightNumber)
	params.Set("scheduledDepartureDate", date)

	return c.get(ctx, OpSchedule, schedulePath, params)
}

func (c *AmadeusClient) AvailabilitySearch(ctx context.Context, req AvailabilityRequest) (json.RawMessage, error) {
	adults := req.Adults
	if adults <= 0 {
		adults = 1
	}

	params := url.Values{}
	params.Set("originLocationCode", req.Origin)
	params.Set("destinationLocationCode", req.Destination)
	params.Set("departureDate", req.Date)
	params.Set("adults", strconv.Itoa(adults))
	params.Set("max", strconv.Itoa(c.maxOffers))
	if req.CarrierCode != "" {
		params.Set("includedAirlineCodes", req.CarrierCode)
	}

	data, err := c.get(ctx, OpAvailability, flightOffersPath, params)
	if err != nil {
		return nil, err
	}

	if req.CarrierCode == "" || req.FlightNumber == "" {
		return data, nil
	}

	filtered, err := filter.MatchFlight(data, req.CarrierCode, req.FlightNumber)
	if err != nil {
		return nil, &UpstreamError{Operation: OpAvailability, StatusCode: http.StatusOK, Body: string(data), Err: fmt.Errorf("malformed offers: %w", err)}
	}
	return filtered, nil
}

func (c *AmadeusClient) AirlineLookup(ctx context.Context, airlineCode string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("airlineCodes", airlineCode)

	data, err := c.get(ctx, OpAirline, airlinesPath, params)
	if err != nil {
		return nil, err
	}
	return firstEntry(OpAirline, data)
}

func (c *AmadeusClient) AircraftLookup(ctx context.Context, aircraftCode string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("aircraftCode", aircraftCode)

	data, err := c.get(ctx, OpAircraft, aircraftPath, params)
	if err != nil {
		return nil, err
	}
	return firstEntry(OpAircraft, data)
}

func (c *AmadeusClient) DelayPrediction(ctx context.Context, req DelayRequest) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("originLocationCode", req.Origin)
	params.Set("destinationLocationCode", req.Destination)
	params.Set("departureDate", req.DepartureDate)
	params.Set("departureTime", req.DepartureTime)
	params.Set("arrivalDate", req.ArrivalDate)
	params.Set("arrivalTime", req.ArrivalTime)
	params.Set("aircraftCode", req.AircraftCode)
	params.Set("carrierCode", req.CarrierCode)
	params.Set("flightNumber", req.FlightNumber)
	params.Set("duration", req.Duration)

	return c.get(ctx, OpDelayPrediction, delayPredictionPath, params)
}

func (c *AmadeusClient) FareSample(ctx context.Context, req FareSampleRequest) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("originLocationCode", req.Origin)
	params.Set("destinationLocationCode", req.Destination)
	params.Set("departureDate", req.Date)
	params.Set("adults", "1")
	params.Set("max", strconv.Itoa(c.sampleOffers))
	if req.CarrierCode != "" {
		params.Set("includedAirlineCodes", req.CarrierCode)
	}

	return c.get(ctx, OpFareSample, flightOffersPath, params)
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *AmadeusClient) get(ctx context.Context, operation, path string, params url.Values) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx, operation); err != nil {
		return nil, NewUpstreamError(operation, err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewUpstreamError(operation, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewUpstreamError(operation, fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", zap.String("operation", operation), zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("provider call",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("malformed response body: %w", err)}
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return json.RawMessage("[]"), nil
	}

	return env.Data, nil
}

func firstEntry(operation string, data json.RawMessage) (json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		// Some reference endpoints answer with a single object.
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			return data, nil
		}
		return nil, NewUpstreamError(operation, fmt.Errorf("malformed reference data: %w", err))
	}
	if len(entries) == 0 {
		return nil, NewUpstreamError(operation, ErrNotFound)
	}
	return entries[0], nil
}
