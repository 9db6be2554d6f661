package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petarceklic/FlightCapacity/internal/capacity"
	"github.com/petarceklic/FlightCapacity/internal/faretrend"
	"github.com/petarceklic/FlightCapacity/internal/filter"
	"github.com/petarceklic/FlightCapacity/internal/models"
	"github.com/petarceklic/FlightCapacity/internal/providers"
	"github.com/petarceklic/FlightCapacity/internal/route"
)

type Config struct {
	// RequiredTimeout bounds route resolution plus the schedule and
	// availability calls.
	RequiredTimeout time.Duration
	// OptionalTimeout bounds each best-effort call.
	OptionalTimeout time.Duration
	// MaxRetries applies to required calls only. Zero disables retries.
	MaxRetries  int
	RetryDelays []time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequiredTimeout: 30 * time.Second,
		OptionalTimeout: 10 * time.Second,
		MaxRetries:      0,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
	}
}

type Aggregator struct {
	gateway  providers.Gateway
	resolver *route.Resolver
	sampler  *faretrend.Sampler
	config   Config
	logger   *zap.Logger
}

func NewAggregator(gateway providers.Gateway, sampler *faretrend.Sampler, config Config, logger *zap.Logger) *Aggregator {
	defaults := DefaultConfig()
	if config.RequiredTimeout <= 0 {
		config.RequiredTimeout = defaults.RequiredTimeout
	}
	if config.OptionalTimeout <= 0 {
		config.OptionalTimeout = defaults.OptionalTimeout
	}
	if len(config.RetryDelays) == 0 {
		config.RetryDelays = defaults.RetryDelays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sampler == nil {
		sampler = faretrend.NewSampler(gateway, faretrend.Config{}, logger)
	}
	return &Aggregator{
		gateway:  gateway,
		resolver: route.NewResolver(gateway),
		sampler:  sampler,
		config:   config,
		logger:   logger,
	}
}

// Result is the outcome of a best-effort call: a value, or the reason the
// value is absent.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// GetCapacity answers "how full is this flight". The schedule and the
// availability are required and any failure there fails the whole call.
// Airline, aircraft, delay prediction and fare trend are best effort and
// are left out of the answer when they fail.
func (a *Aggregator) GetCapacity(ctx context.Context, q models.FlightQuery) (*models.Capacity, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	requiredCtx, cancelRequired := context.WithTimeout(ctx, a.config.RequiredTimeout)
	defer cancelRequired()

	var schedule json.RawMessage
	if !q.HasRoute() {
		res, err := retry(requiredCtx, a, providers.OpSchedule, func(ctx context.Context) (*route.Resolution, error) {
			return a.resolver.Resolve(ctx, q.CarrierCode, q.FlightNumber, q.Date)
		})
		if err != nil {
			return nil, err
		}
		q.Origin = res.Route.Origin
		q.Destination = res.Route.Destination
		schedule = res.Schedule
	}

	// Airline and fare trend only need the route, so they run alongside
	// the required calls.
	optionalCtx, cancelOptional := context.WithCancel(ctx)
	defer cancelOptional()

	var (
		wg      sync.WaitGroup
		airline Result[json.RawMessage]
		trend   Result[[]models.FareTrendPoint]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		airline = a.bestEffort(optionalCtx, providers.OpAirline, func(ctx context.Context) (json.RawMessage, error) {
			return a.gateway.AirlineLookup(ctx, q.CarrierCode)
		})
	}()
	go func() {
		defer wg.Done()
		trend = Result[[]models.FareTrendPoint]{
			Value: a.sampler.Sample(optionalCtx, q.Origin, q.Destination, q.Date, q.CarrierCode),
		}
	}()

	var availability json.RawMessage
	g, gctx := errgroup.WithContext(requiredCtx)
	if schedule == nil {
		g.Go(func() error {
			var err error
			schedule, err = retry(gctx, a, providers.OpSchedule, func(ctx context.Context) (json.RawMessage, error) {
				return a.gateway.ScheduleLookup(ctx, q.CarrierCode, q.FlightNumber, q.Date)
			})
			return err
		})
	}
	g.Go(func() error {
		var err error
		availability, err = retry(gctx, a, providers.OpAvailability, func(ctx context.Context) (json.RawMessage, error) {
			return a.gateway.AvailabilitySearch(ctx, providers.AvailabilityRequest{
				Origin:       q.Origin,
				Destination:  q.Destination,
				Date:         q.Date,
				Adults:       1,
				CarrierCode:  q.CarrierCode,
				FlightNumber: q.FlightNumber,
			})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		cancelOptional()
		wg.Wait()
		return nil, err
	}

	flights, err := models.DecodeSchedule(schedule)
	if err != nil {
		a.logger.Warn("schedule payload not readable", zap.String("flight", q.FlightCode()), zap.Error(err))
	}
	offers, err := filter.DecodeOffers(availability)
	if err != nil {
		a.logger.Warn("availability payload not readable", zap.String("flight", q.FlightCode()), zap.Error(err))
	}

	aircraftCode := aircraftFromSchedule(flights)
	if aircraftCode == "" {
		for _, o := range offers {
			if aircraftCode = o.AircraftCode(); aircraftCode != "" {
				break
			}
		}
	}

	var aircraft, delay Result[json.RawMessage]
	wg.Add(2)
	go func() {
		defer wg.Done()
		if aircraftCode == "" {
			aircraft.Err = errNotAttempted
			return
		}
		aircraft = a.bestEffort(optionalCtx, providers.OpAircraft, func(ctx context.Context) (json.RawMessage, error) {
			return a.gateway.AircraftLookup(ctx, aircraftCode)
		})
	}()
	go func() {
		defer wg.Done()
		req, ok := delayRequest(q, flights, aircraftCode)
		if !ok {
			delay.Err = errNotAttempted
			return
		}
		delay = a.bestEffort(optionalCtx, providers.OpDelayPrediction, func(ctx context.Context) (json.RawMessage, error) {
			return a.gateway.DelayPrediction(ctx, req)
		})
	}()
	wg.Wait()

	result := &models.Capacity{
		Query:        models.NewCapacityQuery(q),
		Schedule:     nonNullArray(schedule),
		Availability: nonNullArray(availability),
		Summary:      capacity.Summarize(offers, aircraftCode, q.CarrierCode),
	}
	if airline.OK() {
		result.Airline = airline.Value
	}
	if aircraft.OK() {
		result.Aircraft = aircraft.Value
	}
	if delay.OK() {
		result.DelayPrediction = delay.Value
	}
	if trend.OK() && len(trend.Value) > 0 {
		result.FareTrend = trend.Value
	}

	return result, nil
}

var errNotAttempted = errors.New("not attempted")

func (a *Aggregator) bestEffort(ctx context.Context, operation string, call func(context.Context) (json.RawMessage, error)) Result[json.RawMessage] {
	callCtx, cancel := context.WithTimeout(ctx, a.config.OptionalTimeout)
	defer cancel()

	value, err := call(callCtx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.logger.Warn("optional provider call failed", zap.String("operation", operation), zap.Error(err))
		}
		return Result[json.RawMessage]{Err: err}
	}
	return Result[json.RawMessage]{Value: value}
}

// retry re-issues a required call on upstream failures only; validation,
// auth and route errors are returned at once.
func retry[T any](ctx context.Context, a *Aggregator, operation string, call func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, providers.NewUpstreamError(operation, ctx.Err())
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(a.config.RetryDelays) {
				delayIdx = len(a.config.RetryDelays) - 1
			}

			select {
			case <-time.After(a.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return zero, lastErr
			}
		}

		value, err := call(ctx)
		if err == nil {
			return value, nil
		}

		var upstreamErr *providers.UpstreamError
		if !errors.As(err, &upstreamErr) {
			return zero, err
		}

		lastErr = err
		if a.config.MaxRetries > 0 {
			a.logger.Warn("required provider call failed",
				zap.String("operation", operation),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
	}

	return zero, lastErr
}

func nonNullArray(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("[]")
	}
	return raw
}
