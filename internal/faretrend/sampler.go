// Package faretrend samples the cheapest fare on each day around a date.
package faretrend

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/petarceklic/FlightCapacity/internal/filter"
	"github.com/petarceklic/FlightCapacity/internal/models"
	"github.com/petarceklic/FlightCapacity/internal/providers"
	"github.com/petarceklic/FlightCapacity/internal/timezone"
)

const (
	DefaultWindow  = 3
	DefaultTimeout = 5 * time.Second
)

type FareSource interface {
	FareSample(ctx context.Context, req providers.FareSampleRequest) (json.RawMessage, error)
}

type Config struct {
	// Window is the number of days sampled on each side of the center date.
	Window  int
	Timeout time.Duration
}

type Sampler struct {
	source FareSource
	config Config
	logger *zap.Logger
}

func NewSampler(source FareSource, config Config, logger *zap.Logger) *Sampler {
	if config.Window <= 0 {
		config.Window = DefaultWindow
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		source: source,
		config: config,
		logger: logger,
	}
}

// Sample returns one point per day from centerDate-Window to
// centerDate+Window in ascending order. A day whose lookup fails, times out
// or finds no matching offer gets a nil price; the other days are unaffected.
func (s *Sampler) Sample(ctx context.Context, origin, destination, centerDate, carrierCode string) []models.FareTrendPoint {
	span := 2*s.config.Window + 1
	points := make([]models.FareTrendPoint, 0, span)
	for offset := -s.config.Window; offset <= s.config.Window; offset++ {
		date, err := timezone.ShiftDate(centerDate, offset)
		if err != nil {
			s.logger.Warn("fare trend: invalid center date", zap.String("date", centerDate), zap.Error(err))
			return nil
		}
		points = append(points, models.FareTrendPoint{Date: date})
	}

	var wg sync.WaitGroup
	for i := range points {
		wg.Add(1)
		go func(p *models.FareTrendPoint) {
			defer wg.Done()
			p.Price, p.Currency = s.sampleDay(ctx, origin, destination, p.Date, carrierCode)
		}(&points[i])
	}
	wg.Wait()

	return points
}

func (s *Sampler) sampleDay(ctx context.Context, origin, destination, date, carrierCode string) (*float64, string) {
	dayCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	data, err := s.source.FareSample(dayCtx, providers.FareSampleRequest{
		Origin:      origin,
		Destination: destination,
		Date:        date,
		CarrierCode: carrierCode,
	})
	if err != nil {
		s.logger.Debug("fare trend: sample failed", zap.String("date", date), zap.Error(err))
		return nil, ""
	}

	offers, err := filter.DecodeOffers(data)
	if err != nil {
		s.logger.Debug("fare trend: malformed offers", zap.String("date", date), zap.Error(err))
		return nil, ""
	}

	amount, currency, ok := filter.Cheapest(offers, carrierCode)
	if !ok {
		return nil, ""
	}
	return &amount, currency
}
