package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"TradeReplay/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Points []model.PricePoint
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrices(_ context.Context, _ string, start, end time.Time) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Points != nil {
		return m.Points, nil
	}
	return generateMockPoints(m.Price, start, end), nil
}

// generateMockPoints yields one close per weekday in [start, end).
func generateMockPoints(basePrice float64, start, end time.Time) []model.PricePoint {
	var points []model.PricePoint
	i := 0
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%20-10)*0.005)
		points = append(points, model.PricePoint{
			Date:  day.Format(model.DateLayout),
			Close: decimal.NewFromFloat(p).Round(2),
		})
		i++
	}
	return points
}

// MockPredictor returns a fixed batch, or cycles Actions over the input dates.
type MockPredictor struct {
	Batch   *PredictionBatch
	Actions []model.Action
	Err     error
}

func (m *MockPredictor) Name() string { return "mock" }

func (m *MockPredictor) Predict(_ context.Context, _ string, prices []model.PricePoint) (*PredictionBatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Batch != nil {
		return m.Batch, nil
	}
	out := &PredictionBatch{Predictions: make([]model.Prediction, len(prices))}
	for i, p := range prices {
		var a model.Action
		if len(m.Actions) > 0 {
			a = m.Actions[i%len(m.Actions)]
		}
		out.Predictions[i] = model.Prediction{Date: p.Date, Action: a}
	}
	return out, nil
}

// Batch is a validated price series with the predictions made from it.
type Batch struct {
	Series      model.PriceSeries
	Predictions []model.Prediction
	Chart       []byte
}

// Collector orchestrates price fetching, optional training and prediction.
type Collector struct {
	Fetcher   PriceFetcher
	Predictor Predictor
	Trainer   Trainer // nil disables training
}

// NewCollector creates a new Collector.
func NewCollector(fetcher PriceFetcher, predictor Predictor, trainer Trainer) *Collector {
	return &Collector{Fetcher: fetcher, Predictor: predictor, Trainer: trainer}
}

// Collect fetches prices, optionally trains, then predicts. Both series are
// validated before returning so a replay never starts on malformed input.
func (c *Collector) Collect(ctx context.Context, symbol string, start, end time.Time, train bool) (*Batch, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("collect %s: end %s is not after start %s", symbol,
			end.Format(model.DateLayout), start.Format(model.DateLayout))
	}

	points, err := c.Fetcher.FetchPrices(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	if err := ValidatePrices(points); err != nil {
		return nil, fmt.Errorf("validate prices: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("fetch prices: no data for %s", symbol)
	}
	log.Printf("[INFO] fetched %d closes for %s from %s", len(points), symbol, c.Fetcher.Name())

	if train {
		if c.Trainer == nil {
			log.Printf("[WARN] training requested but no trainer configured, skipping")
		} else {
			msg, err := c.Trainer.Train(ctx, symbol, start, end)
			if err != nil {
				return nil, fmt.Errorf("train model: %w", err)
			}
			log.Printf("[INFO] train model: %s", msg)
		}
	}

	pb, err := c.Predictor.Predict(ctx, symbol, points)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if err := ValidatePredictions(pb.Predictions); err != nil {
		return nil, fmt.Errorf("validate predictions: %w", err)
	}
	log.Printf("[INFO] received %d predictions from %s", len(pb.Predictions), c.Predictor.Name())

	return &Batch{
		Series: model.PriceSeries{
			Symbol: symbol,
			Start:  start.Format(model.DateLayout),
			End:    end.Format(model.DateLayout),
			Points: points,
		},
		Predictions: pb.Predictions,
		Chart:       pb.Chart,
	}, nil
}
