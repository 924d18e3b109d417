package collector

import (
	"context"
	"time"

	"TradeReplay/internal/model"
)

// PriceFetcher returns the daily close series for symbol between start and
// end, ascending by date.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}

// PredictionBatch is one response from a prediction service.
type PredictionBatch struct {
	Predictions []model.Prediction
	Chart       []byte // rendered chart, opaque
}

// Predictor turns a price series into a prediction sequence.
type Predictor interface {
	Predict(ctx context.Context, symbol string, prices []model.PricePoint) (*PredictionBatch, error)
	Name() string
}

// Trainer asks the model service to (re)train for a symbol and range.
type Trainer interface {
	Train(ctx context.Context, symbol string, start, end time.Time) (string, error)
}
