package calculator

import (
	"errors"

	"TradeReplay/internal/model"
)

// SMASeries returns the rolling SMA aligned with prices. Entries before the
// first full window are zero.
func SMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// ExtractCloses converts price points to floats for indicator math.
func ExtractCloses(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close.InexactFloat64()
	}
	return closes
}
