package collector

import (
	"errors"
	"fmt"
	"time"

	"TradeReplay/internal/model"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidPrice  = errors.New("invalid price")
	ErrDuplicateDate = errors.New("duplicate price date")
	ErrUnordered     = errors.New("price series not ascending")
)

// ValidatePrices rejects a series the engine cannot safely index: bad dates,
// negative closes, repeated dates or descending order.
func ValidatePrices(points []model.PricePoint) error {
	var prev time.Time
	for i, p := range points {
		t, err := time.Parse(model.DateLayout, p.Date)
		if err != nil {
			return fmt.Errorf("price %d: %w: %q", i, ErrInvalidDate, p.Date)
		}
		if p.Close.IsNegative() {
			return fmt.Errorf("price %d (%s): %w: %s", i, p.Date, ErrInvalidPrice, p.Close)
		}
		if i > 0 {
			switch {
			case t.Equal(prev):
				return fmt.Errorf("price %d: %w: %s", i, ErrDuplicateDate, p.Date)
			case t.Before(prev):
				return fmt.Errorf("price %d: %w: %s after %s", i, ErrUnordered, p.Date, prev.Format(model.DateLayout))
			}
		}
		prev = t
	}
	return nil
}

// ValidatePredictions checks prediction dates. Repeated dates are allowed;
// the engine consumes each date once.
func ValidatePredictions(preds []model.Prediction) error {
	for i, p := range preds {
		if _, err := time.Parse(model.DateLayout, p.Date); err != nil {
			return fmt.Errorf("prediction %d: %w: %q", i, ErrInvalidDate, p.Date)
		}
	}
	return nil
}
