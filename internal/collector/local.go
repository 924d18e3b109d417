package collector

import (
	"context"
	"fmt"

	"TradeReplay/internal/calculator"
	"TradeReplay/internal/model"
)

// SMAPredictor is an offline Predictor: BUY when the close crosses above its
// moving average, SELL when it crosses below, HOLD otherwise. With RSIPeriod
// set, BUYs are suppressed above RSIOverbought and SELLs below RSIOversold.
// Dates before the first full window get no action.
type SMAPredictor struct {
	Period        int
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
}

// NewSMAPredictor creates a crossover predictor with the given SMA period.
func NewSMAPredictor(period int) *SMAPredictor {
	return &SMAPredictor{Period: period, RSIOverbought: 70, RSIOversold: 30}
}

func (p *SMAPredictor) Name() string { return fmt.Sprintf("sma%d", p.Period) }

func (p *SMAPredictor) Predict(_ context.Context, _ string, prices []model.PricePoint) (*PredictionBatch, error) {
	closes := calculator.ExtractCloses(prices)
	sma, err := calculator.SMASeries(closes, p.Period)
	if err != nil {
		return nil, fmt.Errorf("sma predictor: %w", err)
	}
	var rsi []float64
	if p.RSIPeriod > 0 {
		if rsi, err = calculator.RSISeries(closes, p.RSIPeriod); err != nil {
			return nil, fmt.Errorf("sma predictor: %w", err)
		}
	}

	out := &PredictionBatch{Predictions: make([]model.Prediction, len(prices))}
	for i, pt := range prices {
		out.Predictions[i] = model.Prediction{Date: pt.Date, Action: model.ActionNone}
		if i < p.Period {
			continue // need the previous bar's average too
		}
		prevAbove := closes[i-1] > sma[i-1]
		above := closes[i] > sma[i]

		action := model.ActionHold
		switch {
		case above && !prevAbove:
			action = model.ActionBuy
		case !above && prevAbove:
			action = model.ActionSell
		}
		if rsi != nil {
			switch {
			case action == model.ActionBuy && rsi[i] > p.RSIOverbought:
				action = model.ActionHold
			case action == model.ActionSell && rsi[i] < p.RSIOversold:
				action = model.ActionHold
			}
		}
		out.Predictions[i].Action = action
	}
	return out, nil
}
