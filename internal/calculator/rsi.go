package calculator

import "errors"

// neutralRSI is reported while fewer than period+1 closes are available.
const neutralRSI = 50.0

// RSISeries returns the Wilder-smoothed RSI at every index of closes. Indices
// before the first full window hold neutralRSI.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = neutralRSI
	}
	if len(closes) <= period {
		return out, nil
	}

	n := float64(period)
	var gain, loss float64
	for i := 1; i <= period; i++ {
		up, down := split(closes[i] - closes[i-1])
		gain += up
		loss += down
	}
	gain /= n
	loss /= n
	out[period] = strength(gain, loss)

	for i := period + 1; i < len(closes); i++ {
		up, down := split(closes[i] - closes[i-1])
		gain = (gain*(n-1) + up) / n
		loss = (loss*(n-1) + down) / n
		out[i] = strength(gain, loss)
	}
	return out, nil
}

func split(change float64) (up, down float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func strength(gain, loss float64) float64 {
	if loss == 0 {
		return 100
	}
	return 100 - 100/(1+gain/loss)
}
