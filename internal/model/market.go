package model

import "github.com/shopspring/decimal"

// DateLayout is the calendar-day layout used for every date identifier.
const DateLayout = "2006-01-02"

// PricePoint is a single daily close.
type PricePoint struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PriceSeries holds a fetched close series for one symbol, ascending by date.
type PriceSeries struct {
	Symbol string
	Start  string
	End    string
	Points []PricePoint
}
