package engine

import (
	"sort"

	"TradeReplay/internal/model"
)

// ProcessedDates is the set of dates already consumed in a replay session.
// A nil set is a valid empty set.
type ProcessedDates map[string]struct{}

// NewProcessedDates returns a set seeded with dates.
func NewProcessedDates(dates ...string) ProcessedDates {
	s := make(ProcessedDates, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// Has reports whether date was already consumed.
func (s ProcessedDates) Has(date string) bool {
	_, ok := s[date]
	return ok
}

// Len returns the number of consumed dates.
func (s ProcessedDates) Len() int { return len(s) }

// Clone returns an independent copy.
func (s ProcessedDates) Clone() ProcessedDates {
	c := make(ProcessedDates, len(s))
	for d := range s {
		c[d] = struct{}{}
	}
	return c
}

// Dates returns the consumed dates in ascending order.
func (s ProcessedDates) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// PriceIndex maps a date to its close.
type PriceIndex map[string]model.PricePoint

// NewPriceIndex builds the lookup from a fetched series. Later points win on
// duplicate dates; callers validate the series beforehand.
func NewPriceIndex(points []model.PricePoint) PriceIndex {
	idx := make(PriceIndex, len(points))
	for _, p := range points {
		idx[p.Date] = p
	}
	return idx
}
