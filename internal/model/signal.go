package model

import "strings"

// Action is a predicted trading action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
	ActionNone Action = ""
)

// ParseAction normalizes an upstream action label. Unknown labels are kept
// as-is (upper-cased) so the engine can treat them as no-ops.
func ParseAction(s string) Action {
	return Action(strings.ToUpper(strings.TrimSpace(s)))
}

// Prediction is one model output for a date.
type Prediction struct {
	Date   string `json:"date"`
	Action Action `json:"action"`
}

// Status tags what happened to a single prediction during a replay.
type Status string

const (
	StatusExecuted          Status = "EXECUTED"
	StatusSkippedDuplicate  Status = "SKIPPED_DUPLICATE"
	StatusSkippedNoPrice    Status = "SKIPPED_NO_PRICE"
	StatusInsufficientCash  Status = "SKIPPED_INSUFFICIENT_CASH"
	StatusInsufficientShare Status = "SKIPPED_NO_SHARES"
	StatusNoAction          Status = "NO_ACTION"
)

// Skipped reports whether the prediction was rejected rather than acted on
// or ignored as a hold.
func (s Status) Skipped() bool {
	return s != StatusExecuted && s != StatusNoAction
}
