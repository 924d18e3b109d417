package recorder

import (
	"TradeReplay/internal/engine"
	"TradeReplay/internal/model"
)

// SessionEvent describes the start of a replay session.
type SessionEvent struct {
	SessionID    string
	Symbol       string
	StartDate    string
	EndDate      string
	PricePoints  int
	StartingCash string
}

// ReplayEvent holds everything produced by one replay call.
type ReplayEvent struct {
	SessionID    string
	Outcomes     []model.Outcome
	Transactions []model.TransactionRecord
	Portfolio    model.Portfolio
	Summary      engine.Summary
}

// Recorder persists an append-only audit trail of replays. Nothing is read
// back into a session.
type Recorder interface {
	RecordSession(evt *SessionEvent) error
	RecordReplay(evt *ReplayEvent) error
	Close() error
}
