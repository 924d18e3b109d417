package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"TradeReplay/internal/engine"
	"TradeReplay/internal/model"
	"TradeReplay/internal/recorder"
)

// ErrNoSession is returned by Apply before any session was started.
var ErrNoSession = errors.New("no active replay session")

// ErrSessionReplaced is returned by ApplyTo when a newer session has started.
var ErrSessionReplaced = errors.New("replay session replaced")

// State is a copy of a session's current state.
type State struct {
	ID           string
	Symbol       string
	Start        string
	End          string
	StartingCash decimal.Decimal
	Portfolio    model.Portfolio
	Ledger       []model.TransactionRecord
	Outcomes     []model.Outcome
	Processed    engine.ProcessedDates
	Summary      engine.Summary
}

type session struct {
	id        string
	series    model.PriceSeries
	prices    engine.PriceIndex
	portfolio model.Portfolio
	ledger    []model.TransactionRecord
	outcomes  []model.Outcome
	processed engine.ProcessedDates
}

// Manager owns the current replay session. Starting a new session discards
// the previous one; replays are serialized so two batches never interleave
// on one portfolio.
type Manager struct {
	mu           sync.Mutex
	startingCash decimal.Decimal
	rec          recorder.Recorder
	cur          *session
}

// NewManager creates a Manager. A nil recorder disables the audit trail.
func NewManager(startingCash decimal.Decimal, rec recorder.Recorder) *Manager {
	if !startingCash.IsPositive() {
		startingCash = model.DefaultStartingCash
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Manager{startingCash: startingCash, rec: rec}
}

// Start begins a fresh session over series and returns its id. Portfolio,
// ledger and processed dates all start empty.
func (m *Manager) Start(series model.PriceSeries) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start(series).id
}

func (m *Manager) start(series model.PriceSeries) *session {
	s := &session{
		id:        uuid.NewString(),
		series:    series,
		prices:    engine.NewPriceIndex(series.Points),
		portfolio: model.NewPortfolio(m.startingCash),
		processed: engine.NewProcessedDates(),
	}
	if m.cur != nil {
		log.Printf("[INFO] discarding session %s (%s) for new session on %s", m.cur.id, m.cur.series.Symbol, series.Symbol)
	}
	m.cur = s

	if err := m.rec.RecordSession(&recorder.SessionEvent{
		SessionID:    s.id,
		Symbol:       series.Symbol,
		StartDate:    series.Start,
		EndDate:      series.End,
		PricePoints:  len(series.Points),
		StartingCash: m.startingCash.String(),
	}); err != nil {
		log.Printf("[ERROR] record session: %v", err)
	}
	log.Printf("[INFO] session %s started: %s %s..%s, %d closes", s.id, series.Symbol, series.Start, series.End, len(series.Points))
	return s
}

// Apply replays one prediction batch against the current session.
func (m *Manager) Apply(predictions []model.Prediction) (engine.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		return engine.Result{}, ErrNoSession
	}
	return m.apply(m.cur, predictions), nil
}

// ApplyTo replays a batch against the session with the given id. It fails
// with ErrSessionReplaced once another session has started.
func (m *Manager) ApplyTo(id string, predictions []model.Prediction) (engine.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		return engine.Result{}, ErrNoSession
	}
	if m.cur.id != id {
		return engine.Result{}, fmt.Errorf("apply to %s: %w by %s", id, ErrSessionReplaced, m.cur.id)
	}
	return m.apply(m.cur, predictions), nil
}

// Run starts a fresh session over series and replays predictions into it
// under one lock, returning the result and the resulting state.
func (m *Manager) Run(series model.PriceSeries, predictions []model.Prediction) (engine.Result, State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.start(series)
	res := m.apply(s, predictions)
	return res, m.snapshot(s)
}

func (m *Manager) apply(s *session, predictions []model.Prediction) engine.Result {
	res := engine.Replay(s.prices, predictions, s.portfolio, s.processed)
	s.portfolio = res.Portfolio
	s.processed = res.Processed
	s.ledger = append(s.ledger, res.Transactions...)
	s.outcomes = append(s.outcomes, res.Outcomes...)

	sum := engine.Summarize(m.startingCash, s.portfolio, s.ledger, s.outcomes)
	if err := m.rec.RecordReplay(&recorder.ReplayEvent{
		SessionID:    s.id,
		Outcomes:     res.Outcomes,
		Transactions: res.Transactions,
		Portfolio:    s.portfolio,
		Summary:      sum,
	}); err != nil {
		log.Printf("[ERROR] record replay: %v", err)
	}

	log.Printf("[INFO] session %s: replayed %d predictions, %d trades, value %s",
		s.id, len(predictions), len(res.Transactions), s.portfolio.CurrentValue.StringFixed(2))
	return res
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		return State{}, ErrNoSession
	}
	return m.snapshot(m.cur), nil
}

func (m *Manager) snapshot(s *session) State {
	return State{
		ID:           s.id,
		Symbol:       s.series.Symbol,
		Start:        s.series.Start,
		End:          s.series.End,
		StartingCash: m.startingCash,
		Portfolio:    s.portfolio,
		Ledger:       append([]model.TransactionRecord(nil), s.ledger...),
		Outcomes:     append([]model.Outcome(nil), s.outcomes...),
		Processed:    s.processed.Clone(),
		Summary:      engine.Summarize(m.startingCash, s.portfolio, s.ledger, s.outcomes),
	}
}

// StartingCash returns the balance each session begins with.
func (m *Manager) StartingCash() decimal.Decimal {
	return m.startingCash
}

func (s State) String() string {
	return fmt.Sprintf("%s cash=%s shares=%d value=%s trades=%d",
		s.Symbol, s.Portfolio.Cash.StringFixed(2), s.Portfolio.Shares,
		s.Portfolio.CurrentValue.StringFixed(2), len(s.Ledger))
}
