package notifier

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"TradeReplay/internal/engine"
	"TradeReplay/internal/model"
	"TradeReplay/internal/session"
)

// Formatter renders session state as chat-friendly text.
type Formatter struct {
	Currency string // ISO 4217 code, e.g. "USD"
	MaxRows  int    // ledger rows shown, 0 means all
}

// NewFormatter creates a Formatter for currency.
func NewFormatter(currency string) *Formatter {
	if currency == "" {
		currency = money.USD
	}
	return &Formatter{Currency: currency, MaxRows: 20}
}

// Amount formats v in the formatter's currency.
func (f *Formatter) Amount(v decimal.Decimal) string {
	// money.New never returns a nil currency, unknown codes get a generic one
	cur := *money.New(0, f.Currency).Currency()
	minor := v.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// FormatPortfolio formats cash, shares, valuation and profit.
func (f *Formatter) FormatPortfolio(st *session.State) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💼 <b>Portfolio</b> | %s %s..%s\n\n", st.Symbol, st.Start, st.End))
	b.WriteString(fmt.Sprintf("Cash: %s\n", f.Amount(st.Portfolio.Cash)))
	b.WriteString(fmt.Sprintf("Shares: %d\n", st.Portfolio.Shares))
	b.WriteString(fmt.Sprintf("Value: %s\n", f.Amount(st.Portfolio.CurrentValue)))
	b.WriteString(fmt.Sprintf("Profit/Loss: %s (%s%%)\n", f.signed(st.Summary.ProfitLoss), st.Summary.ReturnPct.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Realized: %s\n", f.signed(st.Summary.RealizedProfit)))
	if st.Portfolio.Shares > 0 {
		b.WriteString(fmt.Sprintf("Open cost: %s\n", f.Amount(st.Summary.OpenCost)))
	}
	b.WriteString(fmt.Sprintf("Max drawdown: %s%%\n", st.Summary.MaxDrawdownPct.StringFixed(2)))
	return b.String()
}

// FormatLedger formats the most recent transactions, oldest first.
func (f *Formatter) FormatLedger(ledger []model.TransactionRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📒 <b>Transactions</b> (%d)\n", len(ledger)))
	if len(ledger) == 0 {
		b.WriteString("  none\n")
		return b.String()
	}
	rows := ledger
	if f.MaxRows > 0 && len(rows) > f.MaxRows {
		b.WriteString(fmt.Sprintf("  … %d earlier\n", len(rows)-f.MaxRows))
		rows = rows[len(rows)-f.MaxRows:]
	}
	for _, tx := range rows {
		b.WriteString(fmt.Sprintf("  %s %-4s %s\n", tx.Date, tx.Action, f.Amount(tx.Price)))
	}
	return b.String()
}

// FormatReplayReport formats the outcome of one replay call plus the session state.
func (f *Formatter) FormatReplayReport(res *engine.Result, st *session.State) string {
	counts := make(map[model.Status]int)
	for _, o := range res.Outcomes {
		counts[o.Status]++
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Replay</b> | %d predictions, %d executed\n", len(res.Outcomes), res.Executed()))
	for _, s := range []model.Status{
		model.StatusSkippedDuplicate,
		model.StatusSkippedNoPrice,
		model.StatusInsufficientCash,
		model.StatusInsufficientShare,
		model.StatusNoAction,
	} {
		if n := counts[s]; n > 0 {
			b.WriteString(fmt.Sprintf("  %s: %d\n", s, n))
		}
	}
	b.WriteString("\n")
	b.WriteString(f.FormatPortfolio(st))
	b.WriteString("\n")
	b.WriteString(f.FormatLedger(st.Ledger))
	return b.String()
}

func (f *Formatter) signed(v decimal.Decimal) string {
	if v.IsPositive() {
		return "+" + f.Amount(v)
	}
	return f.Amount(v)
}
