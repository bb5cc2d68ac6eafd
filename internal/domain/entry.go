package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry represents a single general-ledger line (debit or credit) on one account.
type Entry struct {
	Date        time.Time
	ID          string
	AccountCode string
	JournalCode string
	Label       string
	Piece       string
	Lettrage    string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
}

// Net returns debit minus credit.
func (e Entry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// IsLettered reports whether the line carries a reconciliation code.
func (e Entry) IsLettered() bool {
	return e.Lettrage != ""
}

// Status derives the reconciliation status of a ledger line from its lettrage.
func (e Entry) Status() TransactionStatus {
	if e.IsLettered() {
		return StatusReconciled
	}
	return StatusUnreconciled
}

// LedgerSummary is the totals row of a ledger view.
type LedgerSummary struct {
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	Balance         decimal.Decimal
	Count           int
	LetteredCount   int
	UnletteredCount int
}

// SummarizeEntries totals debits and credits of the given lines.
func SummarizeEntries(entries []Entry) LedgerSummary {
	summary := LedgerSummary{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Balance:     decimal.Zero,
	}

	for _, e := range entries {
		summary.TotalDebit = summary.TotalDebit.Add(e.Debit)
		summary.TotalCredit = summary.TotalCredit.Add(e.Credit)
		summary.Count++
		if e.IsLettered() {
			summary.LetteredCount++
		} else {
			summary.UnletteredCount++
		}
	}

	summary.Balance = summary.TotalDebit.Sub(summary.TotalCredit)

	return summary
}
