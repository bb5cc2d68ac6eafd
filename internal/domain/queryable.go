package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func (t Transaction) QueryDate() time.Time           { return t.Date }
func (t Transaction) QueryAmount() decimal.Decimal   { return t.Amount }
func (t Transaction) QueryText() string              { return t.Description }
func (t Transaction) QueryCategory() string          { return t.Category }
func (t Transaction) QueryStatus() TransactionStatus { return t.Status }
func (t Transaction) QueryLettrage() string          { return t.Lettrage }

// SortKey implements Queryable.
func (t Transaction) SortKey(field SortField) (SortKey, bool) {
	switch field {
	case SortByID:
		return TextKey(t.ID), true
	case SortByDate:
		return DateKey(t.Date), true
	case SortByAmount:
		return NumberKey(t.Amount), true
	case SortByDescription, SortByLabel:
		return TextKey(t.Description), true
	case SortByCategory, SortByJournal:
		return TextKey(t.Category), true
	case SortByStatus:
		return TextKey(string(t.Status)), true
	case SortByCounterparty:
		return TextKey(t.Counterparty), true
	case SortByLettrage:
		return TextKey(t.Lettrage), true
	case SortByAccount:
		return TextKey(t.BankAccount), true
	default:
		return SortKey{}, false
	}
}

func (e Entry) QueryDate() time.Time           { return e.Date }
func (e Entry) QueryAmount() decimal.Decimal   { return e.Net() }
func (e Entry) QueryText() string              { return e.Label }
func (e Entry) QueryCategory() string          { return e.JournalCode }
func (e Entry) QueryStatus() TransactionStatus { return e.Status() }
func (e Entry) QueryLettrage() string          { return e.Lettrage }

// SortKey implements Queryable.
func (e Entry) SortKey(field SortField) (SortKey, bool) {
	switch field {
	case SortByID:
		return TextKey(e.ID), true
	case SortByDate:
		return DateKey(e.Date), true
	case SortByAmount:
		return NumberKey(e.Net()), true
	case SortByDescription, SortByLabel:
		return TextKey(e.Label), true
	case SortByCategory, SortByJournal:
		return TextKey(e.JournalCode), true
	case SortByStatus:
		return TextKey(string(e.Status())), true
	case SortByLettrage:
		return TextKey(e.Lettrage), true
	case SortByDebit:
		return NumberKey(e.Debit), true
	case SortByCredit:
		return NumberKey(e.Credit), true
	case SortByBalance:
		return NumberKey(e.Balance), true
	case SortByPiece:
		return TextKey(e.Piece), true
	case SortByAccount:
		return TextKey(e.AccountCode), true
	default:
		return SortKey{}, false
	}
}
