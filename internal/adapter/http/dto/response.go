package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// EntryResponse represents a ledger line in API responses.
type EntryResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	AccountCode string          `json:"account_code"`
	JournalCode string          `json:"journal_code"`
	Piece       string          `json:"piece"`
	Label       string          `json:"label"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	Lettrage    string          `json:"lettrage,omitempty"`
	Status      string          `json:"status"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e domain.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(DateLayout),
		AccountCode: e.AccountCode,
		JournalCode: e.JournalCode,
		Piece:       e.Piece,
		Label:       e.Label,
		Debit:       e.Debit,
		Credit:      e.Credit,
		Balance:     e.Balance,
		Lettrage:    e.Lettrage,
		Status:      string(e.Status()),
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []domain.Entry) []EntryResponse {
	result := make([]EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// SummaryResponse is the totals row of a ledger view.
type SummaryResponse struct {
	TotalDebit      decimal.Decimal `json:"total_debit"`
	TotalCredit     decimal.Decimal `json:"total_credit"`
	Balance         decimal.Decimal `json:"balance"`
	Count           int             `json:"count"`
	LetteredCount   int             `json:"lettered_count"`
	UnletteredCount int             `json:"unlettered_count"`
}

// LedgerResponse is one page of an account ledger.
type LedgerResponse struct {
	AccountCode    string          `json:"account_code"`
	Entries        []EntryResponse `json:"entries"`
	Summary        SummaryResponse `json:"summary"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Total          int             `json:"total"`
	Limit          int             `json:"limit"`
	Offset         int             `json:"offset"`
}

// LedgerFromPage converts a ledger page to response.
func LedgerFromPage(p *usecase.LedgerPage) *LedgerResponse {
	return &LedgerResponse{
		AccountCode: p.AccountCode,
		Entries:     EntriesFromDomain(p.Entries),
		Summary: SummaryResponse{
			TotalDebit:      p.Summary.TotalDebit,
			TotalCredit:     p.Summary.TotalCredit,
			Balance:         p.Summary.Balance,
			Count:           p.Summary.Count,
			LetteredCount:   p.Summary.LetteredCount,
			UnletteredCount: p.Summary.UnletteredCount,
		},
		ClosingBalance: p.ClosingBalance,
		Total:          p.Total,
		Limit:          p.Limit,
		Offset:         p.Offset,
	}
}

// PieceResponse lists the lines of one journal entry.
type PieceResponse struct {
	Piece   string          `json:"piece"`
	Entries []EntryResponse `json:"entries"`
}

// LettrageResponse describes an applied reconciliation code.
type LettrageResponse struct {
	AccountCode string          `json:"account_code"`
	Code        string          `json:"code"`
	EntryIDs    []string        `json:"entry_ids"`
	Total       decimal.Decimal `json:"total"`
}

// LettrageFromResult converts a lettrage result to response.
func LettrageFromResult(r *usecase.LettrageResult) *LettrageResponse {
	return &LettrageResponse{
		AccountCode: r.AccountCode,
		Code:        r.Code,
		EntryIDs:    r.EntryIDs,
		Total:       r.Total,
	}
}

// TransactionResponse represents a bank statement line in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	BankAccount   string          `json:"bank_account"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	Counterparty  string          `json:"counterparty,omitempty"`
	AttachmentRef string          `json:"attachment_ref,omitempty"`
	Lettrage      string          `json:"lettrage,omitempty"`
	Status        string          `json:"status"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		Date:          t.Date.Format(DateLayout),
		BankAccount:   t.BankAccount,
		Amount:        t.Amount,
		Description:   t.Description,
		Category:      t.Category,
		Counterparty:  t.Counterparty,
		AttachmentRef: t.AttachmentRef,
		Lettrage:      t.Lettrage,
		Status:        string(t.Status),
	}
}

// TransactionListResponse is one page of bank transactions.
type TransactionListResponse struct {
	BankAccount  string                `json:"bank_account"`
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// TransactionsFromPage converts a transaction page to response.
func TransactionsFromPage(p *usecase.TransactionPage) *TransactionListResponse {
	transactions := make([]TransactionResponse, len(p.Transactions))
	for i, t := range p.Transactions {
		transactions[i] = TransactionFromDomain(t)
	}

	return &TransactionListResponse{
		BankAccount:  p.BankAccount,
		Transactions: transactions,
		Total:        p.Total,
		Limit:        p.Limit,
		Offset:       p.Offset,
	}
}

// ImportResponse reports the outcome of a statement import.
type ImportResponse struct {
	BankAccount string `json:"bank_account"`
	Received    int    `json:"received"`
	Imported    int64  `json:"imported"`
}

// ImportFromResult converts an import result to response.
func ImportFromResult(r *usecase.ImportResult) *ImportResponse {
	return &ImportResponse{
		BankAccount: r.BankAccount,
		Received:    r.Received,
		Imported:    r.Upserted,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
