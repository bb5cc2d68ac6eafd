package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// DateLayout is the calendar-day format used by the API for dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// PieceLineRequest is one line of a journal entry.
type PieceLineRequest struct {
	AccountCode string          `json:"account_code"`
	Label       string          `json:"label"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// PostPieceRequest represents a request to post a journal entry.
type PostPieceRequest struct {
	Date        string             `json:"date"`
	Piece       string             `json:"piece"`
	JournalCode string             `json:"journal_code"`
	Lines       []PieceLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *PostPieceRequest) ToUseCaseInput() (usecase.PostPieceInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.PostPieceInput{}, err
	}

	lines := make([]usecase.PieceLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.PieceLine{
			AccountCode: l.AccountCode,
			Label:       l.Label,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}

	return usecase.PostPieceInput{
		Date:        date,
		Piece:       r.Piece,
		JournalCode: r.JournalCode,
		Lines:       lines,
	}, nil
}

// ApplyLettrageRequest represents a request to reconcile ledger lines.
type ApplyLettrageRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyLettrageRequest) ToUseCaseInput(accountCode string) usecase.ApplyLettrageInput {
	return usecase.ApplyLettrageInput{
		AccountCode: accountCode,
		EntryIDs:    r.EntryIDs,
	}
}

// TransactionRequest is one bank statement line.
type TransactionRequest struct {
	ID            string          `json:"id,omitempty"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	Counterparty  string          `json:"counterparty,omitempty"`
	AttachmentRef string          `json:"attachment_ref,omitempty"`
	Status        string          `json:"status,omitempty"`
	Occurrence    int             `json:"occurrence,omitempty"`
}

// ImportStatementRequest represents a batch of statement lines to import.
type ImportStatementRequest struct {
	Transactions []TransactionRequest `json:"transactions"`
}

// ToUseCaseInput converts to use case input.
func (r *ImportStatementRequest) ToUseCaseInput(bankAccount string) (usecase.ImportStatementInput, error) {
	transactions := make([]domain.Transaction, len(r.Transactions))
	for i, t := range r.Transactions {
		date, err := ParseDate(t.Date)
		if err != nil {
			return usecase.ImportStatementInput{}, fmt.Errorf("line %d: %w", i+1, err)
		}

		var status domain.TransactionStatus
		if t.Status != "" {
			status, err = domain.ParseTransactionStatus(t.Status)
			if err != nil {
				return usecase.ImportStatementInput{}, fmt.Errorf("line %d: %w", i+1, err)
			}
		}

		transactions[i] = domain.Transaction{
			ID:            t.ID,
			Date:          date,
			BankAccount:   bankAccount,
			Amount:        t.Amount,
			Description:   t.Description,
			Category:      t.Category,
			Counterparty:  t.Counterparty,
			AttachmentRef: t.AttachmentRef,
			Status:        status,
			Occurrence:    t.Occurrence,
		}
	}

	return usecase.ImportStatementInput{
		BankAccount:  bankAccount,
		Transactions: transactions,
	}, nil
}

// TransactionRequestFromDomain converts a parsed statement line to its wire form.
func TransactionRequestFromDomain(t domain.Transaction) TransactionRequest {
	return TransactionRequest{
		ID:            t.ID,
		Date:          t.Date.Format(DateLayout),
		Amount:        t.Amount,
		Description:   t.Description,
		Category:      t.Category,
		Counterparty:  t.Counterparty,
		AttachmentRef: t.AttachmentRef,
		Status:        string(t.Status),
		Occurrence:    t.Occurrence,
	}
}
