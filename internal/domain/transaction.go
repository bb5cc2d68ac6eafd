package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the reconciliation state of a bank or ledger record.
type TransactionStatus string

const (
	StatusReconciled   TransactionStatus = "reconciled"
	StatusPending      TransactionStatus = "pending"
	StatusUnreconciled TransactionStatus = "unreconciled"
)

// ParseTransactionStatus parses a status name, case-insensitively.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch status := TransactionStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusReconciled, StatusPending, StatusUnreconciled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Transaction represents one line of a bank statement.
type Transaction struct {
	Date          time.Time
	ID            string
	BankAccount   string
	Description   string
	Category      string
	Counterparty  string
	AttachmentRef string
	Lettrage      string
	Status        TransactionStatus
	Amount        decimal.Decimal
	// Occurrence ranks identical lines (same account, day, amount and description)
	// of one statement, starting at 1. Zero means not yet numbered.
	Occurrence int
}

// Validate checks the fields required to store a statement line.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.BankAccount) == "" {
		return ErrInvalidBankAccount
	}

	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidTransaction)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}

	if _, err := ParseTransactionStatus(string(t.Status)); err != nil {
		return err
	}

	if t.Occurrence < 0 {
		return fmt.Errorf("%w: occurrence must not be negative", ErrInvalidTransaction)
	}

	return nil
}

// NumberOccurrences numbers the lines that have no Occurrence yet, in statement order,
// so that a statement holding the same line twice stores it twice.
// Lines that already carry an occurrence keep it and are skipped by the count.
func NumberOccurrences(lines []Transaction) {
	taken := make(map[string]map[int]bool)
	for _, t := range lines {
		if t.Occurrence > 0 {
			k := t.naturalKey()
			if taken[k] == nil {
				taken[k] = make(map[int]bool)
			}
			taken[k][t.Occurrence] = true
		}
	}

	next := make(map[string]int)
	for i := range lines {
		if lines[i].Occurrence > 0 {
			continue
		}
		k := lines[i].naturalKey()
		n := next[k] + 1
		for taken[k][n] {
			n++
		}
		next[k] = n
		lines[i].Occurrence = n
	}
}

func (t *Transaction) naturalKey() string {
	return strings.Join([]string{
		t.BankAccount,
		t.Date.Format(time.DateOnly),
		t.Amount.String(),
		t.Description,
	}, "\x00")
}
