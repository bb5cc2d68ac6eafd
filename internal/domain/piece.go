package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidatePiece checks the lines of one journal entry before they are posted.
// Every line carries either a debit or a credit, all lines share the piece, journal
// and date, and the piece balances.
func ValidatePiece(entries []Entry) error {
	if len(entries) < 2 {
		return fmt.Errorf("%w: a piece needs at least two lines", ErrInvalidEntry)
	}

	first := entries[0]
	if strings.TrimSpace(first.Piece) == "" {
		return fmt.Errorf("%w: piece reference is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(first.JournalCode) == "" {
		return fmt.Errorf("%w: journal code is required", ErrInvalidEntry)
	}
	if first.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero

	for i, e := range entries {
		if err := ValidateAccountCode(e.AccountCode); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if e.Piece != first.Piece || e.JournalCode != first.JournalCode || !calendarDay(e.Date).Equal(calendarDay(first.Date)) {
			return fmt.Errorf("%w: line %d does not belong to piece %s", ErrInvalidEntry, i+1, first.Piece)
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", ErrInvalidEntry, i+1)
		}
		if e.Debit.IsZero() == e.Credit.IsZero() {
			return fmt.Errorf("%w: line %d must carry either a debit or a credit", ErrInvalidEntry, i+1)
		}
		if e.IsLettered() {
			return fmt.Errorf("%w: line %d is already lettered", ErrInvalidEntry, i+1)
		}
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: debit=%s credit=%s", ErrUnbalancedPiece, totalDebit, totalCredit)
	}

	return nil
}

// AccountCodes returns the distinct account codes of entries in first-seen order.
func AccountCodes(entries []Entry) []string {
	seen := make(map[string]bool, len(entries))
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.AccountCode] {
			seen[e.AccountCode] = true
			codes = append(codes, e.AccountCode)
		}
	}
	return codes
}
