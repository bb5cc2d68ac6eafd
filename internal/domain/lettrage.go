package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NextLettrageCode returns the code following the highest well-formed code in used.
// Codes run A..Z, AA..ZZ, AAA.. and so on; anything not made of upper-case letters is ignored.
func NextLettrageCode(used []string) string {
	highest := ""
	for _, code := range used {
		if !isLettrageCode(code) {
			continue
		}
		if len(code) > len(highest) || (len(code) == len(highest) && code > highest) {
			highest = code
		}
	}

	if highest == "" {
		return "A"
	}

	b := []byte(highest)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'Z' {
			b[i]++
			return string(b)
		}
		b[i] = 'A'
	}

	return "A" + string(b)
}

// ValidateLettrageCode checks that code is a well-formed reconciliation code.
func ValidateLettrageCode(code string) error {
	if !isLettrageCode(code) {
		return fmt.Errorf("%w: %q", ErrInvalidLettrageCode, code)
	}
	return nil
}

func isLettrageCode(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// ValidateLettrageSet checks that lines can be matched under one reconciliation code:
// at least two lines of the same account, none lettered yet, debits equal to credits.
func ValidateLettrageSet(entries []Entry) error {
	if len(entries) < 2 {
		return ErrLettrageTooFewEntries
	}

	account := entries[0].AccountCode
	totalDebit, totalCredit := decimal.Zero, decimal.Zero

	for _, e := range entries {
		if e.AccountCode != account {
			return fmt.Errorf("%w: %s and %s", ErrLettrageAccountMismatch, account, e.AccountCode)
		}
		if e.IsLettered() {
			return fmt.Errorf("%w: %s carries %s", ErrAlreadyLettered, e.ID, e.Lettrage)
		}
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: debit=%s credit=%s", ErrLettrageUnbalanced, totalDebit, totalCredit)
	}

	return nil
}
