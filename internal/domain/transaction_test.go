package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNumberOccurrences(t *testing.T) {
	t.Parallel()

	fee := func(hour int) Transaction {
		return Transaction{
			BankAccount: "FR76-MAIN",
			Date:        time.Date(2024, time.January, 3, hour, 0, 0, 0, time.UTC),
			Description: "Card fee",
			Amount:      decimal.RequireFromString("-2.50"),
		}
	}
	rent := Transaction{BankAccount: "FR76-MAIN", Date: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), Description: "Rent", Amount: decimal.NewFromInt(-1200)}

	lines := []Transaction{fee(9), rent, fee(17), fee(0)}
	NumberOccurrences(lines)

	want := []int{1, 1, 2, 3}
	for i, w := range want {
		if lines[i].Occurrence != w {
			t.Fatalf("line %d: expected occurrence %d, got %d", i, w, lines[i].Occurrence)
		}
	}

	// Numbering a statement again gives the same result.
	again := []Transaction{fee(9), rent, fee(17), fee(0)}
	NumberOccurrences(again)
	for i := range again {
		if again[i].Occurrence != lines[i].Occurrence {
			t.Fatalf("line %d: renumbering changed occurrence %d to %d", i, lines[i].Occurrence, again[i].Occurrence)
		}
	}
}

func TestNumberOccurrencesKeepsExplicitRanks(t *testing.T) {
	t.Parallel()

	line := Transaction{BankAccount: "FR76-MAIN", Date: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Description: "Transfer", Amount: decimal.NewFromInt(40)}

	first, second := line, line
	first.Occurrence = 1
	lines := []Transaction{line, first, second}
	NumberOccurrences(lines)

	if lines[0].Occurrence != 2 || lines[1].Occurrence != 1 || lines[2].Occurrence != 3 {
		t.Fatalf("unexpected occurrences %d %d %d", lines[0].Occurrence, lines[1].Occurrence, lines[2].Occurrence)
	}
}

func TestTransactionValidateRejectsNegativeOccurrence(t *testing.T) {
	t.Parallel()

	tx := Transaction{BankAccount: "FR76-MAIN", Date: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), Description: "Rent", Status: StatusPending, Occurrence: -1}
	if err := tx.Validate(); !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction, got %v", err)
	}
}
