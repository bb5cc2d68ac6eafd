package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balances(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Balance.String()
	}
	return out
}

func ids[T interface{ SortKey(SortField) (SortKey, bool) }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		key, _ := item.SortKey(SortByID)
		out[i] = key.text
	}
	return out
}

func TestComputeProgressiveBalances_RunningTotal(t *testing.T) {
	entries := []Entry{
		{ID: "e2", Date: day(2), Debit: decimal.Zero, Credit: dec("30")},
		{ID: "e1", Date: day(1), Debit: dec("100"), Credit: decimal.Zero},
	}

	got := ComputeProgressiveBalances(entries)

	assert.Equal(t, []string{"e1", "e2"}, ids(got))
	assert.Equal(t, []string{"100", "70"}, balances(got))
}

func TestComputeProgressiveBalances_StableForSameDate(t *testing.T) {
	entries := []Entry{
		{ID: "c", Date: day(3), Debit: dec("5")},
		{ID: "a1", Date: day(1), Debit: dec("10")},
		{ID: "a2", Date: day(1), Credit: dec("4")},
		{ID: "a3", Date: day(1).Add(15 * time.Hour), Debit: dec("1")},
		{ID: "b", Date: day(2), Credit: dec("2")},
	}

	got := ComputeProgressiveBalances(entries)

	assert.Equal(t, []string{"a1", "a2", "a3", "b", "c"}, ids(got))
	assert.Equal(t, []string{"10", "6", "7", "5", "10"}, balances(got))
}

func TestComputeProgressiveBalances_DoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{ID: "e2", Date: day(2), Credit: dec("30")},
		{ID: "e1", Date: day(1), Debit: dec("100")},
	}

	_ = ComputeProgressiveBalances(entries)

	assert.Equal(t, "e2", entries[0].ID)
	assert.True(t, entries[0].Balance.IsZero())
	assert.True(t, entries[1].Balance.IsZero())
}

func TestComputeProgressiveBalances_Idempotent(t *testing.T) {
	entries := []Entry{
		{ID: "e1", Date: day(1), Debit: dec("100.10")},
		{ID: "e2", Date: day(1), Credit: dec("0.10")},
		{ID: "e3", Date: day(4), Credit: dec("42.5")},
	}

	first := ComputeProgressiveBalances(entries)
	second := ComputeProgressiveBalances(first)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, balances(first), balances(second))
}

func TestComputeProgressiveBalances_Empty(t *testing.T) {
	got := ComputeProgressiveBalances(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = ComputeProgressiveBalances([]Entry{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputeProgressiveBalances_ZeroLineCarriesBalance(t *testing.T) {
	entries := []Entry{
		{ID: "e1", Date: day(1), Debit: dec("12.34")},
		{ID: "e2", Date: day(2), Debit: decimal.Zero, Credit: decimal.Zero},
	}

	got := ComputeProgressiveBalances(entries)

	assert.Equal(t, []string{"12.34", "12.34"}, balances(got))
}

func TestComputeProgressiveBalances_ExactDecimalArithmetic(t *testing.T) {
	entries := []Entry{
		{ID: "e1", Date: day(1), Debit: dec("0.10")},
		{ID: "e2", Date: day(1), Debit: dec("0.20")},
		{ID: "e3", Date: day(1), Credit: dec("0.30")},
	}

	got := ComputeProgressiveBalances(entries)

	assert.True(t, got[1].Balance.Equal(dec("0.3")))
	assert.True(t, got[2].Balance.IsZero())
}

func TestComputeBalancesByAccount(t *testing.T) {
	entries := []Entry{
		{ID: "s1", AccountCode: "401000", Date: day(2), Credit: dec("50")},
		{ID: "b1", AccountCode: "512000", Date: day(1), Debit: dec("80")},
		{ID: "s2", AccountCode: "401000", Date: day(1), Credit: dec("20")},
	}

	got := ComputeBalancesByAccount(entries)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"s2", "s1"}, ids(got["401000"]))
	assert.Equal(t, []string{"-20", "-70"}, balances(got["401000"]))
	assert.Equal(t, []string{"80"}, balances(got["512000"]))
}

func TestSummarizeEntries(t *testing.T) {
	entries := []Entry{
		{ID: "e1", Debit: dec("100"), Lettrage: "A"},
		{ID: "e2", Credit: dec("30")},
		{ID: "e3", Credit: dec("70"), Lettrage: "A"},
	}

	summary := SummarizeEntries(entries)

	assert.True(t, summary.TotalDebit.Equal(dec("100")))
	assert.True(t, summary.TotalCredit.Equal(dec("100")))
	assert.True(t, summary.Balance.IsZero())
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 2, summary.LetteredCount)
	assert.Equal(t, 1, summary.UnletteredCount)
}
