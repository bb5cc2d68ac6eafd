package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// ComputeProgressiveBalances returns copies of the entries in chronological order, each
// carrying the running balance (sum of debit minus credit) up to and including itself.
//
// All entries are expected to belong to one account. Entries sharing a date keep their
// input order, so the resulting balances are reproducible. The input slice is not modified.
func ComputeProgressiveBalances(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	slices.SortStableFunc(out, func(a, b Entry) int {
		return calendarDay(a.Date).Compare(calendarDay(b.Date))
	})

	running := decimal.Zero
	for i := range out {
		running = running.Add(out[i].Debit).Sub(out[i].Credit)
		out[i].Balance = running
	}

	return out
}

// ComputeBalancesByAccount partitions entries by account code and computes the progressive
// balance of each partition independently.
func ComputeBalancesByAccount(entries []Entry) map[string][]Entry {
	partitions := make(map[string][]Entry)
	for _, e := range entries {
		partitions[e.AccountCode] = append(partitions[e.AccountCode], e)
	}

	result := make(map[string][]Entry, len(partitions))
	for code, lines := range partitions {
		result[code] = ComputeProgressiveBalances(lines)
	}

	return result
}
