package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter holds filter criteria for transaction and ledger queries.
// Pointer and slice fields left nil place no constraint on their axis.
type TransactionFilter struct {
	Search     *string          // case-insensitive substring of the description
	From       *time.Time       // inclusive, compared by calendar day
	To         *time.Time       // inclusive, compared by calendar day
	Categories []string         // category or journal code membership
	Statuses   []TransactionStatus
	MinAmount  *decimal.Decimal // compared against the absolute amount, inclusive
	MaxAmount  *decimal.Decimal // compared against the absolute amount, inclusive
	Lettered   *bool            // true: lettered only, false: unlettered only
}

// SortField names the field a query result is ordered by.
type SortField string

const (
	SortByID           SortField = "id"
	SortByDate         SortField = "date"
	SortByAmount       SortField = "amount"
	SortByDescription  SortField = "description"
	SortByLabel        SortField = "label"
	SortByCategory     SortField = "category"
	SortByJournal      SortField = "journal"
	SortByStatus       SortField = "status"
	SortByCounterparty SortField = "counterparty"
	SortByLettrage     SortField = "lettrage"
	SortByDebit        SortField = "debit"
	SortByCredit       SortField = "credit"
	SortByBalance      SortField = "balance"
	SortByPiece        SortField = "piece"
	SortByAccount      SortField = "account"
)

// SortDirection represents sort order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort holds sorting preferences. The zero value leaves the order untouched.
type Sort struct {
	Field     SortField
	Direction SortDirection
}

// String returns the sort as "field:direction".
func (s Sort) String() string {
	return string(s.Field) + ":" + string(s.Direction)
}

// Queryable is a record the query pipeline can filter and sort.
type Queryable interface {
	QueryDate() time.Time
	QueryAmount() decimal.Decimal
	QueryText() string
	QueryCategory() string
	QueryStatus() TransactionStatus
	QueryLettrage() string
	// SortKey returns the value of field, and false when the record has no such field.
	SortKey(field SortField) (SortKey, bool)
}

type sortKind uint8

const (
	kindText sortKind = iota + 1
	kindNumber
	kindDate
)

// SortKey is a comparable field value. The zero SortKey is a missing value.
type SortKey struct {
	date   time.Time
	text   string
	number decimal.Decimal
	kind   sortKind
}

// TextKey wraps a string; the empty string is a missing value.
func TextKey(s string) SortKey {
	if s == "" {
		return SortKey{}
	}
	return SortKey{kind: kindText, text: strings.ToLower(s)}
}

// NumberKey wraps a decimal amount.
func NumberKey(d decimal.Decimal) SortKey {
	return SortKey{kind: kindNumber, number: d}
}

// DateKey wraps a date; the zero time is a missing value.
func DateKey(t time.Time) SortKey {
	if t.IsZero() {
		return SortKey{}
	}
	return SortKey{kind: kindDate, date: calendarDay(t)}
}

// Missing reports whether the key holds no value.
func (k SortKey) Missing() bool {
	return k.kind == 0
}

func (k SortKey) compare(other SortKey) int {
	if k.kind != other.kind {
		return 0
	}

	switch k.kind {
	case kindText:
		return strings.Compare(k.text, other.text)
	case kindNumber:
		return k.number.Cmp(other.number)
	case kindDate:
		return k.date.Compare(other.date)
	default:
		return 0
	}
}

// Query filters items and then sorts the matches. Filters are ANDed. The sort is stable and
// places missing values last in both directions; an unknown sort field leaves the filtered
// order as is. The input slice is not modified.
func Query[T Queryable](items []T, filter TransactionFilter, sort Sort) []T {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, filter) {
			matched = append(matched, item)
		}
	}

	if sort.Field == "" || len(matched) < 2 {
		return matched
	}

	return sortRecords(matched, sort)
}

// Matches reports whether a single record satisfies every active filter.
func Matches(item Queryable, f TransactionFilter) bool {
	if f.Search != nil {
		if strings.TrimSpace(*f.Search) != "" {
			if !strings.Contains(strings.ToLower(item.QueryText()), strings.ToLower(*f.Search)) {
				return false
			}
		}
	}

	if f.From != nil || f.To != nil {
		date := item.QueryDate()
		if date.IsZero() {
			return false
		}
		day := calendarDay(date)
		if f.From != nil && day.Before(calendarDay(*f.From)) {
			return false
		}
		if f.To != nil && day.After(calendarDay(*f.To)) {
			return false
		}
	}

	if len(f.Categories) > 0 && !slices.Contains(f.Categories, item.QueryCategory()) {
		return false
	}

	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, item.QueryStatus()) {
		return false
	}

	if f.MinAmount != nil || f.MaxAmount != nil {
		amount := item.QueryAmount().Abs()
		if f.MinAmount != nil && amount.LessThan(*f.MinAmount) {
			return false
		}
		if f.MaxAmount != nil && amount.GreaterThan(*f.MaxAmount) {
			return false
		}
	}

	if f.Lettered != nil && (item.QueryLettrage() != "") != *f.Lettered {
		return false
	}

	return true
}

type decorated[T any] struct {
	item  T
	key   SortKey
	known bool
}

func sortRecords[T Queryable](items []T, sort Sort) []T {
	rows := make([]decorated[T], len(items))
	for i, item := range items {
		key, known := item.SortKey(sort.Field)
		rows[i] = decorated[T]{item: item, key: key, known: known}
	}

	descending := sort.Direction == SortDesc

	slices.SortStableFunc(rows, func(a, b decorated[T]) int {
		if !a.known || !b.known {
			return 0
		}

		// Missing values trail regardless of direction.
		switch aMissing, bMissing := a.key.Missing(), b.key.Missing(); {
		case aMissing && bMissing:
			return 0
		case aMissing:
			return 1
		case bMissing:
			return -1
		}

		c := a.key.compare(b.key)
		if descending {
			return -c
		}
		return c
	})

	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = row.item
	}

	return out
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
