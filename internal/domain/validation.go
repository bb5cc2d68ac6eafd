package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var accountCodeRegex = regexp.MustCompile(`^[0-9A-Z]{1,20}$`)

// ValidateAccountCode validates a chart-of-accounts code such as 401000 or 512BNP.
func ValidateAccountCode(code string) error {
	if !accountCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountCode, code)
	}
	return nil
}

// ValidateBankAccount validates a bank account identifier.
func ValidateBankAccount(account string) error {
	account = strings.TrimSpace(account)
	if account == "" || len(account) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidBankAccount, account)
	}
	return nil
}

var sortFields = map[SortField]bool{
	SortByID: true, SortByDate: true, SortByAmount: true, SortByDescription: true,
	SortByLabel: true, SortByCategory: true, SortByJournal: true, SortByStatus: true,
	SortByCounterparty: true, SortByLettrage: true, SortByDebit: true, SortByCredit: true,
	SortByBalance: true, SortByPiece: true, SortByAccount: true,
}

// ValidateSort rejects sort fields and directions the query pipeline does not know.
// The zero Sort is valid.
func ValidateSort(s Sort) error {
	if s.Field != "" && !sortFields[s.Field] {
		return fmt.Errorf("%w: %s", ErrUnknownSortField, s.Field)
	}

	switch s.Direction {
	case "", SortAsc, SortDesc:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidSortDirection, s.Direction)
	}
}

// ValidateFilter checks that range bounds are ordered.
func ValidateFilter(f TransactionFilter) error {
	if f.From != nil && f.To != nil && calendarDay(*f.From).After(calendarDay(*f.To)) {
		return ErrInvalidDateRange
	}

	if f.MinAmount != nil && f.MinAmount.IsNegative() {
		return fmt.Errorf("%w: minimum is negative", ErrInvalidAmountRange)
	}

	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return fmt.Errorf("%w: minimum exceeds maximum", ErrInvalidAmountRange)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}

// Paginate returns the window [offset, offset+limit) of items, clamped to its bounds.
func Paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
