package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPieceNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrLettrageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyLettered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAccountCode),
		errors.Is(err, domain.ErrInvalidEntry),
		errors.Is(err, domain.ErrUnbalancedPiece),
		errors.Is(err, domain.ErrInvalidBankAccount),
		errors.Is(err, domain.ErrInvalidTransaction),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLettrageTooFewEntries),
		errors.Is(err, domain.ErrLettrageAccountMismatch),
		errors.Is(err, domain.ErrLettrageUnbalanced),
		errors.Is(err, domain.ErrInvalidLettrageCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSortField),
		errors.Is(err, domain.ErrInvalidSortDirection),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidAmountRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseListQuery splits a comma-separated parameter, dropping blanks.
func parseListQuery(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

// parseFilter reads the filter parameters shared by the ledger and transaction listings.
// categoryKey names the membership parameter: "journal" for ledgers, "category" for statements.
func parseFilter(r *http.Request, categoryKey string) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	var f domain.TransactionFilter

	if search := q.Get("q"); search != "" {
		f.Search = &search
	}

	if raw := q.Get("from"); raw != "" {
		from, err := dto.ParseDate(raw)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = &from
	}

	if raw := q.Get("to"); raw != "" {
		to, err := dto.ParseDate(raw)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		f.To = &to
	}

	f.Categories = parseListQuery(r, categoryKey)

	for _, raw := range parseListQuery(r, "status") {
		status, err := domain.ParseTransactionStatus(raw)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, status)
	}

	var err error
	if f.MinAmount, err = parseDecimalQuery(r, "min"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseDecimalQuery(r, "max"); err != nil {
		return f, err
	}

	if raw := q.Get("lettered"); raw != "" {
		lettered, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("lettered: invalid boolean %q", raw)
		}
		f.Lettered = &lettered
	}

	return f, nil
}

func parseDecimalQuery(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q", key, raw)
	}
	return &d, nil
}

// parseSort reads sort and dir. Unknown values are left for the use case to reject.
func parseSort(r *http.Request) domain.Sort {
	q := r.URL.Query()
	s := domain.Sort{
		Field:     domain.SortField(strings.ToLower(strings.TrimSpace(q.Get("sort")))),
		Direction: domain.SortDirection(strings.ToLower(strings.TrimSpace(q.Get("dir")))),
	}
	if s.Field != "" && s.Direction == "" {
		s.Direction = domain.SortAsc
	}
	return s
}
