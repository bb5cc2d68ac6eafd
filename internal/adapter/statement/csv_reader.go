// Package statement parses bank statement exports.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

const (
	colDate         = "date"
	colAmount       = "amount"
	colDescription  = "description"
	colCategory     = "category"
	colStatus       = "status"
	colCounterparty = "counterparty"
	colAttachment   = "attachment"
)

// ReadCSV parses a statement export with a header row. Columns are matched by name,
// case-insensitively; date, amount and description are required.
func ReadCSV(r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := indexColumns(header)
	for _, required := range []string{colDate, colAmount, colDescription} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var transactions []domain.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		t, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}

func parseRecord(record []string, columns map[string]int) (domain.Transaction, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := ParseDate(field(colDate))
	if err != nil {
		return domain.Transaction{}, err
	}

	amount, err := ParseAmount(field(colAmount))
	if err != nil {
		return domain.Transaction{}, err
	}

	t := domain.Transaction{
		Date:          date,
		Amount:        amount,
		Description:   field(colDescription),
		Category:      field(colCategory),
		Counterparty:  field(colCounterparty),
		AttachmentRef: field(colAttachment),
	}

	if s := field(colStatus); s != "" {
		status, err := domain.ParseTransactionStatus(s)
		if err != nil {
			return domain.Transaction{}, err
		}
		t.Status = status
	}

	return t, nil
}

// ParseDate accepts ISO dates and day-first dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: could not parse date %q", domain.ErrInvalidTransaction, s)
}

// ParseAmount parses a signed amount. A comma is accepted as decimal separator, and spaces
// used as thousands separators are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: could not parse amount %q", domain.ErrInvalidTransaction, s)
	}
	return d, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return columns
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
