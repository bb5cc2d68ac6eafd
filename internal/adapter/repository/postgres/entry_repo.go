package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// querier is the subset of pgxpool.Pool and pgx.Tx used by the repositories.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

const entryColumns = `id, account_code, journal_code, piece, label, entry_date,
	debit::text, credit::text, COALESCE(lettrage, '')`

const (
	listEntriesByAccountSQL = `SELECT ` + entryColumns + `
	FROM entries
	WHERE account_code = $1
	ORDER BY entry_date, id`

	listEntriesByPieceSQL = `SELECT ` + entryColumns + `
	FROM entries
	WHERE piece = $1
	ORDER BY account_code, id`

	lockEntriesSQL = `SELECT ` + entryColumns + `
	FROM entries
	WHERE account_code = $1 AND id = ANY($2)
	ORDER BY id
	FOR UPDATE`

	lockAccountLettrageSQL = `SELECT pg_advisory_xact_lock(hashtext('lettrage:' || $1))`

	listLettrageCodesSQL = `SELECT DISTINCT lettrage
	FROM entries
	WHERE account_code = $1 AND lettrage IS NOT NULL`

	setLettrageSQL = `UPDATE entries SET lettrage = $1 WHERE id = ANY($2) AND lettrage IS NULL`

	clearLettrageSQL = `UPDATE entries SET lettrage = NULL WHERE account_code = $1 AND lettrage = $2`
)

var insertEntryColumns = []string{
	"id", "account_code", "journal_code", "piece", "label", "entry_date", "debit", "credit",
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db querier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db querier) *EntryRepository {
	return &EntryRepository{db: db}
}

// ListByAccount returns every line of an account in posting order.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountCode string) ([]domain.Entry, error) {
	return r.list(ctx, r.db, listEntriesByAccountSQL, accountCode)
}

// ListByPiece returns the lines of one journal entry.
func (r *EntryRepository) ListByPiece(ctx context.Context, piece string) ([]domain.Entry, error) {
	return r.list(ctx, r.db, listEntriesByPieceSQL, piece)
}

// InsertEntries copies new ledger lines into the entries table.
func (r *EntryRepository) InsertEntries(ctx context.Context, tx usecase.Transaction, entries []domain.Entry) error {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{
			e.ID, e.AccountCode, e.JournalCode, e.Piece, e.Label, e.Date,
			decimalToNumeric(e.Debit), decimalToNumeric(e.Credit),
		}
	}

	n, err := txQuerier(tx).CopyFrom(ctx, pgx.Identifier{"entries"}, insertEntryColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return err
	}

	if n != int64(len(entries)) {
		return fmt.Errorf("inserted %d of %d entries", n, len(entries))
	}

	return nil
}

// LockAccountLettrage takes a transaction-scoped advisory lock on the account, so that
// concurrent lettrages never read the same set of used codes.
func (r *EntryRepository) LockAccountLettrage(ctx context.Context, tx usecase.Transaction, accountCode string) error {
	_, err := txQuerier(tx).Exec(ctx, lockAccountLettrageSQL, accountCode)
	return err
}

// GetByIDsForUpdate locks the given lines of an account, in id order.
func (r *EntryRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, accountCode string, ids []string) ([]domain.Entry, error) {
	return r.list(ctx, txQuerier(tx), lockEntriesSQL, accountCode, ids)
}

// ListLettrageCodes returns the lettrage codes in use on an account.
func (r *EntryRepository) ListLettrageCodes(ctx context.Context, tx usecase.Transaction, accountCode string) ([]string, error) {
	rows, err := txQuerier(tx).Query(ctx, listLettrageCodesSQL, accountCode)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// SetLettrage writes code on the given lines. Lines lettered concurrently are left untouched
// and reported as an error.
func (r *EntryRepository) SetLettrage(ctx context.Context, tx usecase.Transaction, ids []string, code string) error {
	tag, err := txQuerier(tx).Exec(ctx, setLettrageSQL, code, ids)
	if err != nil {
		return err
	}

	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("%w: %d of %d lines updated", domain.ErrAlreadyLettered, tag.RowsAffected(), len(ids))
	}

	return nil
}

// ClearLettrage removes code from every line of the account and returns how many lines changed.
func (r *EntryRepository) ClearLettrage(ctx context.Context, tx usecase.Transaction, accountCode, code string) (int64, error) {
	tag, err := txQuerier(tx).Exec(ctx, clearLettrageSQL, accountCode, code)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *EntryRepository) list(ctx context.Context, q querier, sql string, args ...any) ([]domain.Entry, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func scanEntry(row pgx.Row) (domain.Entry, error) {
	var (
		e             domain.Entry
		date          time.Time
		debit, credit string
	)

	err := row.Scan(&e.ID, &e.AccountCode, &e.JournalCode, &e.Piece, &e.Label, &date, &debit, &credit, &e.Lettrage)
	if err != nil {
		return domain.Entry{}, err
	}

	e.Date = date.UTC()

	if e.Debit, err = decimal.NewFromString(debit); err != nil {
		return domain.Entry{}, fmt.Errorf("entry %s debit: %w", e.ID, err)
	}
	if e.Credit, err = decimal.NewFromString(credit); err != nil {
		return domain.Entry{}, fmt.Errorf("entry %s credit: %w", e.ID, err)
	}

	return e, nil
}

func txQuerier(tx usecase.Transaction) querier {
	return tx.(*Tx).PgxTx()
}
