package usecase

import (
	"context"
	"time"

	"github.com/iho/ledgerbook/internal/domain"
)

// EntryRepository defines data access for general-ledger lines.
type EntryRepository interface {
	ListByAccount(ctx context.Context, accountCode string) ([]domain.Entry, error)
	ListByPiece(ctx context.Context, piece string) ([]domain.Entry, error)
	InsertEntries(ctx context.Context, tx Transaction, entries []domain.Entry) error
	// LockAccountLettrage serializes lettrage code assignment on an account until tx ends.
	LockAccountLettrage(ctx context.Context, tx Transaction, accountCode string) error
	GetByIDsForUpdate(ctx context.Context, tx Transaction, accountCode string, ids []string) ([]domain.Entry, error)
	ListLettrageCodes(ctx context.Context, tx Transaction, accountCode string) ([]string, error)
	SetLettrage(ctx context.Context, tx Transaction, ids []string, code string) error
	ClearLettrage(ctx context.Context, tx Transaction, accountCode, code string) (int64, error)
}

// StatementRepository defines data access for imported bank statement lines.
type StatementRepository interface {
	ListByBankAccount(ctx context.Context, bankAccount string) ([]domain.Transaction, error)
	BulkUpsert(ctx context.Context, transactions []domain.Transaction) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// LedgerCache stores the balanced ledger of an account.
type LedgerCache interface {
	// Get returns (entries, found, error).
	Get(ctx context.Context, accountCode string) ([]domain.Entry, bool, error)
	Set(ctx context.Context, accountCode string, entries []domain.Entry) error
	Invalidate(ctx context.Context, accountCode string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives business metrics from the use cases.
type MetricsRecorder interface {
	ObserveQuery(kind string, duration time.Duration, rows int)
	CacheLookup(hit bool)
	LettrageApplied()
	LettrageRemoved()
	StatementLinesImported(n int)
}

// NopMetrics discards every metric.
type NopMetrics struct{}

func (NopMetrics) ObserveQuery(string, time.Duration, int) {}
func (NopMetrics) CacheLookup(bool)                        {}
func (NopMetrics) LettrageApplied()                        {}
func (NopMetrics) LettrageRemoved()                        {}
func (NopMetrics) StatementLinesImported(int)              {}
