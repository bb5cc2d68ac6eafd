package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerbook/internal/domain"
)

// TransactionUseCase serves imported bank statement lines.
type TransactionUseCase struct {
	statementRepo StatementRepository
	idGen         IDGenerator
	metrics       MetricsRecorder
	logger        zerolog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(statementRepo StatementRepository, idGen IDGenerator, metrics MetricsRecorder, logger zerolog.Logger) *TransactionUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &TransactionUseCase{
		statementRepo: statementRepo,
		idGen:         idGen,
		metrics:       metrics,
		logger:        logger,
	}
}

// ListTransactionsInput represents input for listing bank transactions.
type ListTransactionsInput struct {
	BankAccount string
	Filter      domain.TransactionFilter
	Sort        domain.Sort
	Limit       int
	Offset      int
}

// TransactionPage is one page of bank transactions.
type TransactionPage struct {
	BankAccount  string
	Transactions []domain.Transaction
	Total        int
	Limit        int
	Offset       int
}

// ListTransactions returns the filtered and sorted transactions of a bank account.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	if err := domain.ValidateBankAccount(input.BankAccount); err != nil {
		return nil, err
	}
	if err := domain.ValidateFilter(input.Filter); err != nil {
		return nil, err
	}
	if err := domain.ValidateSort(input.Sort); err != nil {
		return nil, err
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	start := time.Now()

	transactions, err := uc.statementRepo.ListByBankAccount(ctx, strings.TrimSpace(input.BankAccount))
	if err != nil {
		return nil, err
	}

	matched := domain.Query(transactions, input.Filter, input.Sort)

	uc.metrics.ObserveQuery("transactions", time.Since(start), len(matched))

	return &TransactionPage{
		BankAccount:  input.BankAccount,
		Transactions: domain.Paginate(matched, limit, offset),
		Total:        len(matched),
		Limit:        limit,
		Offset:       offset,
	}, nil
}

// ImportStatementInput represents a batch of statement lines for one bank account.
type ImportStatementInput struct {
	BankAccount  string
	Transactions []domain.Transaction
}

// ImportResult reports the outcome of a statement import.
type ImportResult struct {
	BankAccount string
	Received    int
	Upserted    int64
}

// ImportStatement validates and stores statement lines. Lines already known for the
// account are updated in place.
func (uc *TransactionUseCase) ImportStatement(ctx context.Context, input ImportStatementInput) (*ImportResult, error) {
	account := strings.TrimSpace(input.BankAccount)
	if err := domain.ValidateBankAccount(account); err != nil {
		return nil, err
	}

	if len(input.Transactions) == 0 {
		return nil, fmt.Errorf("%w: statement is empty", domain.ErrInvalidTransaction)
	}

	if len(input.Transactions) > MaxStatementLines {
		return nil, fmt.Errorf("%w: statement exceeds %d lines", domain.ErrInvalidTransaction, MaxStatementLines)
	}

	lines := make([]domain.Transaction, len(input.Transactions))
	for i, t := range input.Transactions {
		t.BankAccount = account
		if t.ID == "" {
			t.ID = uc.idGen.Generate()
		}
		if t.Status == "" {
			t.Status = domain.StatusUnreconciled
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines[i] = t
	}
	domain.NumberOccurrences(lines)

	upserted, err := uc.statementRepo.BulkUpsert(ctx, lines)
	if err != nil {
		return nil, err
	}

	uc.metrics.StatementLinesImported(len(lines))

	uc.logger.Info().
		Str("bank_account", account).
		Int("received", len(lines)).
		Int64("upserted", upserted).
		Msg("statement imported")

	return &ImportResult{
		BankAccount: account,
		Received:    len(lines),
		Upserted:    upserted,
	}, nil
}
