package usecase

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// LettrageUseCase matches and unmatches ledger lines under reconciliation codes.
type LettrageUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	retrier   Retrier
	cache     LedgerCache
	metrics   MetricsRecorder
	logger    zerolog.Logger
}

// NewLettrageUseCase creates a new LettrageUseCase. cache may be nil.
func NewLettrageUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	retrier Retrier,
	cache LedgerCache,
	metrics MetricsRecorder,
	logger zerolog.Logger,
) *LettrageUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &LettrageUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		retrier:   retrier,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// ApplyLettrageInput represents input for lettering ledger lines.
type ApplyLettrageInput struct {
	AccountCode string
	EntryIDs    []string
}

// LettrageResult describes an applied lettrage.
type LettrageResult struct {
	AccountCode string
	Code        string
	EntryIDs    []string
	Total       decimal.Decimal
}

// Apply letters the given lines of one account with the next free code.
// The lines are locked for the duration of the transaction.
func (uc *LettrageUseCase) Apply(ctx context.Context, input ApplyLettrageInput) (*LettrageResult, error) {
	if err := domain.ValidateAccountCode(input.AccountCode); err != nil {
		return nil, err
	}

	ids := uniqueIDs(input.EntryIDs)
	if len(ids) < 2 {
		return nil, domain.ErrLettrageTooFewEntries
	}

	var result *LettrageResult

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.apply(ctx, input.AccountCode, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.AccountCode)
	uc.metrics.LettrageApplied()

	uc.logger.Info().
		Str("account", result.AccountCode).
		Str("lettrage", result.Code).
		Int("entries", len(result.EntryIDs)).
		Msg("lettrage applied")

	return result, nil
}

func (uc *LettrageUseCase) apply(ctx context.Context, accountCode string, ids []string) (*LettrageResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.LockAccountLettrage(ctx, tx, accountCode); err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.GetByIDsForUpdate(ctx, tx, accountCode, ids)
	if err != nil {
		return nil, err
	}

	if len(entries) != len(ids) {
		return nil, domain.ErrEntryNotFound
	}

	if err := domain.ValidateLettrageSet(entries); err != nil {
		return nil, err
	}

	used, err := uc.entryRepo.ListLettrageCodes(ctx, tx, accountCode)
	if err != nil {
		return nil, err
	}

	code := domain.NextLettrageCode(used)

	if err := uc.entryRepo.SetLettrage(ctx, tx, ids, code); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Debit)
	}

	return &LettrageResult{
		AccountCode: accountCode,
		Code:        code,
		EntryIDs:    ids,
		Total:       total,
	}, nil
}

// Remove clears a lettrage code from every line of the account carrying it.
func (uc *LettrageUseCase) Remove(ctx context.Context, accountCode, code string) error {
	if err := domain.ValidateAccountCode(accountCode); err != nil {
		return err
	}
	if err := domain.ValidateLettrageCode(code); err != nil {
		return err
	}

	err := uc.retrier.Retry(ctx, func() error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		cleared, err := uc.entryRepo.ClearLettrage(ctx, tx, accountCode, code)
		if err != nil {
			return err
		}

		if cleared == 0 {
			return domain.ErrLettrageNotFound
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return err
	}

	uc.invalidate(ctx, accountCode)
	uc.metrics.LettrageRemoved()

	uc.logger.Info().Str("account", accountCode).Str("lettrage", code).Msg("lettrage removed")

	return nil
}

func (uc *LettrageUseCase) invalidate(ctx context.Context, accountCode string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, accountCode); err != nil {
		uc.logger.Warn().Err(err).Str("account", accountCode).Msg("ledger cache invalidation failed")
	}
}

// uniqueIDs trims, dedupes and sorts ids so that rows are always locked in the same order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
