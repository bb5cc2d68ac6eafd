package usecase

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// LedgerUseCase serves general-ledger views of an account.
type LedgerUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	idGen     IDGenerator
	cache     LedgerCache
	metrics   MetricsRecorder
	logger    zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. cache may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	idGen IDGenerator,
	cache LedgerCache,
	metrics MetricsRecorder,
	logger zerolog.Logger,
) *LedgerUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &LedgerUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		idGen:     idGen,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// PieceLine is one line of a journal entry to post.
type PieceLine struct {
	AccountCode string
	Label       string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// PostPieceInput represents input for posting a journal entry.
type PostPieceInput struct {
	Date        time.Time
	Piece       string
	JournalCode string
	Lines       []PieceLine
}

// PostPiece writes a balanced journal entry to the ledger.
func (uc *LedgerUseCase) PostPiece(ctx context.Context, input PostPieceInput) ([]domain.Entry, error) {
	entries := make([]domain.Entry, len(input.Lines))
	for i, line := range input.Lines {
		entries[i] = domain.Entry{
			ID:          uc.idGen.Generate(),
			Date:        input.Date,
			AccountCode: strings.TrimSpace(line.AccountCode),
			JournalCode: strings.TrimSpace(input.JournalCode),
			Piece:       strings.TrimSpace(input.Piece),
			Label:       line.Label,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}

	if err := domain.ValidatePiece(entries); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.InsertEntries(ctx, tx, entries); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		for _, code := range domain.AccountCodes(entries) {
			if err := uc.cache.Invalidate(ctx, code); err != nil {
				uc.logger.Warn().Err(err).Str("account", code).Msg("ledger cache invalidation failed")
			}
		}
	}

	uc.logger.Info().
		Str("piece", entries[0].Piece).
		Str("journal", entries[0].JournalCode).
		Int("lines", len(entries)).
		Msg("piece posted")

	return entries, nil
}

// GetAccountLedgerInput represents input for reading an account ledger.
type GetAccountLedgerInput struct {
	AccountCode string
	Filter      domain.TransactionFilter
	Sort        domain.Sort
	Limit       int
	Offset      int
}

// LedgerPage is one page of an account ledger.
type LedgerPage struct {
	AccountCode    string
	Entries        []domain.Entry
	Summary        domain.LedgerSummary
	ClosingBalance decimal.Decimal
	Total          int
	Limit          int
	Offset         int
}

// GetAccountLedger returns the account's lines with their progressive balance, filtered,
// sorted and paginated. Balances are computed over the whole account before filtering.
func (uc *LedgerUseCase) GetAccountLedger(ctx context.Context, input GetAccountLedgerInput) (*LedgerPage, error) {
	if err := domain.ValidateAccountCode(input.AccountCode); err != nil {
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

	balanced, err := uc.balancedEntries(ctx, input.AccountCode)
	if err != nil {
		return nil, err
	}

	matched := domain.Query(balanced, input.Filter, input.Sort)

	closing := decimal.Zero
	if len(balanced) > 0 {
		closing = balanced[len(balanced)-1].Balance
	}

	uc.metrics.ObserveQuery("ledger", time.Since(start), len(matched))

	return &LedgerPage{
		AccountCode:    input.AccountCode,
		Entries:        domain.Paginate(matched, limit, offset),
		Summary:        domain.SummarizeEntries(matched),
		ClosingBalance: closing,
		Total:          len(matched),
		Limit:          limit,
		Offset:         offset,
	}, nil
}

// GetPieceEntries returns every line of one journal entry, grouped by account code. Each
// line carries the running balance of its account within the piece.
func (uc *LedgerUseCase) GetPieceEntries(ctx context.Context, piece string) ([]domain.Entry, error) {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return nil, domain.ErrPieceNotFound
	}

	entries, err := uc.entryRepo.ListByPiece(ctx, piece)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, domain.ErrPieceNotFound
	}

	byAccount := domain.ComputeBalancesByAccount(entries)
	codes := slices.Sorted(maps.Keys(byAccount))

	out := make([]domain.Entry, 0, len(entries))
	for _, code := range codes {
		out = append(out, byAccount[code]...)
	}

	return out, nil
}

func (uc *LedgerUseCase) balancedEntries(ctx context.Context, accountCode string) ([]domain.Entry, error) {
	if uc.cache != nil {
		cached, found, err := uc.cache.Get(ctx, accountCode)
		if err != nil {
			uc.logger.Warn().Err(err).Str("account", accountCode).Msg("ledger cache read failed")
		} else {
			uc.metrics.CacheLookup(found)
			if found {
				return cached, nil
			}
		}
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	balanced := domain.ComputeProgressiveBalances(entries)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, accountCode, balanced); err != nil {
			uc.logger.Warn().Err(err).Str("account", accountCode).Msg("ledger cache write failed")
		}
	}

	return balanced, nil
}
