package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgerbook/internal/domain"
	infrapg "github.com/iho/ledgerbook/internal/infrastructure/postgres"
	"github.com/iho/ledgerbook/internal/usecase"
)

// newIntegrationPool connects to DATABASE_URL, migrates it and empties the entries table.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, infrapg.RunMigrations(dbURL, "../../../../migrations", zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE entries")
	require.NoError(t, err)

	return pool
}

func TestEntryRepositoryIntegration(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()

	repo := NewEntryRepository(pool)
	txm := NewTxManager(pool)

	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	entries := []domain.Entry{
		{ID: "01A", AccountCode: "512000", JournalCode: "BQ", Piece: "BQ-1", Label: "Rent", Date: day(2), Credit: decimal.NewFromInt(350)},
		{ID: "01B", AccountCode: "613200", JournalCode: "BQ", Piece: "BQ-1", Label: "Rent", Date: day(2), Debit: decimal.NewFromInt(350)},
		{ID: "01C", AccountCode: "512000", JournalCode: "BQ", Piece: "BQ-2", Label: "Refund", Date: day(5), Debit: decimal.NewFromInt(350)},
	}

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.InsertEntries(ctx, tx, entries))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.ListByAccount(ctx, "512000")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01A", got[0].ID)
	assert.True(t, got[0].Credit.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, day(2), got[0].Date.UTC())

	piece, err := repo.ListByPiece(ctx, "BQ-1")
	require.NoError(t, err)
	assert.Len(t, piece, 2)

	tx, err = txm.Begin(ctx)
	require.NoError(t, err)
	locked, err := repo.GetByIDsForUpdate(ctx, tx, "512000", []string{"01A", "01C"})
	require.NoError(t, err)
	require.Len(t, locked, 2)
	require.NoError(t, repo.SetLettrage(ctx, tx, []string{"01A", "01C"}, "A"))
	codes, err := repo.ListLettrageCodes(ctx, tx, "512000")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, codes)
	require.NoError(t, tx.Commit(ctx))

	tx, err = txm.Begin(ctx)
	require.NoError(t, err)
	n, err := repo.ClearLettrage(ctx, tx, "512000", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, tx.Commit(ctx))
}

func TestConcurrentLettragesGetDistinctCodes(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()

	repo := NewEntryRepository(pool)
	txm := NewTxManager(pool)

	day := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(120)
	var entries []domain.Entry
	for _, id := range []string{"02A", "02B", "02C", "02D"} {
		e := domain.Entry{ID: id, AccountCode: "401000", JournalCode: "AC", Piece: "P-" + id, Label: id, Date: day}
		if id == "02A" || id == "02C" {
			e.Credit = amount
		} else {
			e.Debit = amount
		}
		entries = append(entries, e)
	}

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.InsertEntries(ctx, tx, entries))
	require.NoError(t, tx.Commit(ctx))

	uc := usecase.NewLettrageUseCase(txm, repo, NewRetrier(zerolog.Nop()), nil, nil, zerolog.Nop())

	sets := [][]string{{"02A", "02B"}, {"02C", "02D"}}
	codes := make([]string, len(sets))
	errs := make([]error, len(sets))

	var wg sync.WaitGroup
	for i, ids := range sets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := uc.Apply(ctx, usecase.ApplyLettrageInput{AccountCode: "401000", EntryIDs: ids})
			errs[i] = err
			if err == nil {
				codes[i] = result.Code
			}
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ElementsMatch(t, []string{"A", "B"}, codes)

	tx, err = txm.Begin(ctx)
	require.NoError(t, err)
	n, err := repo.ClearLettrage(ctx, tx, "401000", codes[0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, tx.Commit(ctx))
}
