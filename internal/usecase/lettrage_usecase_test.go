package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
	"github.com/iho/ledgerbook/internal/usecase/mocks"
)

type lettrageMocks struct {
	txManager *mocks.MockTransactionManager
	tx        *mocks.MockTransaction
	entryRepo *mocks.MockEntryRepository
	retrier   *mocks.MockRetrier
	cache     *mocks.MockLedgerCache
	metrics   *mocks.MockMetricsRecorder
}

func newLettrageMocks(ctrl *gomock.Controller) lettrageMocks {
	m := lettrageMocks{
		txManager: mocks.NewMockTransactionManager(ctrl),
		tx:        mocks.NewMockTransaction(ctrl),
		entryRepo: mocks.NewMockEntryRepository(ctrl),
		retrier:   mocks.NewMockRetrier(ctrl),
		cache:     mocks.NewMockLedgerCache(ctrl),
		metrics:   mocks.NewMockMetricsRecorder(ctrl),
	}

	m.retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error { return op() }).AnyTimes()

	return m
}

func (m lettrageMocks) useCase() *usecase.LettrageUseCase {
	return usecase.NewLettrageUseCase(m.txManager, m.entryRepo, m.retrier, m.cache, m.metrics, zerolog.Nop())
}

func TestLettrageUseCase_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entryRepo.EXPECT().LockAccountLettrage(gomock.Any(), m.tx, "401000").Return(nil)
	m.entryRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "401000", []string{"e1", "e3"}).Return([]domain.Entry{
		{ID: "e1", AccountCode: "401000", Credit: decimal.NewFromInt(400)},
		{ID: "e3", AccountCode: "401000", Debit: decimal.NewFromInt(400)},
	}, nil)
	m.entryRepo.EXPECT().ListLettrageCodes(gomock.Any(), m.tx, "401000").Return([]string{"A", "B"}, nil)
	m.entryRepo.EXPECT().SetLettrage(gomock.Any(), m.tx, []string{"e1", "e3"}, "C").Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), "401000").Return(nil)
	m.metrics.EXPECT().LettrageApplied()

	result, err := m.useCase().Apply(context.Background(), usecase.ApplyLettrageInput{
		AccountCode: "401000",
		EntryIDs:    []string{"e3", " e1", "e3"},
	})
	require.NoError(t, err)

	assert.Equal(t, "C", result.Code)
	assert.Equal(t, []string{"e1", "e3"}, result.EntryIDs)
	assert.Equal(t, "400", result.Total.String())
}

func TestLettrageUseCase_Apply_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.Entry
		err     error
	}{
		{
			name: "missing entry",
			entries: []domain.Entry{
				{ID: "e1", AccountCode: "401000", Credit: decimal.NewFromInt(400)},
			},
			err: domain.ErrEntryNotFound,
		},
		{
			name: "unbalanced",
			entries: []domain.Entry{
				{ID: "e1", AccountCode: "401000", Credit: decimal.NewFromInt(400)},
				{ID: "e2", AccountCode: "401000", Debit: decimal.NewFromInt(250)},
			},
			err: domain.ErrLettrageUnbalanced,
		},
		{
			name: "already lettered",
			entries: []domain.Entry{
				{ID: "e1", AccountCode: "401000", Credit: decimal.NewFromInt(400), Lettrage: "A"},
				{ID: "e2", AccountCode: "401000", Debit: decimal.NewFromInt(400)},
			},
			err: domain.ErrAlreadyLettered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newLettrageMocks(ctrl)

			m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
			m.entryRepo.EXPECT().LockAccountLettrage(gomock.Any(), m.tx, "401000").Return(nil)
			m.entryRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "401000", []string{"e1", "e2"}).Return(tt.entries, nil)
			m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

			_, err := m.useCase().Apply(context.Background(), usecase.ApplyLettrageInput{
				AccountCode: "401000",
				EntryIDs:    []string{"e1", "e2"},
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestLettrageUseCase_Apply_LocksAccountBeforeReadingCodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)
	lockErr := errors.New("lock timeout")

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entryRepo.EXPECT().LockAccountLettrage(gomock.Any(), m.tx, "401000").Return(lockErr)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := m.useCase().Apply(context.Background(), usecase.ApplyLettrageInput{
		AccountCode: "401000",
		EntryIDs:    []string{"e1", "e2"},
	})
	assert.ErrorIs(t, err, lockErr)
}

func TestLettrageUseCase_Apply_TooFewEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)

	_, err := m.useCase().Apply(context.Background(), usecase.ApplyLettrageInput{
		AccountCode: "401000",
		EntryIDs:    []string{"e1", "e1", ""},
	})
	assert.ErrorIs(t, err, domain.ErrLettrageTooFewEntries)
}

func TestLettrageUseCase_Apply_CacheFailureIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entryRepo.EXPECT().LockAccountLettrage(gomock.Any(), m.tx, "401000").Return(nil)
	m.entryRepo.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, "401000", []string{"e1", "e2"}).Return([]domain.Entry{
		{ID: "e1", AccountCode: "401000", Credit: decimal.NewFromInt(10)},
		{ID: "e2", AccountCode: "401000", Debit: decimal.NewFromInt(10)},
	}, nil)
	m.entryRepo.EXPECT().ListLettrageCodes(gomock.Any(), m.tx, "401000").Return(nil, nil)
	m.entryRepo.EXPECT().SetLettrage(gomock.Any(), m.tx, []string{"e1", "e2"}, "A").Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), "401000").Return(errors.New("redis down"))
	m.metrics.EXPECT().LettrageApplied()

	result, err := m.useCase().Apply(context.Background(), usecase.ApplyLettrageInput{
		AccountCode: "401000",
		EntryIDs:    []string{"e1", "e2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A", result.Code)
}

func TestLettrageUseCase_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entryRepo.EXPECT().ClearLettrage(gomock.Any(), m.tx, "401000", "B").Return(int64(2), nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), "401000").Return(nil)
	m.metrics.EXPECT().LettrageRemoved()

	err := m.useCase().Remove(context.Background(), "401000", "B")
	require.NoError(t, err)
}

func TestLettrageUseCase_Remove_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.entryRepo.EXPECT().ClearLettrage(gomock.Any(), m.tx, "401000", "Q").Return(int64(0), nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	err := m.useCase().Remove(context.Background(), "401000", "Q")
	assert.ErrorIs(t, err, domain.ErrLettrageNotFound)
}

func TestLettrageUseCase_Remove_InvalidCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLettrageMocks(ctrl)

	err := m.useCase().Remove(context.Background(), "401000", "a1")
	assert.ErrorIs(t, err, domain.ErrInvalidLettrageCode)
}
