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

func bankLines() []domain.Transaction {
	return []domain.Transaction{
		{ID: "t1", BankAccount: "FR76-MAIN", Date: day(2), Description: "Rent", Category: "office", Status: domain.StatusReconciled, Amount: decimal.NewFromInt(-1200)},
		{ID: "t2", BankAccount: "FR76-MAIN", Date: day(4), Description: "Client ACME", Category: "sales", Status: domain.StatusUnreconciled, Amount: decimal.NewFromInt(3000)},
		{ID: "t3", BankAccount: "FR76-MAIN", Date: day(9), Description: "Coffee", Category: "office", Status: domain.StatusPending, Amount: decimal.RequireFromString("-4.5")},
	}
}

func TestTransactionUseCase_ListTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockStatementRepository(ctrl)
	repo.EXPECT().ListByBankAccount(gomock.Any(), "FR76-MAIN").Return(bankLines(), nil)

	uc := usecase.NewTransactionUseCase(repo, mocks.NewMockIDGenerator(ctrl), nil, zerolog.Nop())

	page, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		BankAccount: "FR76-MAIN",
		Filter:      domain.TransactionFilter{Categories: []string{"office"}},
		Sort:        domain.Sort{Field: domain.SortByAmount, Direction: domain.SortAsc},
	})
	require.NoError(t, err)

	require.Len(t, page.Transactions, 2)
	assert.Equal(t, "t1", page.Transactions[0].ID)
	assert.Equal(t, "t3", page.Transactions[1].ID)
	assert.Equal(t, 2, page.Total)
}

func TestTransactionUseCase_ListTransactions_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := usecase.NewTransactionUseCase(mocks.NewMockStatementRepository(ctrl), mocks.NewMockIDGenerator(ctrl), nil, zerolog.Nop())

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidBankAccount)

	_, err = uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		BankAccount: "FR76-MAIN",
		Sort:        domain.Sort{Field: domain.SortByDate, Direction: "sideways"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSortDirection)

	_, err = uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		BankAccount: "FR76-MAIN",
		Filter: domain.TransactionFilter{
			MinAmount: ptr(decimal.NewFromInt(100)),
			MaxAmount: ptr(decimal.NewFromInt(10)),
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmountRange)
}

func TestTransactionUseCase_ImportStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockStatementRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	metrics := mocks.NewMockMetricsRecorder(ctrl)

	idGen.EXPECT().Generate().Return("01HZX0000000000000000000AA")
	repo.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, lines []domain.Transaction) (int64, error) {
			require.Len(t, lines, 2)
			assert.Equal(t, "01HZX0000000000000000000AA", lines[0].ID)
			assert.Equal(t, domain.StatusUnreconciled, lines[0].Status)
			assert.Equal(t, "FR76-MAIN", lines[0].BankAccount)
			assert.Equal(t, "keep", lines[1].ID)
			assert.Equal(t, domain.StatusPending, lines[1].Status)
			return 2, nil
		})
	metrics.EXPECT().StatementLinesImported(2)

	uc := usecase.NewTransactionUseCase(repo, idGen, metrics, zerolog.Nop())

	result, err := uc.ImportStatement(context.Background(), usecase.ImportStatementInput{
		BankAccount: " FR76-MAIN ",
		Transactions: []domain.Transaction{
			{Date: day(2), Description: "Rent", Amount: decimal.NewFromInt(-1200)},
			{ID: "keep", Date: day(3), Description: "Card", Status: domain.StatusPending, Amount: decimal.NewFromInt(-20)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "FR76-MAIN", result.BankAccount)
	assert.Equal(t, 2, result.Received)
	assert.Equal(t, int64(2), result.Upserted)
}

func TestTransactionUseCase_ImportStatement_NumbersIdenticalLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockStatementRepository(ctrl)
	metrics := mocks.NewMockMetricsRecorder(ctrl)

	repo.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, lines []domain.Transaction) (int64, error) {
			require.Len(t, lines, 3)
			assert.Equal(t, 1, lines[0].Occurrence)
			assert.Equal(t, 2, lines[1].Occurrence)
			assert.Equal(t, 1, lines[2].Occurrence)
			return 3, nil
		})
	metrics.EXPECT().StatementLinesImported(3)

	uc := usecase.NewTransactionUseCase(repo, mocks.NewMockIDGenerator(ctrl), metrics, zerolog.Nop())

	_, err := uc.ImportStatement(context.Background(), usecase.ImportStatementInput{
		BankAccount: "FR76-MAIN",
		Transactions: []domain.Transaction{
			{ID: "f1", Date: day(3), Description: "Card fee", Amount: decimal.RequireFromString("-2.50")},
			{ID: "f2", Date: day(3), Description: "Card fee", Amount: decimal.RequireFromString("-2.50")},
			{ID: "f3", Date: day(4), Description: "Card fee", Amount: decimal.RequireFromString("-2.50")},
		},
	})
	require.NoError(t, err)
}

func TestTransactionUseCase_ImportStatement_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.ImportStatementInput
		err   error
	}{
		{
			name:  "missing bank account",
			input: usecase.ImportStatementInput{Transactions: bankLines()},
			err:   domain.ErrInvalidBankAccount,
		},
		{
			name:  "empty statement",
			input: usecase.ImportStatementInput{BankAccount: "FR76-MAIN"},
			err:   domain.ErrInvalidTransaction,
		},
		{
			name: "line without description",
			input: usecase.ImportStatementInput{
				BankAccount:  "FR76-MAIN",
				Transactions: []domain.Transaction{{ID: "x", Date: day(1), Amount: decimal.NewFromInt(5)}},
			},
			err: domain.ErrInvalidTransaction,
		},
		{
			name: "unknown status",
			input: usecase.ImportStatementInput{
				BankAccount:  "FR76-MAIN",
				Transactions: []domain.Transaction{{ID: "x", Date: day(1), Description: "Fee", Status: "lost"}},
			},
			err: domain.ErrInvalidStatus,
		},
		{
			name: "too many lines",
			input: usecase.ImportStatementInput{
				BankAccount:  "FR76-MAIN",
				Transactions: make([]domain.Transaction, usecase.MaxStatementLines+1),
			},
			err: domain.ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uc := usecase.NewTransactionUseCase(mocks.NewMockStatementRepository(ctrl), mocks.NewMockIDGenerator(ctrl), nil, zerolog.Nop())

			_, err := uc.ImportStatement(context.Background(), tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}
