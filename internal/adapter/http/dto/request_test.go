package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2024-03-15 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParseDate() = %v", got)
	}

	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestPostPieceRequest_ToUseCaseInput(t *testing.T) {
	req := &PostPieceRequest{
		Date:        "2024-01-05",
		Piece:       "FA-001",
		JournalCode: "AC",
		Lines: []PieceLineRequest{
			{AccountCode: "607000", Label: "Goods", Debit: decimal.RequireFromString("100")},
			{AccountCode: "401000", Label: "Goods", Credit: decimal.RequireFromString("100")},
		},
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Piece != "FA-001" || got.JournalCode != "AC" || len(got.Lines) != 2 {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Date.Day() != 5 {
		t.Fatalf("expected day 5, got %v", got.Date)
	}
	if !got.Lines[1].Credit.Equal(decimal.NewFromInt(100)) || got.Lines[1].AccountCode != "401000" {
		t.Fatalf("unexpected second line: %+v", got.Lines[1])
	}

	req.Date = "yesterday"
	if _, err := req.ToUseCaseInput(); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

func TestApplyLettrageRequest_ToUseCaseInput(t *testing.T) {
	req := &ApplyLettrageRequest{EntryIDs: []string{"e1", "e2"}}

	got := req.ToUseCaseInput("401000")
	if got.AccountCode != "401000" || len(got.EntryIDs) != 2 {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestImportStatementRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		request ImportStatementRequest
		wantErr error
		check   func(t *testing.T, txs []domain.Transaction)
	}{
		{
			name: "valid lines",
			request: ImportStatementRequest{Transactions: []TransactionRequest{
				{Date: "2024-02-01", Amount: decimal.RequireFromString("-42.10"), Description: "Card", Status: "Pending"},
				{Date: "2024-02-02", Amount: decimal.RequireFromString("1500"), Description: "Salary", Occurrence: 2},
			}},
			check: func(t *testing.T, txs []domain.Transaction) {
				if txs[1].Occurrence != 2 {
					t.Fatalf("expected occurrence to be carried, got %d", txs[1].Occurrence)
				}
				if txs[0].Status != domain.StatusPending {
					t.Fatalf("expected pending status, got %q", txs[0].Status)
				}
				if txs[1].Status != "" {
					t.Fatalf("expected empty status to be left for defaulting, got %q", txs[1].Status)
				}
				if txs[0].BankAccount != "FR76-MAIN" {
					t.Fatalf("expected bank account to be set, got %q", txs[0].BankAccount)
				}
			},
		},
		{
			name: "invalid status",
			request: ImportStatementRequest{Transactions: []TransactionRequest{
				{Date: "2024-02-01", Description: "Card", Status: "done"},
			}},
			wantErr: domain.ErrInvalidStatus,
		},
		{
			name: "invalid date",
			request: ImportStatementRequest{Transactions: []TransactionRequest{
				{Date: "02/01/2024", Description: "Card"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput("FR76-MAIN")
			if tt.check == nil {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got.Transactions)
		})
	}
}

func TestTransactionRequestFromDomain(t *testing.T) {
	got := TransactionRequestFromDomain(domain.Transaction{
		ID:          "t1",
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("-9.99"),
		Description: "Coffee",
		Status:      domain.StatusReconciled,
	})

	if got.Date != "2024-02-01" || got.Status != "reconciled" || got.Amount.String() != "-9.99" {
		t.Fatalf("unexpected request: %+v", got)
	}
}
