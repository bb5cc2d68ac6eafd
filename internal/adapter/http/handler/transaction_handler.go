package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
	ImportStatement(ctx context.Context, input usecase.ImportStatementInput) (*usecase.ImportResult, error)
}

// TransactionHandler handles bank statement HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// List returns the filtered and sorted transactions of a bank account.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "missing bank account", "")
		return
	}

	filter, err := parseFilter(r, "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	page, err := h.transactionUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		BankAccount: account,
		Filter:      filter,
		Sort:        parseSort(r),
		Limit:       parseIntQuery(r, "limit", 50),
		Offset:      parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromPage(page))
}

// Import stores a batch of statement lines for a bank account.
func (h *TransactionHandler) Import(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "missing bank account", "")
		return
	}

	var req dto.ImportStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(account)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transactionUC.ImportStatement(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to import statement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ImportFromResult(result))
}
