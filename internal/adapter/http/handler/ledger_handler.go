package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetAccountLedger(ctx context.Context, input usecase.GetAccountLedgerInput) (*usecase.LedgerPage, error)
	GetPieceEntries(ctx context.Context, piece string) ([]domain.Entry, error)
	PostPiece(ctx context.Context, input usecase.PostPieceInput) ([]domain.Entry, error)
}

// LedgerHandler handles general-ledger HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// GetLedger returns an account's lines with progressive balances.
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	filter, err := parseFilter(r, "journal")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	page, err := h.ledgerUC.GetAccountLedger(r.Context(), usecase.GetAccountLedgerInput{
		AccountCode: code,
		Filter:      filter,
		Sort:        parseSort(r),
		Limit:       parseIntQuery(r, "limit", 50),
		Offset:      parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromPage(page))
}

// GetPiece lists the lines of a journal entry across accounts.
func (h *LedgerHandler) GetPiece(w http.ResponseWriter, r *http.Request) {
	piece := chi.URLParam(r, "piece")
	if piece == "" {
		writeError(w, http.StatusBadRequest, "missing piece", "")
		return
	}

	entries, err := h.ledgerUC.GetPieceEntries(r.Context(), piece)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get piece", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PieceResponse{
		Piece:   piece,
		Entries: dto.EntriesFromDomain(entries),
	})
}

// PostPiece writes a balanced journal entry.
func (h *LedgerHandler) PostPiece(w http.ResponseWriter, r *http.Request) {
	var req dto.PostPieceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entries, err := h.ledgerUC.PostPiece(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to post piece", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PieceResponse{
		Piece:   entries[0].Piece,
		Entries: dto.EntriesFromDomain(entries),
	})
}
