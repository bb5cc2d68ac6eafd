package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/usecase"
)

// LettrageService defines the behavior needed by LettrageHandler.
type LettrageService interface {
	Apply(ctx context.Context, input usecase.ApplyLettrageInput) (*usecase.LettrageResult, error)
	Remove(ctx context.Context, accountCode, code string) error
}

// LettrageHandler handles reconciliation HTTP requests.
type LettrageHandler struct {
	lettrageUC LettrageService
}

// NewLettrageHandler creates a new LettrageHandler.
func NewLettrageHandler(lettrageUC LettrageService) *LettrageHandler {
	return &LettrageHandler{lettrageUC: lettrageUC}
}

// Apply letters a balanced set of lines of one account.
func (h *LettrageHandler) Apply(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	var req dto.ApplyLettrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.lettrageUC.Apply(r.Context(), req.ToUseCaseInput(code))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to apply lettrage", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LettrageFromResult(result))
}

// Remove clears a reconciliation code from every line carrying it.
func (h *LettrageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	lettrage := chi.URLParam(r, "lettrage")
	if code == "" || lettrage == "" {
		writeError(w, http.StatusBadRequest, "missing account code or lettrage", "")
		return
	}

	if err := h.lettrageUC.Remove(r.Context(), code, lettrage); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to remove lettrage", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
