package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/ledger"
)

type LedgerHandler struct {
	service *ledger.Service
}

func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Request/Response DTOs

type PostEntryRequest struct {
	FundID   int64           `json:"fundId"`
	Amount   decimal.Decimal `json:"amount"` // signed: positive credits, negative debits
	Date     *time.Time      `json:"date,omitempty"`
	Concept  string          `json:"concept"`
	Provider string          `json:"provider,omitempty"`
	ChurchID *int64          `json:"churchId,omitempty"`
}

type ReverseEntryRequest struct {
	Reason string `json:"reason"`
}

// HandleEntries posts a direct ledger entry
func (h *LedgerHandler) HandleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req PostEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := ledger.EntryParams{
		FundID:    req.FundID,
		Amount:    req.Amount,
		Concept:   req.Concept,
		Provider:  req.Provider,
		ChurchID:  req.ChurchID,
		CreatedBy: identity.Email,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	entry, err := h.service.PostEntry(r.Context(), identity, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HandleEntryByID retrieves a single ledger entry
func (h *LedgerHandler) HandleEntryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	entryID := r.PathValue("id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	entry, err := h.service.GetEntry(r.Context(), entryID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleReverseEntry posts the opposing entry for an existing one
func (h *LedgerHandler) HandleReverseEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	entryID := r.PathValue("id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	var req ReverseEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reversal, err := h.service.ReverseEntry(r.Context(), identity, entryID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reversal)
}
