package http

import (
	"encoding/json"
	"net/http"

	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
)

type FundHandler struct {
	fundService   *fund.Service
	ledgerService *ledger.Service
}

func NewFundHandler(fundService *fund.Service, ledgerService *ledger.Service) *FundHandler {
	return &FundHandler{fundService: fundService, ledgerService: ledgerService}
}

// Request/Response DTOs

type CreateFundRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// HandleFunds routes requests to the appropriate handler based on method
func (h *FundHandler) HandleFunds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListFunds(w, r)
	case http.MethodPost:
		h.handleCreateFund(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleFundByID routes requests for a specific fund
func (h *FundHandler) HandleFundByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetFund(w, r)
	case http.MethodDelete:
		h.handleArchiveFund(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleFundLedger returns a fund's entry history, newest first
func (h *FundHandler) HandleFundLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	fundID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	entries, err := h.ledgerService.FundLedger(r.Context(), fundID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []*ledger.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *FundHandler) handleListFunds(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	funds, err := h.fundService.ListFunds(r.Context(), includeInactive)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if funds == nil {
		funds = []*fund.Fund{}
	}

	writeJSON(w, http.StatusOK, funds)
}

func (h *FundHandler) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req CreateFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	f, err := h.fundService.CreateFund(r.Context(), identity, fund.CreateParams{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, f)
}

func (h *FundHandler) handleGetFund(w http.ResponseWriter, r *http.Request) {
	fundID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	f, err := h.fundService.GetFund(r.Context(), fundID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *FundHandler) handleArchiveFund(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	fundID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.fundService.ArchiveFund(r.Context(), identity, fundID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
