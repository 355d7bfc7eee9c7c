package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/ledger"
)

type TransferHandler struct {
	service *ledger.Service
}

func NewTransferHandler(service *ledger.Service) *TransferHandler {
	return &TransferHandler{service: service}
}

type TransferRequest struct {
	SourceFundID int64           `json:"sourceFundId"`
	DestFundID   int64           `json:"destFundId"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         *time.Time      `json:"date,omitempty"`
	DocumentRef  string          `json:"documentRef,omitempty"`
}

// HandleTransfer moves a fixed amount between two funds
func (h *TransferHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := ledger.TransferParams{
		SourceFundID: req.SourceFundID,
		DestFundID:   req.DestFundID,
		Amount:       req.Amount,
		Description:  req.Description,
		DocumentRef:  req.DocumentRef,
		CreatedBy:    identity.Email,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	result, err := h.service.Transfer(r.Context(), identity, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
