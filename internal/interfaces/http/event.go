package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/event"
)

type EventHandler struct {
	service *event.Service
}

func NewEventHandler(service *event.Service) *EventHandler {
	return &EventHandler{service: service}
}

// Request/Response DTOs

type CreateEventRequest struct {
	FundID    int64     `json:"fundId"`
	ChurchID  *int64    `json:"churchId,omitempty"`
	Name      string    `json:"name"`
	EventDate time.Time `json:"eventDate"`
}

type BudgetItemRequest struct {
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Projected   decimal.Decimal `json:"projected"`
}

type ActualRequest struct {
	Line       string          `json:"line"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	Date       *time.Time      `json:"date,omitempty"`
	ReceiptRef string          `json:"receiptRef,omitempty"`
}

type TransitionRequest struct {
	Comment string `json:"comment,omitempty"`
}

type EventDetailResponse struct {
	Event       *event.Event        `json:"event"`
	BudgetItems []*event.BudgetItem `json:"budgetItems"`
	Actuals     []*event.Actual     `json:"actuals"`
	Audit       []*event.AuditEntry `json:"audit"`
}

// HandleEvents routes collection-level requests
func (h *EventHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListEvents(w, r)
	case http.MethodPost:
		h.handleCreateEvent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleEventByID returns an event with its budget, actuals and history
func (h *EventHandler) HandleEventByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx := r.Context()
	ev, err := h.service.GetEvent(ctx, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items, err := h.service.ListBudgetItems(ctx, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	actuals, err := h.service.ListActuals(ctx, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	audit, err := h.service.ListAudit(ctx, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if items == nil {
		items = []*event.BudgetItem{}
	}
	if actuals == nil {
		actuals = []*event.Actual{}
	}
	if audit == nil {
		audit = []*event.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, EventDetailResponse{
		Event:       ev,
		BudgetItems: items,
		Actuals:     actuals,
		Audit:       audit,
	})
}

// HandleBudgetItems adds a projected line to an event's budget
func (h *EventHandler) HandleBudgetItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req BudgetItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.AddBudgetItem(r.Context(), identity, eventID, event.BudgetItemParams{
		Category:    req.Category,
		Description: req.Description,
		Projected:   req.Projected,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// HandleBudgetItemByID updates or removes a projected line
func (h *EventHandler) HandleBudgetItemByID(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req BudgetItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		item, err := h.service.UpdateBudgetItem(r.Context(), identity, eventID, itemID, event.BudgetItemParams{
			Category:    req.Category,
			Description: req.Description,
			Projected:   req.Projected,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	case http.MethodDelete:
		if err := h.service.RemoveBudgetItem(r.Context(), identity, eventID, itemID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleActuals records a realized income or expense line
func (h *EventHandler) HandleActuals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ActualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := event.ActualParams{
		Line:       req.Line,
		Concept:    req.Concept,
		Amount:     req.Amount,
		ReceiptRef: req.ReceiptRef,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	actual, err := h.service.AddActual(r.Context(), identity, eventID, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, actual)
}

// HandleSubmit moves a draft or pending_revision event into review
func (h *EventHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Submit)
}

// HandleRequestRevision sends a submitted event back to its editor
func (h *EventHandler) HandleRequestRevision(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.RequestRevision)
}

// HandleReject terminally rejects a submitted event
func (h *EventHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Reject)
}

// HandleApprove approves a submitted event and posts its actuals
func (h *EventHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.service.Approve(r.Context(), identity, eventID, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *EventHandler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	fundID := int64(queryInt(r, "fundId", 0))
	if fundID <= 0 {
		writeError(w, http.StatusBadRequest, "fundId query parameter is required")
		return
	}

	events, err := h.service.ListEventsByFund(r.Context(), fundID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []*event.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := h.service.CreateEvent(r.Context(), identity, event.CreateParams{
		FundID:    req.FundID,
		ChurchID:  req.ChurchID,
		Name:      req.Name,
		EventDate: req.EventDate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ev)
}

func (h *EventHandler) handleTransition(w http.ResponseWriter, r *http.Request,
	do func(ctx context.Context, identity authz.Identity, eventID int64, comment string) (*event.Event, error),
) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	ev, err := do(r.Context(), identity, eventID, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ev)
}
