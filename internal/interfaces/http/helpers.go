package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/event"
	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
	"tesoro/internal/domain/report"
	"tesoro/internal/domain/treasurer"
	"tesoro/internal/shared/middleware"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a domain error onto an HTTP status. Recoverable
// outcomes (missing scope, insufficient funds, bad transitions) keep their
// message; everything unrecognized becomes an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var denied *authz.DeniedError
	if errors.As(err, &denied) {
		writeError(w, http.StatusForbidden, denied.Error())
		return
	}

	var insufficient *ledger.InsufficientFundsError
	if errors.As(err, &insufficient) {
		writeError(w, http.StatusUnprocessableEntity, insufficient.Error())
		return
	}

	var transition *event.TransitionError
	if errors.As(err, &transition) {
		writeError(w, http.StatusConflict, transition.Error())
		return
	}

	switch {
	case errors.Is(err, fund.ErrFundNotFound),
		errors.Is(err, ledger.ErrEntryNotFound),
		errors.Is(err, report.ErrReportNotFound),
		errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, event.ErrItemNotFound),
		errors.Is(err, treasurer.ErrTreasurerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidTransfer),
		errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, fund.ErrInvalidFund),
		errors.Is(err, fund.ErrInvalidFundType),
		errors.Is(err, event.ErrInvalidEvent),
		errors.Is(err, event.ErrInvalidActual):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fund.ErrFundNameTaken),
		errors.Is(err, fund.ErrFundInactive),
		errors.Is(err, event.ErrEventNotEditable),
		errors.Is(err, event.ErrActualsLocked):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// identityFrom pulls the authenticated caller from the request context,
// answering 401 when the auth middleware did not run.
func identityFrom(w http.ResponseWriter, r *http.Request) (authz.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return identity, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}
