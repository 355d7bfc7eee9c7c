package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/ledger"
	"tesoro/internal/infrastructure/memory"
)

func newTransferFixture(t *testing.T) (*memory.Store, *TransferHandler, *fund.Fund, *fund.Fund) {
	t.Helper()
	store := memory.NewStore()
	source := store.AddFund(fund.NameGeneral, fund.TypeGeneral, decimal.RequireFromString("1000"))
	dest := store.AddFund(fund.NameMissions, fund.TypeDesignated, decimal.Zero)
	handler := NewTransferHandler(ledger.NewService(store.Ledger(), nil))
	return store, handler, source, dest
}

func TestHandleTransfer(t *testing.T) {
	store, handler, source, dest := newTransferFixture(t)

	body := `{"sourceFundId":1,"destFundId":2,"amount":"300","description":"Missions support"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/transfers", strings.NewReader(body))
	req = withIdentity(req, nationalIdentity())

	rr := httptest.NewRecorder()
	handler.HandleTransfer(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var result ledger.TransferResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !result.SourceBalance.Equal(decimal.RequireFromString("700")) {
		t.Errorf("source balance = %s, want 700", result.SourceBalance)
	}
	if !result.DestBalance.Equal(decimal.RequireFromString("300")) {
		t.Errorf("dest balance = %s, want 300", result.DestBalance)
	}

	s, _ := store.Fund(source.ID)
	d, _ := store.Fund(dest.ID)
	if !s.Balance.Equal(decimal.RequireFromString("700")) || !d.Balance.Equal(decimal.RequireFromString("300")) {
		t.Errorf("stored balances = %s / %s, want 700 / 300", s.Balance, d.Balance)
	}
}

func TestHandleTransfer_Errors(t *testing.T) {
	tests := []struct {
		name           string
		identity       *authz.Identity
		body           string
		expectedStatus int
	}{
		{
			name:           "Insufficient Funds",
			body:           `{"sourceFundId":1,"destFundId":2,"amount":"5000","description":"Too much"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Same Fund",
			body:           `{"sourceFundId":1,"destFundId":1,"amount":"10","description":"Loop"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Description",
			body:           `{"sourceFundId":1,"destFundId":2,"amount":"10"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown Fund",
			body:           `{"sourceFundId":1,"destFundId":42,"amount":"10","description":"Nowhere"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Denied For Supervisor",
			identity: &authz.Identity{
				UserID: 3, Email: "fs@example.org", Role: authz.RoleFundSupervisor,
			},
			body:           `{"sourceFundId":1,"destFundId":2,"amount":"10","description":"x"}`,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, handler, _, _ := newTransferFixture(t)

			req, _ := http.NewRequest(http.MethodPost, "/api/transfers", strings.NewReader(tt.body))
			identity := nationalIdentity()
			if tt.identity != nil {
				identity = *tt.identity
			}
			req = withIdentity(req, identity)

			rr := httptest.NewRecorder()
			handler.HandleTransfer(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v, body %s", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}
