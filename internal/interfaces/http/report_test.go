package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"tesoro/internal/domain/fund"
	"tesoro/internal/domain/report"
	"tesoro/internal/infrastructure/memory"
)

func newReportFixture(t *testing.T) (*memory.Store, *ReportHandler) {
	t.Helper()
	store := memory.NewStore()
	store.AddFund(fund.NameGeneral, fund.TypeGeneral, decimal.Zero)
	store.AddFund(fund.NameNational, fund.TypeDesignated, decimal.Zero)
	store.AddReport(report.Snapshot{
		ID: 42, ChurchID: 7, Month: 3, Year: 2026,
		Tithes:    decimal.RequireFromString("1000000"),
		Offerings: decimal.RequireFromString("500000"),
	})
	return store, NewReportHandler(report.NewService(store.Reports()))
}

func compileRequest(reportID string) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, "/api/reports/"+reportID+"/compile", nil)
	req.SetPathValue("id", reportID)
	return withIdentity(req, nationalIdentity())
}

func TestHandleCompile(t *testing.T) {
	_, handler := newReportFixture(t)

	rr := httptest.NewRecorder()
	handler.HandleCompile(rr, compileRequest("42"))

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var result report.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.AlreadyPosted {
		t.Error("first compile reported as already posted")
	}
	if result.EntriesPosted != 2 {
		t.Errorf("entries posted = %d, want 2", result.EntriesPosted)
	}

	// Re-compiling is an idempotent success.
	rr = httptest.NewRecorder()
	handler.HandleCompile(rr, compileRequest("42"))
	if rr.Code != http.StatusOK {
		t.Fatalf("recompile status = %v, want %v", rr.Code, http.StatusOK)
	}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !result.AlreadyPosted || result.EntriesPosted != 0 {
		t.Errorf("recompile result = %+v, want already posted with 0 entries", result)
	}
}

func TestHandleCompile_UnknownReport(t *testing.T) {
	_, handler := newReportFixture(t)

	rr := httptest.NewRecorder()
	handler.HandleCompile(rr, compileRequest("404"))

	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}
}
