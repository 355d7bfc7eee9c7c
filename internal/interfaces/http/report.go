package http

import (
	"net/http"

	"tesoro/internal/domain/report"
)

type ReportHandler struct {
	service *report.Service
}

func NewReportHandler(service *report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// HandleCompile compiles a finalized monthly report into ledger postings.
// Re-compiling an already compiled report succeeds without posting again.
func (h *ReportHandler) HandleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	reportID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.CompileAndPost(r.Context(), identity, reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
