package httpapi

import (
	"net/http"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/log"
)

func (h *Handler) complianceDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.compliance.Dashboard(r.Context(), time.Now().UTC())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *Handler) complianceExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="licenses.csv"`)
	if err := h.compliance.ExportCSV(r.Context(), w, time.Now().UTC()); err != nil {
		// Headers are gone by now; all we can do is log.
		log.WithComponent("httpapi").Error().Err(err).Msg("export compliance csv")
	}
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		Entity:   q.Get("entity"),
		EntityID: q.Get("entity_id"),
		Action:   domain.AuditAction(q.Get("action")),
		AfterID:  parseInt64Query(r, "after_id"),
		Limit:    int(parseInt64Query(r, "limit")),
	}

	entries, err := h.audit.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}
