package http

import (
	"net/http"

	"github.com/tair/storefront-funnel/internal/funnel/usecase/command"
	"github.com/tair/storefront-funnel/internal/funnel/usecase/query"
)

// RecordView handles POST /api/ecom/product/view
func (h *FunnelHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	counted, err := h.commands.RecordView.Handle(r.Context(), command.RecordViewCommand{
		ProductID: req.ProductID,
		UserID:    userIDFrom(r.Context()),
		ViewerKey: r.Header.Get(ViewerKeyHeader),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	outcome := "skipped"
	if counted {
		outcome = "counted"
	}
	h.metrics.viewsRecorded.WithLabelValues(outcome).Inc()

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "View recorded",
	})
}

// GetCounters handles GET /api/ecom/products/{id}/counters
func (h *FunnelHandler) GetCounters(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		respondError(w, r, err)
		return
	}

	counters, err := h.queries.GetCounters.Handle(r.Context(), query.GetCountersQuery{ProductID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    counters,
	})
}

// ReconcileCounters handles POST /api/ecom/admin/counters/reconcile
func (h *FunnelHandler) ReconcileCounters(w http.ResponseWriter, r *http.Request) {
	report, err := h.commands.ReconcileCounters.Handle(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Counters reconciled",
		Data:    report,
	})
}
