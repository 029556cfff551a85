package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"affordability-assessment/internal/logger"
	"affordability-assessment/internal/transport/auth"
)

func (h *Handler) startReport(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := userAndID(w, r)
	if !ok {
		return
	}

	reportID, err := h.reports.StartReport(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "start report", err)
		return
	}

	SuccessAccepted(w, "Report queued", map[string]any{
		"report_id": reportID,
	})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reports, err := h.reports.GetReports(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "get reports", err)
		return
	}

	Success(w, "", reports)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	reportID := chi.URLParam(r, "report_id")
	if reportID == "" {
		ErrorBadRequest(w, "report_id is required")
		return
	}

	report, err := h.reports.GetReport(r.Context(), reportID, userID)
	if err != nil {
		writeServiceError(w, "get report", err)
		return
	}

	Success(w, "", report)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request) {
	path, name, err := h.files.Resolve(chi.URLParam(r, "file"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (h *Handler) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	logger.Infof("[WS] connected: user_id=%d", userID)
	h.sockets.HandleWebSocket(w, r, userID)
}
