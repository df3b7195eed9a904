package httpapi

import (
	"net/http"

	"applyflow-engine/internal/dedup"
	"applyflow-engine/internal/domain"
)

type HistoryHandler struct {
	Engine *dedup.Engine
}

func (h HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Engine.History(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	if recs == nil {
		recs = []domain.DedupRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"records": recs})
}

func (h HistoryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.Reset(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reset_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"deleted": n})
}
