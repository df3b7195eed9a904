package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"applyflow-engine/internal/events"
	"applyflow-engine/internal/pipeline"
)

type ProcessHandler struct {
	Pipeline *pipeline.Pipeline
	Hub      *events.Hub
	Log      *zap.SugaredLogger
}

type processRequest struct {
	URL string `json:"url"`
}

type batchRequest struct {
	URLs    []string `json:"urls"`
	Workers int      `json:"workers,omitempty"`
}

func (h ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_url", "url is required")
		return
	}

	out, err := h.Pipeline.Process(r.Context(), req.URL)
	if err != nil {
		h.Log.Errorw("process failed", "url", req.URL, "error", err)
		WriteError(w, r, http.StatusBadGateway, "process_failed", err.Error())
		return
	}

	h.Hub.PublishOutcome(RequestIDFrom(r.Context()), string(out.Status), req.URL)
	WriteJSON(w, http.StatusOK, out)
}

func (h ProcessHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		WriteError(w, r, http.StatusBadRequest, "missing_urls", "urls is required")
		return
	}

	outs, err := h.Pipeline.ProcessAll(r.Context(), req.URLs, req.Workers)
	if err != nil {
		h.Log.Errorw("batch failed", "urls", len(req.URLs), "error", err)
		WriteError(w, r, http.StatusBadGateway, "process_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	for i, out := range outs {
		h.Hub.PublishOutcome(reqID, string(out.Status), req.URLs[i])
	}
	WriteJSON(w, http.StatusOK, map[string]any{"outcomes": outs})
}
