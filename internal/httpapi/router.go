package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	ph := ProcessHandler{Pipeline: d.Pipeline, Hub: d.Hub, Log: d.Log}
	mux.HandleFunc("/process", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Process,
	}))
	mux.HandleFunc("/process/batch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.ProcessBatch,
	}))

	hh := HistoryHandler{Engine: d.Engine}
	mux.HandleFunc("/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.List,
	}))
	mux.HandleFunc("/history/reset", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: hh.Reset,
	}))

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
