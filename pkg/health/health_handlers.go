package health

import (
	"encoding/json"
	"net/http"
)

// HTTPHandler serves the aggregate of every component. Degraded still
// answers 200.
func (r *Reporter) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response := r.Check()
		code := http.StatusOK
		if response.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, response)
	}
}

// ReadinessHandler serves the readiness components. Readiness is binary.
func (r *Reporter) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response := r.CheckReadiness()
		code := http.StatusOK
		if response.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, response)
	}
}

// LivenessHandler answers 200 while the process can serve HTTP.
func (r *Reporter) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Response{Status: StatusHealthy, Timestamp: r.now(), Checks: map[string]Check{}})
	}
}

// Register mounts /healthz, /readyz and /livez on mux.
func (r *Reporter) Register(mux *http.ServeMux) {
	mux.Handle("/healthz", r.HTTPHandler())
	mux.Handle("/readyz", r.ReadinessHandler())
	mux.Handle("/livez", r.LivenessHandler())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
