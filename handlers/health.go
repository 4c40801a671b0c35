package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/peakform/coachd/app"
)

// HealthCheck returns a simple health check handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// ReadinessCheck reports whether the engine can serve grounded answers: the
// knowledge index must be published and at least one provider registered.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"status": "ready",
			"checks": map[string]string{},
		}
		checks := response["checks"].(map[string]string)

		if _, err := deps.Holder.Active(); err != nil {
			response["status"] = "not_ready"
			checks["index"] = "not_published"
		} else {
			checks["index"] = "ready"
		}

		if len(deps.Registry.Kinds()) == 0 {
			checks["providers"] = "none_configured"
		} else {
			checks["providers"] = "configured"
		}

		w.Header().Set("Content-Type", "application/json")
		if response["status"] == "ready" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}
