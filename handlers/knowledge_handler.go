package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/peakform/coachd/app"
	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services/ingest"
	"github.com/peakform/coachd/services/providers"
	"github.com/peakform/coachd/utils"
)

// IngestRequest optionally carries inline documents. When empty, the corpus
// directory is re-read from disk.
type IngestRequest struct {
	Documents []models.Document `json:"documents,omitempty"`
}

// IngestHandler rebuilds the knowledge index and swaps it in atomically.
func IngestHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IngestRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
				return
			}
		}

		docs := req.Documents
		if len(docs) == 0 {
			loaded, err := ingest.LoadCorpus(deps.Config.Knowledge.CorpusDir)
			if err != nil {
				respondDomainError(w, err)
				return
			}
			docs = loaded
		}

		report, err := deps.Ingest.Reindex(r.Context(), docs)
		if err != nil {
			deps.Logger.Error("reindex failed", zap.Error(err))
			respondDomainError(w, err)
			return
		}

		_ = utils.WriteOK(w, report)
	}
}

// StatusHandler reports index, cache, and rate-budget state.
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"environment": deps.Config.Environment,
			"cache":       deps.Cache.Stats(),
		}

		index := map[string]interface{}{"ready": false}
		if idx, err := deps.Holder.Active(); err == nil {
			index["ready"] = true
			index["chunks"] = idx.Size()
			index["dimension"] = idx.Dimension()
		}
		status["index"] = index

		budgets := map[string]float64{}
		for _, kind := range []providers.Kind{
			providers.KindGeneration, providers.KindEmbedding, providers.KindRecipes,
		} {
			budgets[string(kind)] = deps.Limiter.Remaining(string(kind))
		}
		status["rate_budgets_remaining"] = budgets
		status["providers"] = deps.Registry.Kinds()

		_ = utils.WriteOK(w, status)
	}
}
