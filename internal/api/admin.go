package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Weigh/internal/config"
	"github.com/MikeSquared-Agency/Weigh/internal/store"
)

type AdminHandler struct {
	store store.Store
	eval  config.EvaluationConfig
}

func NewAdminHandler(s store.Store, eval config.EvaluationConfig) *AdminHandler {
	return &AdminHandler{store: s, eval: eval}
}

// StatsResponse is the stored-decision summary plus the evaluation limits in force.
type StatsResponse struct {
	*store.DecisionStats
	Strict           bool `json:"strict"`
	MaxCriteria      int  `json:"max_criteria"`
	BatchConcurrency int  `json:"batch_concurrency"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		DecisionStats:    stats,
		Strict:           h.eval.Strict,
		MaxCriteria:      h.eval.MaxCriteria,
		BatchConcurrency: h.eval.BatchConcurrency,
	})
}
