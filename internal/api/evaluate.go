package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
	"github.com/MikeSquared-Agency/Weigh/internal/config"
	"github.com/MikeSquared-Agency/Weigh/internal/metrics"
	"github.com/MikeSquared-Agency/Weigh/internal/report"
	"github.com/MikeSquared-Agency/Weigh/internal/validation"
)

type EvaluateHandler struct {
	metrics *metrics.Metrics
	cfg     config.EvaluationConfig
	logger  *slog.Logger
}

func NewEvaluateHandler(m *metrics.Metrics, cfg config.EvaluationConfig, logger *slog.Logger) *EvaluateHandler {
	return &EvaluateHandler{metrics: m, cfg: cfg, logger: logger}
}

// run evaluates p under the configured limits and records the outcome.
func (h *EvaluateHandler) run(name string, p bwm.Problem) (report.JSONEvaluation, error) {
	if err := validation.CheckCriteriaLimit(p, h.cfg.MaxCriteria); err != nil {
		h.metrics.ObserveRejected()
		return report.JSONEvaluation{}, err
	}

	var opts []bwm.Option
	if h.cfg.Strict {
		opts = append(opts, bwm.WithStrict())
	}
	res, err := bwm.Evaluate(p, opts...)
	if err != nil {
		h.metrics.ObserveRejected()
		return report.JSONEvaluation{}, err
	}

	h.metrics.ObserveResult(len(p.Criteria), res)
	return report.NewJSONEvaluation(report.Evaluation{Name: name, Criteria: p.Criteria, Result: res}), nil
}

func (h *EvaluateHandler) runDocument(data []byte) (report.JSONEvaluation, error) {
	name, p, err := validation.ParseProblem(data)
	if err != nil {
		h.metrics.ObserveRejected()
		return report.JSONEvaluation{}, err
	}
	return h.run(name, p)
}

// Evaluate accepts a problem document as JSON or YAML.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.runDocument(body)
	if err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type BatchRequest struct {
	Problems []json.RawMessage `json:"problems"`
}

// BatchEntry holds either an evaluation or the error that prevented it.
type BatchEntry struct {
	*report.JSONEvaluation
	Error string `json:"error,omitempty"`
}

type BatchResponse struct {
	Results []BatchEntry `json:"results"`
}

// Batch evaluates every problem concurrently. Results keep request order and a
// bad problem only fails its own entry.
func (h *EvaluateHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Problems) == 0 {
		writeError(w, http.StatusBadRequest, "problems required")
		return
	}

	results := make([]BatchEntry, len(req.Problems))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(h.cfg.BatchConcurrency)
	for i, raw := range req.Problems {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := h.runDocument(raw)
			if err != nil {
				results[i] = BatchEntry{Error: err.Error()}
				return nil
			}
			results[i] = BatchEntry{JSONEvaluation: &out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Warn("batch evaluation aborted", "error", err, "problems", len(req.Problems))
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}
