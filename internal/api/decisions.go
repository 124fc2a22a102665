package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
	"github.com/MikeSquared-Agency/Weigh/internal/decision"
	"github.com/MikeSquared-Agency/Weigh/internal/hermes"
	"github.com/MikeSquared-Agency/Weigh/internal/store"
	"github.com/MikeSquared-Agency/Weigh/internal/validation"
)

type DecisionsHandler struct {
	store     store.Store
	hermes    hermes.Client
	evaluator *EvaluateHandler
	logger    *slog.Logger
}

func NewDecisionsHandler(s store.Store, h hermes.Client, e *EvaluateHandler, logger *slog.Logger) *DecisionsHandler {
	return &DecisionsHandler{store: s, hermes: h, evaluator: e, logger: logger}
}

type CreateDecisionRequest struct {
	Name string `json:"name"`
	// Criteria names; the default Price, Quality and Durability set is used when empty.
	Criteria []string `json:"criteria,omitempty"`
}

type CriterionRequest struct {
	Name string `json:"name"`
}

type SelectionRequest struct {
	Best  *bwm.CriterionID `json:"best,omitempty"`
	Worst *bwm.CriterionID `json:"worst,omitempty"`
}

type ComparisonsRequest struct {
	BestToOthers  map[bwm.CriterionID]float64 `json:"best_to_others"`
	OthersToWorst map[bwm.CriterionID]float64 `json:"others_to_worst"`
}

func (h *DecisionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDecisionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	d := decision.New(req.Name)
	if len(req.Criteria) > 0 {
		if len(req.Criteria) > h.evaluator.cfg.MaxCriteria {
			writeInputError(w, fmt.Errorf("%w: %d > %d", validation.ErrTooManyCriteria, len(req.Criteria), h.evaluator.cfg.MaxCriteria))
			return
		}
		var err error
		if d, err = decision.NewWithCriteria(req.Name, req.Criteria...); err != nil {
			writeInputError(w, err)
			return
		}
	}

	sd := &store.Decision{Owner: r.Header.Get(OwnerHeader), Decision: *d}
	if err := h.store.CreateDecision(r.Context(), sd); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(hermes.SubjectDecisionCreated(sd.ID.String()), decisionEvent(sd))
	writeJSON(w, http.StatusCreated, sd)
}

func (h *DecisionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.DecisionFilter{Owner: r.URL.Query().Get("owner")}
	if filter.Owner == "" {
		filter.Owner = r.Header.Get(OwnerHeader)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	decisions, err := h.store.ListDecisions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if decisions == nil {
		decisions = []*store.Decision{}
	}
	writeJSON(w, http.StatusOK, decisions)
}

func (h *DecisionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DecisionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteDecision(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "decision not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(hermes.SubjectDecisionDeleted(id.String()), hermes.DecisionEvent{DecisionID: id.String()})
	w.WriteHeader(http.StatusNoContent)
}

func (h *DecisionsHandler) AddCriterion(w http.ResponseWriter, r *http.Request) {
	var req CriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	limit := h.evaluator.cfg.MaxCriteria
	h.mutate(w, r, http.StatusCreated, func(d *decision.Decision) error {
		if len(d.Criteria) >= limit {
			return fmt.Errorf("%w: limit is %d", validation.ErrTooManyCriteria, limit)
		}
		d.AddCriterion(req.Name)
		return nil
	})
}

func (h *DecisionsHandler) RenameCriterion(w http.ResponseWriter, r *http.Request) {
	cid, ok := criterionParam(w, r)
	if !ok {
		return
	}
	var req CriterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	h.mutate(w, r, http.StatusOK, func(d *decision.Decision) error {
		return d.RenameCriterion(cid, req.Name)
	})
}

func (h *DecisionsHandler) RemoveCriterion(w http.ResponseWriter, r *http.Request) {
	cid, ok := criterionParam(w, r)
	if !ok {
		return
	}
	h.mutate(w, r, http.StatusOK, func(d *decision.Decision) error {
		return d.RemoveCriterion(cid)
	})
}

func (h *DecisionsHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Best == nil && req.Worst == nil {
		writeError(w, http.StatusBadRequest, "best or worst required")
		return
	}
	h.mutate(w, r, http.StatusOK, func(d *decision.Decision) error {
		if req.Best != nil {
			if err := d.SelectBest(*req.Best); err != nil {
				return err
			}
		}
		if req.Worst != nil {
			return d.SelectWorst(*req.Worst)
		}
		return nil
	})
}

func (h *DecisionsHandler) SetComparisons(w http.ResponseWriter, r *http.Request) {
	var req ComparisonsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.mutate(w, r, http.StatusOK, func(d *decision.Decision) error {
		return d.ReplaceComparisons(req.BestToOthers, req.OthersToWorst)
	})
}

// Evaluate runs the engine over the stored inputs. The result is returned and
// published but never persisted.
func (h *DecisionsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}

	p, err := d.Problem()
	if err != nil {
		h.evaluator.metrics.ObserveRejected()
		writeInputError(w, err)
		return
	}
	out, err := h.evaluator.run(d.Name, p)
	if err != nil {
		writeInputError(w, err)
		return
	}

	weights := make([]hermes.WeightEntry, 0, len(out.Weights))
	for _, cw := range out.Weights {
		weights = append(weights, hermes.WeightEntry{CriterionID: int(cw.ID), Name: cw.Name, Weight: cw.Weight})
	}
	h.publish(hermes.SubjectDecisionEvaluated(d.ID.String()), hermes.DecisionEvaluatedEvent{
		DecisionID:       d.ID.String(),
		Weights:          weights,
		ConsistencyRatio: out.ConsistencyRatio,
		IsConsistent:     out.IsConsistent,
		EvaluatedAt:      time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *DecisionsHandler) load(w http.ResponseWriter, r *http.Request) (*store.Decision, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	d, err := h.store.GetDecision(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "decision not found")
		return nil, false
	}
	return d, true
}

// mutate loads the decision, applies fn and persists the result. Input errors
// from fn leave the stored decision untouched.
func (h *DecisionsHandler) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(*decision.Decision) error) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := fn(&d.Decision); err != nil {
		writeInputError(w, err)
		return
	}
	if err := h.store.UpdateDecision(r.Context(), d); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "decision not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(hermes.SubjectDecisionUpdated(d.ID.String()), decisionEvent(d))
	writeJSON(w, status, d)
}

func (h *DecisionsHandler) publish(subject string, data interface{}) {
	if h.hermes == nil {
		return
	}
	if err := h.hermes.Publish(subject, data); err != nil {
		h.logger.Warn("failed to publish", "subject", subject, "error", err)
	}
}

func criterionParam(w http.ResponseWriter, r *http.Request) (bwm.CriterionID, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "criterion_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid criterion_id")
		return 0, false
	}
	return bwm.CriterionID(n), true
}

func decisionEvent(d *store.Decision) hermes.DecisionEvent {
	return hermes.DecisionEvent{DecisionID: d.ID.String(), Name: d.Name, Owner: d.Owner}
}
