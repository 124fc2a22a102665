package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
	"github.com/MikeSquared-Agency/Weigh/internal/decision"
	"github.com/MikeSquared-Agency/Weigh/internal/validation"
)

// maxBodyBytes bounds problem documents and decision payloads.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// inputStatus maps an error from parsing, editing or evaluating a problem to an
// HTTP status. Anything the engine or the decision workspace refuses is 422;
// documents that do not parse or do not match the schema are 400.
func inputStatus(err error) int {
	switch {
	case errors.Is(err, decision.ErrCriterionNotFound):
		return http.StatusNotFound
	case errors.Is(err, bwm.ErrMissingSelection),
		errors.Is(err, bwm.ErrDuplicateCriterion),
		errors.Is(err, bwm.ErrInvalidComparison),
		errors.Is(err, bwm.ErrDegenerateInput),
		errors.Is(err, decision.ErrMinimumCriteria),
		errors.Is(err, decision.ErrSelfComparison),
		errors.Is(err, validation.ErrTooManyCriteria):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeInputError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{"error": err.Error()}
	var se *validation.SchemaError
	if errors.As(err, &se) {
		body["problems"] = se.Problems
	}
	writeJSON(w, inputStatus(err), body)
}
