package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Weigh/internal/decision"
)

var (
	// ErrNotFound is returned by updates and deletes of a decision that does not exist.
	ErrNotFound = errors.New("decision not found")

	// ErrSchemaMissing means the database is reachable but migrations were not applied.
	ErrSchemaMissing = errors.New("weigh_decisions table missing, apply migrations/001_decisions.sql")
)

// Decision is a persisted set of BWM inputs. Results are never stored; they are
// recomputed from these inputs on demand.
type Decision struct {
	ID    uuid.UUID `json:"id"`
	Owner string    `json:"owner,omitempty"`

	decision.Decision

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DecisionFilter struct {
	Owner  string
	Limit  int
	Offset int
}

type DecisionStats struct {
	TotalDecisions  int `json:"total_decisions"`
	Owners          int `json:"owners"`
	ReadyToEvaluate int `json:"ready_to_evaluate"`
}

type Store interface {
	CreateDecision(ctx context.Context, d *Decision) error
	GetDecision(ctx context.Context, id uuid.UUID) (*Decision, error)
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]*Decision, error)
	UpdateDecision(ctx context.Context, d *Decision) error
	DeleteDecision(ctx context.Context, id uuid.UUID) error

	GetStats(ctx context.Context) (*DecisionStats, error)

	Ping(ctx context.Context) error
	Close() error
}
