package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.checkSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Ping checks connectivity and that the decisions table exists.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return err
	}
	return s.checkSchema(ctx)
}

func (s *PostgresStore) checkSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1 FROM weigh_decisions LIMIT 0")
	return schemaError(err)
}

// schemaError turns an undefined_table error into ErrSchemaMissing.
func schemaError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
	}
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var decisionColumns = []string{
	"decision_id", "name", "owner", "criteria", "best", "worst",
	"best_to_others", "others_to_worst", "created_at", "updated_at",
}

func (s *PostgresStore) CreateDecision(ctx context.Context, d *Decision) error {
	criteriaJSON, btoJSON, otwJSON, err := marshalInputs(d)
	if err != nil {
		return err
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO weigh_decisions (name, owner, criteria, best, worst, best_to_others, others_to_worst)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING decision_id, created_at, updated_at`,
		d.Name, d.Owner, criteriaJSON, nullableID(d.Best), nullableID(d.Worst), btoJSON, otwJSON,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (s *PostgresStore) GetDecision(ctx context.Context, id uuid.UUID) (*Decision, error) {
	query, args, err := psql.Select(decisionColumns...).
		From("weigh_decisions").
		Where(sq.Eq{"decision_id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	d, err := scanDecision(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (s *PostgresStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]*Decision, error) {
	q := psql.Select(decisionColumns...).
		From("weigh_decisions").
		OrderBy("created_at DESC")

	if filter.Owner != "" {
		q = q.Where(sq.Eq{"owner": filter.Owner})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	q = q.Limit(uint64(limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateDecision(ctx context.Context, d *Decision) error {
	criteriaJSON, btoJSON, otwJSON, err := marshalInputs(d)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE weigh_decisions SET
			name = $2, owner = $3, criteria = $4, best = $5, worst = $6,
			best_to_others = $7, others_to_worst = $8, updated_at = NOW()
		WHERE decision_id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.Owner, criteriaJSON, nullableID(d.Best), nullableID(d.Worst), btoJSON, otwJSON,
	).Scan(&d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) DeleteDecision(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM weigh_decisions WHERE decision_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetStats(ctx context.Context) (*DecisionStats, error) {
	stats := &DecisionStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT owner) FILTER (WHERE owner <> ''),
			COUNT(*) FILTER (WHERE best IS NOT NULL AND worst IS NOT NULL)
		FROM weigh_decisions`,
	).Scan(&stats.TotalDecisions, &stats.Owners, &stats.ReadyToEvaluate)
	return stats, err
}

func marshalInputs(d *Decision) (criteria, bestToOthers, othersToWorst []byte, err error) {
	if criteria, err = json.Marshal(d.Criteria); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal criteria: %w", err)
	}
	if bestToOthers, err = json.Marshal(d.BestToOthers); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal best_to_others: %w", err)
	}
	if othersToWorst, err = json.Marshal(d.OthersToWorst); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal others_to_worst: %w", err)
	}
	return criteria, bestToOthers, othersToWorst, nil
}

func nullableID(id *bwm.CriterionID) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func idFromNullable(n sql.NullInt64) *bwm.CriterionID {
	if !n.Valid {
		return nil
	}
	id := bwm.CriterionID(n.Int64)
	return &id
}

func scanDecision(row pgx.Row) (*Decision, error) {
	d := &Decision{}
	var criteriaJSON, btoJSON, otwJSON []byte
	var best, worst sql.NullInt64
	if err := row.Scan(
		&d.ID, &d.Name, &d.Owner, &criteriaJSON, &best, &worst,
		&btoJSON, &otwJSON, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d.Best = idFromNullable(best)
	d.Worst = idFromNullable(worst)
	if criteriaJSON != nil {
		if err := json.Unmarshal(criteriaJSON, &d.Criteria); err != nil {
			return nil, fmt.Errorf("decode criteria: %w", err)
		}
	}
	if btoJSON != nil {
		_ = json.Unmarshal(btoJSON, &d.BestToOthers)
	}
	if otwJSON != nil {
		_ = json.Unmarshal(otwJSON, &d.OthersToWorst)
	}
	if d.BestToOthers == nil {
		d.BestToOthers = map[bwm.CriterionID]float64{}
	}
	if d.OthersToWorst == nil {
		d.OthersToWorst = map[bwm.CriterionID]float64{}
	}
	return d, nil
}
