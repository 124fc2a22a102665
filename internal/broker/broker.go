package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
	"github.com/MikeSquared-Agency/Weigh/internal/config"
	"github.com/MikeSquared-Agency/Weigh/internal/hermes"
	"github.com/MikeSquared-Agency/Weigh/internal/metrics"
	"github.com/MikeSquared-Agency/Weigh/internal/report"
	"github.com/MikeSquared-Agency/Weigh/internal/validation"
)

// Responder answers evaluate requests published on hermes. Requests are queued
// from the subscription and evaluated by a fixed pool of workers.
type Responder struct {
	hermes  hermes.Client
	metrics *metrics.Metrics
	cfg     *config.Config
	logger  *slog.Logger

	requests chan []byte

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(h hermes.Client, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Responder {
	return &Responder{
		hermes:   h,
		metrics:  m,
		cfg:      cfg,
		logger:   logger,
		requests: make(chan []byte, cfg.Evaluation.BatchConcurrency*4),
		stopCh:   make(chan struct{}),
	}
}

func (r *Responder) Start(ctx context.Context) {
	workers := r.cfg.Evaluation.BatchConcurrency
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker(ctx)
	}
}

func (r *Responder) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Responder) SetupSubscriptions() error {
	return r.hermes.QueueSubscribe(hermes.SubjectEvaluateRequest, hermes.QueueGroup, func(_ string, data []byte) {
		select {
		case r.requests <- data:
		case <-r.stopCh:
		}
	})
}

func (r *Responder) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case data := <-r.requests:
			r.HandleRequest(data)
		}
	}
}

// HandleRequest evaluates one encoded EvaluateRequestEvent and publishes the
// completed or failed reply.
func (r *Responder) HandleRequest(data []byte) {
	var evt hermes.EvaluateRequestEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		r.logger.Warn("dropping malformed evaluate request", "error", err)
		r.metrics.ObserveRejected()
		return
	}
	if evt.RequestID == "" {
		evt.RequestID = uuid.NewString()
	}

	completed, err := r.evaluate(evt)
	if err != nil {
		r.logger.Info("evaluate request rejected", "request_id", evt.RequestID, "error", err)
		r.metrics.ObserveRejected()
		r.publish(hermes.SubjectEvaluateFailed(evt.RequestID), hermes.EvaluateFailedEvent{
			RequestID: evt.RequestID,
			Error:     err.Error(),
		})
		return
	}

	r.logger.Debug("evaluate request completed",
		"request_id", evt.RequestID,
		"criteria", len(completed.Weights),
		"consistency_ratio", completed.ConsistencyRatio,
	)
	r.publish(hermes.SubjectEvaluateCompleted(evt.RequestID), completed)
}

func (r *Responder) evaluate(evt hermes.EvaluateRequestEvent) (hermes.EvaluateCompletedEvent, error) {
	if len(evt.Problem) == 0 {
		return hermes.EvaluateCompletedEvent{}, fmt.Errorf("%w: request has no problem", bwm.ErrMissingSelection)
	}
	name, p, err := validation.ParseProblem(evt.Problem)
	if err != nil {
		return hermes.EvaluateCompletedEvent{}, err
	}
	if err := validation.CheckCriteriaLimit(p, r.cfg.Evaluation.MaxCriteria); err != nil {
		return hermes.EvaluateCompletedEvent{}, err
	}

	var opts []bwm.Option
	if r.cfg.Evaluation.Strict {
		opts = append(opts, bwm.WithStrict())
	}
	res, err := bwm.Evaluate(p, opts...)
	if err != nil {
		return hermes.EvaluateCompletedEvent{}, err
	}
	r.metrics.ObserveResult(len(p.Criteria), res)

	return hermes.EvaluateCompletedEvent{
		RequestID:        evt.RequestID,
		Name:             name,
		Weights:          hermes.NewWeightEntries(p.Criteria, res.Weights),
		ConsistencyRatio: res.ConsistencyRatio,
		IsConsistent:     res.IsConsistent,
		Verdict:          report.Verdict(res),
	}, nil
}

func (r *Responder) publish(subject string, data interface{}) {
	if err := r.hermes.Publish(subject, data); err != nil {
		r.logger.Error("failed to publish", "subject", subject, "error", err)
	}
}
