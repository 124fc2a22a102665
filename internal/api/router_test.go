package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Weigh/internal/config"
	"github.com/MikeSquared-Agency/Weigh/internal/metrics"
	"github.com/MikeSquared-Agency/Weigh/internal/store"
)

// Mocks
type mockStore struct {
	decisions map[uuid.UUID]*store.Decision
}

func newMockStore() *mockStore {
	return &mockStore{decisions: make(map[uuid.UUID]*store.Decision)}
}

func (m *mockStore) CreateDecision(_ context.Context, d *store.Decision) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.decisions[d.ID] = &cp
	return nil
}

func (m *mockStore) GetDecision(_ context.Context, id uuid.UUID) (*store.Decision, error) {
	d, ok := m.decisions[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockStore) ListDecisions(_ context.Context, f store.DecisionFilter) ([]*store.Decision, error) {
	var out []*store.Decision
	for _, d := range m.decisions {
		if f.Owner != "" && d.Owner != f.Owner {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *mockStore) UpdateDecision(_ context.Context, d *store.Decision) error {
	if _, ok := m.decisions[d.ID]; !ok {
		return store.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	cp := *d
	m.decisions[d.ID] = &cp
	return nil
}

func (m *mockStore) DeleteDecision(_ context.Context, id uuid.UUID) error {
	if _, ok := m.decisions[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.decisions, id)
	return nil
}

func (m *mockStore) GetStats(_ context.Context) (*store.DecisionStats, error) {
	return &store.DecisionStats{TotalDecisions: len(m.decisions)}, nil
}

func (m *mockStore) Ping(_ context.Context) error { return nil }
func (m *mockStore) Close() error                 { return nil }

type published struct {
	subject string
	data    interface{}
}

type mockHermes struct {
	mu        sync.Mutex
	published []published
}

func (m *mockHermes) Publish(subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{subject, data})
	return nil
}
func (m *mockHermes) Subscribe(_ string, _ func(string, []byte)) error { return nil }
func (m *mockHermes) QueueSubscribe(_, _ string, _ func(string, []byte)) error {
	return nil
}
func (m *mockHermes) Connected() bool { return true }
func (m *mockHermes) Close()          {}

func (m *mockHermes) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.published))
	for _, p := range m.published {
		out = append(out, p.subject)
	}
	return out
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.AdminToken = "test-token"
	cfg.Server.RateLimitPerMinute = 1000
	cfg.Evaluation.MaxCriteria = 6
	cfg.Evaluation.BatchConcurrency = 2
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() (http.Handler, *mockStore, *mockHermes) {
	s := newMockStore()
	h := &mockHermes{}
	return NewRouter(s, h, metrics.New(nil), testConfig(), testLogger()), s, h
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(OwnerHeader, "test-owner")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterWithoutStoreOnlyEvaluates(t *testing.T) {
	router := NewRouter(nil, nil, metrics.New(nil), testConfig(), testLogger())

	w := doJSON(t, router, "POST", "/api/v1/evaluate", purchaseJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, "GET", "/api/v1/decisions", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", w.Code)
	}
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRejected()

	router := NewMetricsRouter(newMockStore(), nil, reg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("weigh_evaluations_total")) {
		t.Error("expected weigh_evaluations_total in metrics output")
	}
}
