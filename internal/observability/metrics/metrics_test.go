package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(body)
}

func TestHTTPMiddlewareNormalizesPaths(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	for _, path := range []string{"/v1/questions/abc", "/v1/questions/def"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m.Handler())
	want := `docqa_http_requests_total{method="GET",path="/v1/questions/{question_id}",service="api",status="202"} 2`
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in metrics output:\n%s", want, out)
	}
}

func TestPipelineMetricsShareRegistry(t *testing.T) {
	httpMetrics := NewHTTPServerMetrics("api")
	pipeline := NewPipelineMetrics("api", httpMetrics.Registry())

	pipeline.ObserveInitialization("local", domain.SessionReady, 4, 20*time.Millisecond)
	pipeline.ObserveRetrieval(domain.RetrievalLexical, 2)
	pipeline.ObserveFallback("")
	pipeline.ObserveAnswer(domain.StrategyExtractive, time.Millisecond)
	pipeline.ObserveEmbeddingFailure()

	out := scrape(t, httpMetrics.Handler())
	for _, want := range []string{
		`docqa_pipeline_initializations_total{backend="local",service="api",status="ready"} 1`,
		`docqa_pipeline_retrievals_total{mode="lexical",service="api"} 1`,
		`docqa_pipeline_fallbacks_total{reason="unknown",service="api"} 1`,
		`docqa_pipeline_answers_total{service="api",strategy="extractive"} 1`,
		`docqa_pipeline_embedding_failures_total{service="api"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartQuestion()
	m.FinishQuestion("worker", time.Second, errors.New("boom"))
	m.ObserveQueueLag("worker", -time.Second)
	m.ObserveQueueLag("worker", 3*time.Second)

	out := scrape(t, m.Handler())
	for _, want := range []string{
		`docqa_worker_questions_total{service="worker",status="error"} 1`,
		`docqa_worker_questions_in_flight{service="worker"} 0`,
		`docqa_worker_queue_lag_seconds_count{service="worker"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}
}
