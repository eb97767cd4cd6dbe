package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

// PipelineMetrics implements ports.PipelineMetrics for one service.
type PipelineMetrics struct {
	service string

	answersTotal      *prometheus.CounterVec
	answerDuration    *prometheus.HistogramVec
	fallbacksTotal    *prometheus.CounterVec
	retrievalsTotal   *prometheus.CounterVec
	retrievedChunks   *prometheus.HistogramVec
	initializations   *prometheus.CounterVec
	initDuration      *prometheus.HistogramVec
	embeddingFailures *prometheus.CounterVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "answers_total",
			Help:      "Total answers by producing strategy.",
		},
		[]string{"service", "strategy"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "answer_duration_seconds",
			Help:      "Answer duration in seconds by strategy.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "strategy"},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "fallbacks_total",
			Help:      "Total fallbacks to a weaker answer strategy by reason.",
		},
		[]string{"service", "reason"},
	)
	retrievalsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "retrievals_total",
			Help:      "Total retrievals by mode.",
		},
		[]string{"service", "mode"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "retrieved_chunks",
			Help:      "Distribution of chunks returned per retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service", "mode"},
	)
	initializations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "initializations_total",
			Help:      "Total session initializations by compute backend and resulting status.",
		},
		[]string{"service", "backend", "status"},
	)
	initDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "initialization_duration_seconds",
			Help:      "Session initialization duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "backend"},
	)
	embeddingFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "embedding_failures_total",
			Help:      "Chunks whose embedding failed and were replaced by a zero vector.",
		},
		[]string{"service"},
	)

	registerer.MustRegister(
		answersTotal,
		answerDuration,
		fallbacksTotal,
		retrievalsTotal,
		retrievedChunks,
		initializations,
		initDuration,
		embeddingFailures,
	)

	return &PipelineMetrics{
		service:           service,
		answersTotal:      answersTotal,
		answerDuration:    answerDuration,
		fallbacksTotal:    fallbacksTotal,
		retrievalsTotal:   retrievalsTotal,
		retrievedChunks:   retrievedChunks,
		initializations:   initializations,
		initDuration:      initDuration,
		embeddingFailures: embeddingFailures,
	}
}

func (m *PipelineMetrics) ObserveInitialization(backend string, status domain.SessionStatus, chunks int, duration time.Duration) {
	if backend == "" {
		backend = "none"
	}
	m.initializations.WithLabelValues(m.service, backend, string(status)).Inc()
	m.initDuration.WithLabelValues(m.service, backend).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveEmbeddingFailure() {
	m.embeddingFailures.WithLabelValues(m.service).Inc()
}

func (m *PipelineMetrics) ObserveRetrieval(mode domain.RetrievalMode, chunks int) {
	m.retrievalsTotal.WithLabelValues(m.service, string(mode)).Inc()
	m.retrievedChunks.WithLabelValues(m.service, string(mode)).Observe(float64(chunks))
}

func (m *PipelineMetrics) ObserveFallback(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.fallbacksTotal.WithLabelValues(m.service, reason).Inc()
}

func (m *PipelineMetrics) ObserveAnswer(strategy domain.AnswerStrategy, duration time.Duration) {
	m.answersTotal.WithLabelValues(m.service, string(strategy)).Inc()
	m.answerDuration.WithLabelValues(m.service, string(strategy)).Observe(duration.Seconds())
}
