package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

const (
	FallbackGeneratorUnavailable = "generator_unavailable"
	FallbackGenerationError      = "generation_error"
	FallbackRecovered            = "recovered"
)

type OrchestratorOption func(*AnswerOrchestrator)

func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *AnswerOrchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics ports.PipelineMetrics) OrchestratorOption {
	return func(o *AnswerOrchestrator) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

func WithDocumentID(documentID string) OrchestratorOption {
	return func(o *AnswerOrchestrator) {
		o.documentID = documentID
	}
}

// session is the read-only state produced by a successful Initialize.
type session struct {
	backend   string
	chunks    []string
	retriever *HybridRetriever
	generator ports.Generator
}

// AnswerOrchestrator owns one document session: it initializes compute once and answers
// questions through retrieval, grounded generation and extractive fallback.
type AnswerOrchestrator struct {
	backends   []ports.ComputeBackend
	cfg        PipelineConfig
	logger     *slog.Logger
	metrics    ports.PipelineMetrics
	documentID string

	validator  *GroundingValidator
	extractive *ExtractiveResponder

	initMu sync.Mutex

	mu        sync.RWMutex
	status    domain.SessionStatus
	current   *session
	initErr   error
	updatedAt time.Time
}

func NewAnswerOrchestrator(backends []ports.ComputeBackend, cfg PipelineConfig, opts ...OrchestratorOption) *AnswerOrchestrator {
	cfg = cfg.normalize()
	if len(backends) == 0 {
		backends = []ports.ComputeBackend{unavailableBackend{}}
	}

	o := &AnswerOrchestrator{
		backends:   backends,
		cfg:        cfg,
		logger:     slog.Default(),
		metrics:    noopMetrics{},
		validator:  NewGroundingValidator(cfg.Grounding),
		extractive: NewExtractiveResponder(cfg.Extractive),
		status:     domain.SessionUninitialized,
		updatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("document_id", o.documentID)
	return o
}

// Initialize loads the first available compute backend and precomputes chunk embeddings.
// It is a no-op once the session is ready. A failed session may be initialized again.
func (o *AnswerOrchestrator) Initialize(ctx context.Context, chunks []string) error {
	o.initMu.Lock()
	defer o.initMu.Unlock()

	if o.State() == domain.SessionReady {
		return nil
	}

	start := time.Now()
	o.setState(domain.SessionInitializing, nil, nil)
	o.logger.Info("session_initializing", "chunks", len(chunks))

	owned := append([]string(nil), chunks...)
	next, err := o.initialize(ctx, owned)
	if err != nil {
		o.setState(domain.SessionFailed, nil, err)
		o.metrics.ObserveInitialization("", domain.SessionFailed, len(owned), time.Since(start))
		o.logger.Error("session_failed", "error", err)
		return err
	}

	o.setState(domain.SessionReady, next, nil)
	o.metrics.ObserveInitialization(next.backend, domain.SessionReady, len(owned), time.Since(start))
	o.logger.Info("session_ready",
		"backend", next.backend,
		"chunks", len(owned),
		"indexed", next.retriever.Indexed(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (o *AnswerOrchestrator) initialize(ctx context.Context, chunks []string) (*session, error) {
	loadErrs := make([]error, 0, len(o.backends))
	for _, backend := range o.backends {
		if err := ctx.Err(); err != nil {
			return nil, domain.WrapError(domain.ErrInitialization, "initialize", err)
		}

		if err := backend.Load(ctx); err != nil {
			o.logger.Warn("compute_backend_unavailable", "backend", backend.Name(), "error", err)
			loadErrs = append(loadErrs, fmt.Errorf("%s: %w", backend.Name(), err))
			continue
		}

		embedder := backend.Embedder()
		index, err := BuildEmbeddingIndex(ctx, embedder, chunks, o.cfg.Index, o.logger, o.metrics)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrProviderUnavailable):
			o.logger.Info("embedding_disabled", "backend", backend.Name(), "error", err)
			index = nil
		default:
			return nil, domain.WrapError(domain.ErrInitialization, "compute embeddings", err)
		}

		return &session{
			backend:   backend.Name(),
			chunks:    chunks,
			retriever: NewHybridRetriever(chunks, index, embedder, o.cfg.Retrieval, o.logger),
			generator: backend.Generator(),
		}, nil
	}

	return nil, domain.WrapError(domain.ErrInitialization, "load compute backend", errors.Join(loadErrs...))
}

// Answer never fails on a ready session; provider and validation failures turn into fallbacks.
func (o *AnswerOrchestrator) Answer(ctx context.Context, query string) (answer *domain.Answer, err error) {
	current, err := o.ready()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var retrieval *domain.Retrieval
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("answer_panic", "panic", fmt.Sprint(rec))
			answer = o.recoverAnswer(ctx, current, query, retrieval)
			err = nil
		}
		o.metrics.ObserveAnswer(answer.Strategy, time.Since(start))
	}()

	result := current.retriever.Retrieve(ctx, query, o.cfg.Retrieval.TopK)
	retrieval = &result
	o.metrics.ObserveRetrieval(result.Mode, len(result.Chunks))

	answer = &domain.Answer{
		RetrievalMode: result.Mode,
		Sources:       result.Chunks,
	}
	if len(result.Chunks) == 0 {
		answer.Text = NoRelevantInformationMessage
		answer.Strategy = domain.StrategyNoContext
		return answer, nil
	}

	texts := result.Texts()
	contextText := strings.Join(texts, "\n\n")
	prompt := BuildGroundingPrompt(contextText, query)

	for _, strategy := range o.answerStrategies(current) {
		text, runErr := strategy.run(ctx, answerInput{
			query:   query,
			prompt:  prompt,
			context: contextText,
			chunks:  texts,
		})
		if runErr != nil {
			reason := fallbackReason(runErr)
			o.logger.Info("answer_fallback", "strategy", strategy.name, "reason", reason, "error", runErr)
			o.metrics.ObserveFallback(reason)
			answer.FallbackReason = reason
			continue
		}
		answer.Text = text
		answer.Strategy = strategy.name
		return answer, nil
	}

	answer.Text = NotFoundInDocumentMessage
	answer.Strategy = domain.StrategyExtractive
	return answer, nil
}

// GenerateResponse returns only the answer text.
func (o *AnswerOrchestrator) GenerateResponse(ctx context.Context, query string) (string, error) {
	answer, err := o.Answer(ctx, query)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

func (o *AnswerOrchestrator) recoverAnswer(
	ctx context.Context,
	current *session,
	query string,
	retrieval *domain.Retrieval,
) (answer *domain.Answer) {
	answer = &domain.Answer{
		Text:           NotFoundInDocumentMessage,
		Strategy:       domain.StrategyExtractive,
		FallbackReason: FallbackRecovered,
	}
	o.metrics.ObserveFallback(FallbackRecovered)

	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("answer_recovery_failed", "panic", fmt.Sprint(rec))
			answer.Text = NotFoundInDocumentMessage
		}
	}()

	if retrieval == nil {
		result := current.retriever.Retrieve(ctx, query, o.cfg.Retrieval.RecoveryTopK)
		retrieval = &result
	}
	answer.RetrievalMode = retrieval.Mode
	answer.Sources = retrieval.Chunks
	answer.Text = o.extractive.Respond(query, retrieval.Texts())
	return answer
}

func (o *AnswerOrchestrator) ready() (*session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.status != domain.SessionReady || o.current == nil {
		return nil, fmt.Errorf("generate response: %w", domain.ErrNotInitialized)
	}
	return o.current, nil
}

func (o *AnswerOrchestrator) State() domain.SessionStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

func (o *AnswerOrchestrator) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.initErr
}

func (o *AnswerOrchestrator) DocumentID() string {
	return o.documentID
}

func (o *AnswerOrchestrator) Status() domain.SessionInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()

	info := domain.SessionInfo{
		DocumentID: o.documentID,
		Status:     o.status,
		UpdatedAt:  o.updatedAt,
	}
	if o.current != nil {
		info.Backend = o.current.backend
		info.Chunks = len(o.current.chunks)
		info.Indexed = o.current.retriever.Indexed()
	}
	if o.initErr != nil {
		info.Error = o.initErr.Error()
	}
	return info
}

func (o *AnswerOrchestrator) setState(status domain.SessionStatus, current *session, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status = status
	o.current = current
	o.initErr = err
	o.updatedAt = time.Now().UTC()
}

func fallbackReason(err error) string {
	var rejection *GroundingRejection
	switch {
	case errors.As(err, &rejection):
		return rejection.Reason
	case errors.Is(err, domain.ErrProviderUnavailable):
		return FallbackGeneratorUnavailable
	default:
		return FallbackGenerationError
	}
}
