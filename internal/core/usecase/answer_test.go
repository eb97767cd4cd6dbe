package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

func newFrantzlandSession(t *testing.T, generator *generatorFake) (*AnswerOrchestrator, *metricsFake) {
	t.Helper()
	backend := &backendFake{
		name:      "gpu",
		embedder:  newVocabularyEmbedder("capital", "frantzland", "sorimo", "population"),
		generator: generator,
	}
	metrics := &metricsFake{}
	o := NewAnswerOrchestrator([]ports.ComputeBackend{backend}, DefaultPipelineConfig(), WithMetrics(metrics), WithDocumentID("doc-1"))
	if err := o.Initialize(context.Background(), frantzlandChunks); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return o, metrics
}

func TestAnswerOrchestratorRejectsUseBeforeInitialize(t *testing.T) {
	o := NewAnswerOrchestrator(nil, DefaultPipelineConfig())

	_, err := o.GenerateResponse(context.Background(), "hello")
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if o.State() != domain.SessionUninitialized {
		t.Fatalf("expected uninitialized, got %s", o.State())
	}
}

func TestAnswerOrchestratorGeneratedAnswer(t *testing.T) {
	generator := &generatorFake{response: "Answer: The capital of Frantzland is Sorimo."}
	o, metrics := newFrantzlandSession(t, generator)

	answer, err := o.Answer(context.Background(), "What is the capital of Frantzland?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Strategy != domain.StrategyGenerated {
		t.Fatalf("expected generated strategy, got %s (%s)", answer.Strategy, answer.FallbackReason)
	}
	if answer.Text != "The capital of Frantzland is Sorimo." {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
	if answer.RetrievalMode != domain.RetrievalSemantic {
		t.Fatalf("expected semantic retrieval, got %s", answer.RetrievalMode)
	}
	if !strings.Contains(generator.prompt, "Question: What is the capital of Frantzland?") {
		t.Fatalf("prompt does not embed the question: %q", generator.prompt)
	}
	if !strings.Contains(generator.prompt, "Context from document:\nThe capital of Frantzland is Sorimo.") {
		t.Fatalf("prompt does not embed the context: %q", generator.prompt)
	}
	if generator.opts != DefaultPipelineConfig().Generation {
		t.Fatalf("unexpected generation options %+v", generator.opts)
	}
	if len(metrics.answers) != 1 || metrics.answers[0] != domain.StrategyGenerated {
		t.Fatalf("unexpected answer metrics %+v", metrics.answers)
	}
}

func TestAnswerOrchestratorFallsBackOnHallucination(t *testing.T) {
	generator := &generatorFake{response: "I think it is probably Paris."}
	o, metrics := newFrantzlandSession(t, generator)

	answer, err := o.Answer(context.Background(), "What is the capital of Frantzland?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Strategy != domain.StrategyExtractive {
		t.Fatalf("expected extractive strategy, got %s", answer.Strategy)
	}
	if answer.FallbackReason != RejectHallucinationMarker {
		t.Fatalf("unexpected fallback reason %q", answer.FallbackReason)
	}
	if !strings.Contains(answer.Text, "Sorimo") {
		t.Fatalf("expected extractive answer to mention Sorimo, got %q", answer.Text)
	}
	if len(metrics.fallbacks) != 1 || metrics.fallbacks[0] != RejectHallucinationMarker {
		t.Fatalf("unexpected fallback metrics %+v", metrics.fallbacks)
	}
}

func TestAnswerOrchestratorFallsBackOnGenerationError(t *testing.T) {
	generator := &generatorFake{err: errors.New("timeout")}
	o, _ := newFrantzlandSession(t, generator)

	answer, err := o.Answer(context.Background(), "What is the capital of Frantzland?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Strategy != domain.StrategyExtractive || answer.FallbackReason != FallbackGenerationError {
		t.Fatalf("unexpected answer %+v", answer)
	}
}

func TestAnswerOrchestratorRecoversFromPanic(t *testing.T) {
	generator := &generatorFake{panicMsg: "boom"}
	o, _ := newFrantzlandSession(t, generator)

	answer, err := o.Answer(context.Background(), "What is the capital of Frantzland?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.FallbackReason != FallbackRecovered {
		t.Fatalf("expected recovered fallback, got %q", answer.FallbackReason)
	}
	if !strings.Contains(answer.Text, "Sorimo") {
		t.Fatalf("expected extractive answer, got %q", answer.Text)
	}
}

func TestAnswerOrchestratorNoMatchSkipsGeneration(t *testing.T) {
	generator := &generatorFake{response: "The capital of Frantzland is Sorimo."}
	o, _ := newFrantzlandSession(t, generator)

	answer, err := o.Answer(context.Background(), "zzz qqq xyzzy")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != NoRelevantInformationMessage || answer.Strategy != domain.StrategyNoContext {
		t.Fatalf("unexpected answer %+v", answer)
	}
	if generator.calls != 0 {
		t.Fatalf("generator must not be called, got %d calls", generator.calls)
	}
}

func TestAnswerOrchestratorEmptyChunks(t *testing.T) {
	o := NewAnswerOrchestrator([]ports.ComputeBackend{&backendFake{name: "cpu", embedder: newVocabularyEmbedder("a")}}, DefaultPipelineConfig())

	if err := o.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if info := o.Status(); info.Status != domain.SessionReady || info.Chunks != 0 {
		t.Fatalf("unexpected status %+v", info)
	}

	got, err := o.GenerateResponse(context.Background(), "What is the capital?")
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if got != NoRelevantInformationMessage {
		t.Fatalf("unexpected answer %q", got)
	}
}

func TestAnswerOrchestratorFallbackTotalityWithoutProviders(t *testing.T) {
	o := NewAnswerOrchestrator(nil, DefaultPipelineConfig())
	if err := o.Initialize(context.Background(), frantzlandChunks); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if o.Status().Indexed {
		t.Fatalf("session without embedder must not be indexed")
	}

	for _, query := range []string{
		"What is the capital of Frantzland?",
		"population",
		"",
		"?!.",
		"Sorimo Sorimo Sorimo",
		strings.Repeat("x", 5000),
	} {
		answer, err := o.Answer(context.Background(), query)
		if err != nil {
			t.Fatalf("Answer(%q) error = %v", query, err)
		}
		if strings.TrimSpace(answer.Text) == "" {
			t.Fatalf("Answer(%q) returned empty text", query)
		}
		if len(answer.Sources) > 0 && answer.FallbackReason != FallbackGeneratorUnavailable {
			t.Fatalf("Answer(%q) fallback reason = %q", query, answer.FallbackReason)
		}
	}
}

func TestAnswerOrchestratorBackendChain(t *testing.T) {
	gpu := &backendFake{name: "gpu", loadErr: errors.New("no device")}
	cpu := &backendFake{name: "cpu", embedder: newVocabularyEmbedder("sorimo")}
	o := NewAnswerOrchestrator([]ports.ComputeBackend{gpu, cpu}, DefaultPipelineConfig())

	if err := o.Initialize(context.Background(), frantzlandChunks); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	info := o.Status()
	if info.Backend != "cpu" || !info.Indexed || info.Chunks != 2 {
		t.Fatalf("unexpected status %+v", info)
	}
}

func TestAnswerOrchestratorInitializeFailureAndRetry(t *testing.T) {
	gpu := &backendFake{name: "gpu", loadErr: errors.New("no device")}
	cpu := &backendFake{name: "cpu", loadErr: errors.New("out of memory")}
	metrics := &metricsFake{}
	o := NewAnswerOrchestrator([]ports.ComputeBackend{gpu, cpu}, DefaultPipelineConfig(), WithMetrics(metrics))

	err := o.Initialize(context.Background(), frantzlandChunks)
	if !errors.Is(err, domain.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	if o.State() != domain.SessionFailed {
		t.Fatalf("expected failed, got %s", o.State())
	}
	if !strings.Contains(o.Status().Error, "out of memory") {
		t.Fatalf("status error must carry backend errors: %q", o.Status().Error)
	}
	if _, err := o.Answer(context.Background(), "capital"); !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after failure, got %v", err)
	}

	cpu.loadErr = nil
	if err := o.Initialize(context.Background(), frantzlandChunks); err != nil {
		t.Fatalf("Initialize() retry error = %v", err)
	}
	if o.State() != domain.SessionReady {
		t.Fatalf("expected ready, got %s", o.State())
	}
	if len(metrics.initializations) != 2 || metrics.initializations[0] != domain.SessionFailed {
		t.Fatalf("unexpected initialization metrics %+v", metrics.initializations)
	}
}

func TestAnswerOrchestratorInitializeIsNoOpWhenReady(t *testing.T) {
	backend := &backendFake{name: "cpu"}
	o := NewAnswerOrchestrator([]ports.ComputeBackend{backend}, DefaultPipelineConfig())

	for i := 0; i < 3; i++ {
		if err := o.Initialize(context.Background(), frantzlandChunks); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
	}
	if backend.loads != 1 {
		t.Fatalf("expected a single load, got %d", backend.loads)
	}
}

func TestAnswerOrchestratorConcurrentAnswers(t *testing.T) {
	o := NewAnswerOrchestrator(nil, DefaultPipelineConfig())
	if err := o.Initialize(context.Background(), frantzlandChunks); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	done := make(chan string, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			text, _ := o.GenerateResponse(context.Background(), "capital of Frantzland")
			done <- text
		}()
	}
	for i := 0; i < cap(done); i++ {
		if text := <-done; text == "" {
			t.Fatalf("empty answer")
		}
	}
}
