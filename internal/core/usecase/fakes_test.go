package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

// vocabularyEmbedderFake maps text onto a bag-of-words vector over a fixed vocabulary.
type vocabularyEmbedderFake struct {
	vocabulary []string
	failOn     map[string]error
	err        error
	calls      int
}

func newVocabularyEmbedder(words ...string) *vocabularyEmbedderFake {
	return &vocabularyEmbedderFake{vocabulary: words, failOn: map[string]error{}}
}

func (f *vocabularyEmbedderFake) Embed(_ context.Context, text string, _ domain.EmbedOptions) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	lower := strings.ToLower(text)
	vector := make([]float32, len(f.vocabulary))
	for i, word := range f.vocabulary {
		if strings.Contains(lower, word) {
			vector[i] = 1
		}
	}
	return vector, nil
}

type generatorFake struct {
	response string
	err      error
	panicMsg string
	calls    int
	prompt   string
	opts     domain.GenerateOptions
}

func (f *generatorFake) Generate(_ context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	f.calls++
	f.prompt = prompt
	f.opts = opts
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type backendFake struct {
	name      string
	loadErr   error
	loads     int
	embedder  ports.Embedder
	generator ports.Generator
}

func (f *backendFake) Name() string { return f.name }

func (f *backendFake) Load(context.Context) error {
	f.loads++
	return f.loadErr
}

func (f *backendFake) Embedder() ports.Embedder {
	if f.embedder == nil {
		return unavailableProvider{}
	}
	return f.embedder
}

func (f *backendFake) Generator() ports.Generator {
	if f.generator == nil {
		return unavailableProvider{}
	}
	return f.generator
}

type metricsFake struct {
	mu                sync.Mutex
	initializations   []domain.SessionStatus
	embeddingFailures int
	retrievals        []domain.RetrievalMode
	fallbacks         []string
	answers           []domain.AnswerStrategy
}

func (f *metricsFake) ObserveInitialization(_ string, status domain.SessionStatus, _ int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initializations = append(f.initializations, status)
}

func (f *metricsFake) ObserveEmbeddingFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeddingFailures++
}

func (f *metricsFake) ObserveRetrieval(mode domain.RetrievalMode, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrievals = append(f.retrievals, mode)
}

func (f *metricsFake) ObserveFallback(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbacks = append(f.fallbacks, reason)
}

func (f *metricsFake) ObserveAnswer(strategy domain.AnswerStrategy, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, strategy)
}

type documentRepoFake struct {
	docs        map[string]*domain.Document
	latestErr   error
	getErr      error
	statusErr   error
	statusCalls []domain.DocumentStatus
	readyChunks map[string]int
}

func newDocumentRepoFake(docs ...*domain.Document) *documentRepoFake {
	f := &documentRepoFake{docs: map[string]*domain.Document{}, readyChunks: map[string]int{}}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *documentRepoFake) Create(_ context.Context, doc *domain.Document) error {
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *documentRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *documentRepoFake) Latest(context.Context) (*domain.Document, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	var latest *domain.Document
	for _, doc := range f.docs {
		if latest == nil || doc.CreatedAt.After(latest.CreatedAt) {
			latest = doc
		}
	}
	if latest == nil {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *latest
	return &copyDoc, nil
}

func (f *documentRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, status)
	if f.statusErr != nil {
		return f.statusErr
	}
	if doc, ok := f.docs[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

func (f *documentRepoFake) MarkReady(_ context.Context, id string, chunks int) error {
	f.statusCalls = append(f.statusCalls, domain.StatusReady)
	f.readyChunks[id] = chunks
	if doc, ok := f.docs[id]; ok {
		doc.Status = domain.StatusReady
		doc.Chunks = chunks
	}
	return nil
}

type interactionRepoFake struct {
	items     map[string]*domain.Interaction
	createErr error
	failed    map[string]string
}

func newInteractionRepoFake() *interactionRepoFake {
	return &interactionRepoFake{items: map[string]*domain.Interaction{}, failed: map[string]string{}}
}

func (f *interactionRepoFake) Create(_ context.Context, interaction *domain.Interaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyItem := *interaction
	f.items[interaction.ID] = &copyItem
	return nil
}

func (f *interactionRepoFake) GetByID(_ context.Context, id string) (*domain.Interaction, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, domain.ErrInteractionNotFound
	}
	copyItem := *item
	return &copyItem, nil
}

func (f *interactionRepoFake) Complete(_ context.Context, interaction *domain.Interaction) error {
	copyItem := *interaction
	f.items[interaction.ID] = &copyItem
	return nil
}

func (f *interactionRepoFake) MarkFailed(_ context.Context, id string, errMessage string) error {
	f.failed[id] = errMessage
	if item, ok := f.items[id]; ok {
		item.Status = domain.InteractionFailed
		item.Error = errMessage
	}
	return nil
}

type queueFake struct {
	documentIDs []string
	questionIDs []string
	err         error
}

func (f *queueFake) PublishDocumentLoaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentIDs = append(f.documentIDs, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentLoaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func (f *queueFake) PublishQuestion(_ context.Context, interactionID string) error {
	if f.err != nil {
		return f.err
	}
	f.questionIDs = append(f.questionIDs, interactionID)
	return nil
}

func (f *queueFake) SubscribeQuestions(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// sentenceChunkerFake puts every sentence into its own chunk.
type sentenceChunkerFake struct{}

func (sentenceChunkerFake) Split(text string) []string {
	out := make([]string, 0)
	for _, part := range strings.SplitAfter(text, ".") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var frantzlandChunks = []string{
	"The capital of Frantzland is Sorimo.",
	"Sorimo has a population of two million.",
}
