package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-qa/internal/config"
	"github.com/kirillkom/document-qa/internal/core/ports"
	"github.com/kirillkom/document-qa/internal/core/usecase"
	"github.com/kirillkom/document-qa/internal/infrastructure/chunking"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor/markdown"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor/spreadsheet"
	"github.com/kirillkom/document-qa/internal/infrastructure/llm/local"
	"github.com/kirillkom/document-qa/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/document-qa/internal/infrastructure/llm/openai"
	"github.com/kirillkom/document-qa/internal/infrastructure/resilience"
)

// Pipeline is the answering stack shared by the api, the worker and the CLI.
type Pipeline struct {
	Chunker   *chunking.Splitter
	Backends  []ports.ComputeBackend
	Knowledge *usecase.KnowledgeBase
}

func NewPipeline(
	cfg config.Config,
	storage ports.ObjectStorage,
	metrics ports.PipelineMetrics,
	logger *slog.Logger,
) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(cfg.Resilience, logger)
	backends, err := ComputeBackends(cfg, executor)
	if err != nil {
		return nil, err
	}

	chunker := chunking.NewSplitter(cfg.Chunking)
	newSession := func(documentID string) *usecase.AnswerOrchestrator {
		return usecase.NewAnswerOrchestrator(
			backends,
			cfg.Pipeline,
			usecase.WithLogger(logger),
			usecase.WithMetrics(metrics),
			usecase.WithDocumentID(documentID),
		)
	}
	knowledge := usecase.NewKnowledgeBase(NewExtractor(storage, logger), chunker, newSession, logger)

	return &Pipeline{
		Chunker:   chunker,
		Backends:  backends,
		Knowledge: knowledge,
	}, nil
}

// ComputeBackends builds the backends named in cfg.ComputeBackends, in order.
func ComputeBackends(cfg config.Config, executor *resilience.Executor) ([]ports.ComputeBackend, error) {
	backends := make([]ports.ComputeBackend, 0, len(cfg.ComputeBackends))
	for _, name := range cfg.ComputeBackends {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ollama":
			client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
			backends = append(backends, ollama.NewBackend(client))
		case "openai":
			backends = append(backends, openai.NewBackend(openai.Config{
				APIKey:         cfg.OpenAIAPIKey,
				BaseURL:        cfg.OpenAIBaseURL,
				ChatModel:      cfg.OpenAIChatModel,
				EmbeddingModel: cfg.OpenAIEmbedModel,
			}, executor))
		case "local":
			backends = append(backends, local.NewBackend(cfg.Pipeline.Index.Dimensions))
		default:
			return nil, fmt.Errorf("unknown compute backend %q", name)
		}
	}
	return backends, nil
}

// NewExtractor routes by document type and substitutes the sample FAQ when nothing is extracted.
func NewExtractor(storage ports.ObjectStorage, logger *slog.Logger) ports.TextExtractor {
	router := extractor.NewRouter(plaintext.NewExtractor(storage)).
		Register(pdf.NewExtractor(storage, logger), ".pdf", "application/pdf").
		Register(spreadsheet.NewExtractor(storage), ".xlsx", ".xlsm",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Register(docx.NewExtractor(storage), ".docx",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document").
		Register(markdown.NewExtractor(storage), ".md", ".markdown", "text/markdown")
	return extractor.WithSampleFallback(router, logger)
}
