package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-qa/internal/config"
	"github.com/kirillkom/document-qa/internal/core/ports"
	"github.com/kirillkom/document-qa/internal/core/usecase"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor"
	"github.com/kirillkom/document-qa/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-qa/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-qa/internal/infrastructure/resilience"
	"github.com/kirillkom/document-qa/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Knowledge  ports.AnswerService
	IngestUC   *usecase.IngestDocumentUseCase
	LoaderUC   ports.DocumentLoader
	QuestionUC ports.QuestionService

	logger  *slog.Logger
	closeFn func()
}

func New(ctx context.Context, cfg config.Config, metrics ports.PipelineMetrics, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.ApplyFile(cfg.PipelineConfigFile); err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)
	interactions := postgres.NewInteractionRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Options{
		DocumentSubject:    cfg.NATSDocumentSubject,
		QuestionSubject:    cfg.NATSQuestionSubject,
		ResilienceExecutor: resilience.NewExecutor(cfg.Resilience, logger),
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	pipeline, err := NewPipeline(cfg, storage, metrics, logger)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init pipeline: %w", err)
	}

	return &App{
		Config: cfg,

		Queue:      queue,
		Knowledge:  pipeline.Knowledge,
		IngestUC:   usecase.NewIngestDocumentUseCase(documents, storage, queue, logger),
		LoaderUC:   usecase.NewDocumentLoaderUseCase(documents, pipeline.Knowledge, extractor.SampleText, logger),
		QuestionUC: usecase.NewQuestionUseCase(pipeline.Knowledge, interactions, queue, logger),

		logger: logger,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// WatchDocuments loads the latest document, then reloads on every documents.loaded event until
// ctx is done. A failed startup load leaves the session uninitialized; the next event retries.
func (a *App) WatchDocuments(ctx context.Context) error {
	if err := a.LoaderUC.LoadLatest(ctx); err != nil {
		a.logger.Error("initial_document_load_failed", "error", err)
	}
	return a.Queue.SubscribeDocumentLoaded(ctx, func(handlerCtx context.Context, documentID string) error {
		return a.LoaderUC.LoadByID(handlerCtx, documentID)
	})
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
