package commands

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kirillkom/document-qa/internal/bootstrap"
	"github.com/kirillkom/document-qa/internal/config"
	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/usecase"
	"github.com/kirillkom/document-qa/internal/infrastructure/extractor"
	"github.com/kirillkom/document-qa/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-qa/internal/observability/logging"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

type options struct {
	document     string
	envFile      string
	chunkSize    int
	overlapWords int
	backends     string
	logLevel     string
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Ask questions about a document",
		Long: `docqa answers questions using only the content of one document.

It splits the document into chunks, retrieves the chunks relevant to a question
and answers from them, falling back to sentence extraction when no generator
is available. No database or message broker is needed.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if err := godotenv.Load(opts.envFile); err != nil && cmd.Flags().Changed("env-file") {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.document, "document", "d", "", "document to load (the built-in FAQ when empty)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "environment file loaded before configuration")
	flags.IntVar(&opts.chunkSize, "chunk-size", 0, "target chunk size in characters (overrides CHUNK_SIZE)")
	flags.IntVar(&opts.overlapWords, "overlap-words", 0, "overlap words before division (overrides CHUNK_OVERLAP_WORDS)")
	flags.StringVar(&opts.backends, "backends", "", "ordered compute backends, e.g. ollama,local (overrides COMPUTE_BACKENDS)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newChunkCmd(opts),
		newAskCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// settings applies flag overrides on top of the environment configuration.
func (o *options) settings(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if err := cfg.ApplyFile(cfg.PipelineConfigFile); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		cfg.Chunking.ChunkSize = o.chunkSize
	}
	if flags.Changed("overlap-words") {
		cfg.Chunking.OverlapWords = o.overlapWords
	}
	if flags.Changed("backends") {
		cfg.ComputeBackends = config.SplitList(o.backends)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

func (o *options) logger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level := cfg.LogLevel
	if !cmd.Flags().Changed("log-level") && os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	return logging.NewLogger("docqa", level, "text", cmd.ErrOrStderr())
}

// loadPipeline builds the pipeline over the document directory and loads the document.
func (o *options) loadPipeline(ctx context.Context, cmd *cobra.Command) (*bootstrap.Pipeline, error) {
	cfg, err := o.settings(cmd)
	if err != nil {
		return nil, err
	}
	logger := o.logger(cmd, cfg)

	if strings.TrimSpace(o.document) == "" {
		pipeline, err := bootstrap.NewPipeline(cfg, nil, nil, logger)
		if err != nil {
			return nil, err
		}
		if _, err := pipeline.Knowledge.LoadText(ctx, usecase.SampleDocumentID, extractor.SampleText); err != nil {
			return nil, err
		}
		return pipeline, nil
	}

	storage, doc, err := openDocument(o.document)
	if err != nil {
		return nil, err
	}
	pipeline, err := bootstrap.NewPipeline(cfg, storage, nil, logger)
	if err != nil {
		return nil, err
	}
	if _, err := pipeline.Knowledge.Load(ctx, doc); err != nil {
		return nil, err
	}
	return pipeline, nil
}

func openDocument(path string) (*localfs.Storage, *domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve document path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("open document: %w", err)
	}
	if info.IsDir() {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "open document", fmt.Errorf("%s is a directory", path))
	}

	storage, err := localfs.New(filepath.Dir(abs))
	if err != nil {
		return nil, nil, err
	}
	name := filepath.Base(abs)
	return storage, &domain.Document{
		ID:          name,
		Filename:    name,
		MimeType:    mime.TypeByExtension(filepath.Ext(name)),
		StoragePath: name,
		Status:      domain.StatusUploaded,
	}, nil
}
