// Package openai is a compute backend for OpenAI-compatible APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
	"github.com/kirillkom/document-qa/internal/infrastructure/llm/absent"
	"github.com/kirillkom/document-qa/internal/infrastructure/resilience"
)

const Name = "openai"

type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
}

type Backend struct {
	client   *gopenai.Client
	cfg      Config
	executor *resilience.Executor
}

func NewBackend(cfg Config, executor *resilience.Executor) *Backend {
	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &Backend{
		client:   gopenai.NewClientWithConfig(clientCfg),
		cfg:      cfg,
		executor: executor,
	}
}

func (b *Backend) Name() string { return Name }

// Load verifies credentials and that the configured models are served.
func (b *Backend) Load(ctx context.Context) error {
	if strings.TrimSpace(b.cfg.APIKey) == "" {
		return errors.New("openai: api key is not configured")
	}
	if b.cfg.ChatModel == "" && b.cfg.EmbeddingModel == "" {
		return errors.New("openai: no models configured")
	}

	models, err := resilience.Call(ctx, b.executor, "openai.models", func(ctx context.Context) (gopenai.ModelsList, error) {
		return b.client.ListModels(ctx)
	}, classifyOpenAIError)
	if err != nil {
		return resilience.WrapTemporary("openai list models", err, classifyOpenAIError)
	}

	served := make(map[string]struct{}, len(models.Models))
	for _, model := range models.Models {
		served[model.ID] = struct{}{}
	}
	for _, model := range []string{b.cfg.EmbeddingModel, b.cfg.ChatModel} {
		if model == "" {
			continue
		}
		if _, ok := served[model]; !ok {
			return fmt.Errorf("openai: model %q is not served", model)
		}
	}
	return nil
}

func (b *Backend) Embedder() ports.Embedder {
	if b.cfg.EmbeddingModel == "" {
		return absent.Embedder{Reason: "no openai embedding model configured"}
	}
	return &Embedder{backend: b}
}

func (b *Backend) Generator() ports.Generator {
	if b.cfg.ChatModel == "" {
		return absent.Generator{Reason: "no openai chat model configured"}
	}
	return &Generator{backend: b}
}

type Embedder struct {
	backend *Backend
}

func (e *Embedder) Embed(ctx context.Context, text string, _ domain.EmbedOptions) ([]float32, error) {
	resp, err := resilience.Call(ctx, e.backend.executor, "openai.embed", func(ctx context.Context) (gopenai.EmbeddingResponse, error) {
		return e.backend.client.CreateEmbeddings(ctx, gopenai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: gopenai.EmbeddingModel(e.backend.cfg.EmbeddingModel),
		})
	}, classifyOpenAIError)
	if err != nil {
		return nil, resilience.WrapTemporary("openai embed", err, classifyOpenAIError)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return resp.Data[0].Embedding, nil
}

type Generator struct {
	backend *Backend
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	request := chatRequest(g.backend.cfg.ChatModel, prompt, opts)

	resp, err := resilience.Call(ctx, g.backend.executor, "openai.generate", func(ctx context.Context) (gopenai.ChatCompletionResponse, error) {
		return g.backend.client.CreateChatCompletion(ctx, request)
	}, classifyOpenAIError)
	if err != nil {
		return "", resilience.WrapTemporary("openai generate", err, classifyOpenAIError)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion result")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func chatRequest(model, prompt string, opts domain.GenerateOptions) gopenai.ChatCompletionRequest {
	request := gopenai.ChatCompletionRequest{
		Model: model,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxLength,
		Temperature: float32(opts.Temperature),
	}
	if opts.RepetitionPenalty > 1 {
		request.FrequencyPenalty = float32(opts.RepetitionPenalty - 1)
	}
	if opts.Deterministic {
		seed := 0
		request.Seed = &seed
	}
	return request
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		var apiErr *gopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return resilience.ClassifyHTTPStatus(apiErr.HTTPStatusCode), true
		}
		var reqErr *gopenai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
			return resilience.ClassifyHTTPStatus(reqErr.HTTPStatusCode), true
		}
		return resilience.ErrorClassification{}, false
	})
}
