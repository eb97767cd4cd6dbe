package ollama

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
	"github.com/kirillkom/document-qa/internal/infrastructure/llm/absent"
	"github.com/kirillkom/document-qa/internal/infrastructure/resilience"
)

const Name = "ollama"

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   strings.TrimSpace(genModel),
		embedModel: strings.TrimSpace(embedModel),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Backend is the accelerated compute backend served by an Ollama daemon.
type Backend struct {
	client *Client
}

func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Name() string { return Name }

// Load checks that every configured model is present on the daemon.
func (b *Backend) Load(ctx context.Context) error {
	if b.client.genModel == "" && b.client.embedModel == "" {
		return errors.New("ollama: no models configured")
	}
	for _, model := range []string{b.client.embedModel, b.client.genModel} {
		if model == "" {
			continue
		}
		if err := b.client.showModel(ctx, model); err != nil {
			return fmt.Errorf("ollama model %q: %w", model, err)
		}
	}
	return nil
}

func (b *Backend) Embedder() ports.Embedder {
	if b.client.embedModel == "" {
		return absent.Embedder{Reason: "no ollama embedding model configured"}
	}
	return &Embedder{client: b.client}
}

func (b *Backend) Generator() ports.Generator {
	if b.client.genModel == "" {
		return absent.Generator{Reason: "no ollama generation model configured"}
	}
	return &Generator{client: b.client}
}

type Embedder struct {
	client *Client
}

func (e *Embedder) Embed(ctx context.Context, text string, opts domain.EmbedOptions) ([]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": text,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) == 0 || len(response.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	vector := response.Embeddings[0]
	if opts.Normalize {
		normalize(vector)
	}
	return vector, nil
}

type Generator struct {
	client *Client
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	request := map[string]any{
		"model":   g.client.genModel,
		"prompt":  prompt,
		"stream":  false,
		"options": generateOptions(opts),
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := g.client.call(ctx, "/api/generate", request, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) showModel(ctx context.Context, model string) error {
	var response struct {
		Details map[string]any `json:"details"`
	}
	return c.call(ctx, "/api/show", map[string]any{"model": model}, &response, "show")
}

func (c *Client) call(ctx context.Context, path string, payload any, out any, operation string) error {
	err := c.executor.Execute(ctx, "ollama."+operation, func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}, classifyOllamaError)
	return resilience.WrapTemporary("ollama "+operation, err, classifyOllamaError)
}

func normalize(vector []float32) {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
}
