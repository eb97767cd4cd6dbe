package usecase

import (
	"context"
	"errors"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

type answerInput struct {
	query   string
	prompt  string
	context string
	chunks  []string
}

type answerStrategy struct {
	name domain.AnswerStrategy
	run  func(ctx context.Context, in answerInput) (string, error)
}

// answerStrategies lists the answer strategies in the order they are tried.
// The extractive strategy never fails, so the list always terminates.
func (o *AnswerOrchestrator) answerStrategies(current *session) []answerStrategy {
	return []answerStrategy{
		{name: domain.StrategyGenerated, run: o.generative(current.generator)},
		{name: domain.StrategyExtractive, run: o.extractiveStrategy},
	}
}

func (o *AnswerOrchestrator) generative(generator ports.Generator) func(context.Context, answerInput) (string, error) {
	return func(ctx context.Context, in answerInput) (string, error) {
		if generator == nil {
			return "", domain.ErrProviderUnavailable
		}
		raw, err := generator.Generate(ctx, in.prompt, o.cfg.Generation)
		if err != nil {
			return "", err
		}
		answer, err := o.validator.Validate(raw, in.prompt, in.context)
		if err != nil {
			o.logger.Info("grounding_rejected", "error", err)
			return "", err
		}
		if answer == "" {
			return "", errors.New("empty generated answer")
		}
		return answer, nil
	}
}

func (o *AnswerOrchestrator) extractiveStrategy(_ context.Context, in answerInput) (string, error) {
	return o.extractive.Respond(in.query, in.chunks), nil
}

// unavailableBackend serves sessions configured without any compute backend: retrieval is
// lexical and answers are extractive.
type unavailableBackend struct{}

func (unavailableBackend) Name() string { return "none" }
func (unavailableBackend) Load(context.Context) error { return nil }
func (unavailableBackend) Embedder() ports.Embedder { return unavailableProvider{} }
func (unavailableBackend) Generator() ports.Generator { return unavailableProvider{} }

type unavailableProvider struct{}

func (unavailableProvider) Embed(context.Context, string, domain.EmbedOptions) ([]float32, error) {
	return nil, domain.ErrProviderUnavailable
}

func (unavailableProvider) Generate(context.Context, string, domain.GenerateOptions) (string, error) {
	return "", domain.ErrProviderUnavailable
}
