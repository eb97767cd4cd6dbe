package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-qa/internal/core/domain"
	"github.com/kirillkom/document-qa/internal/core/ports"
)

type QuestionUseCase struct {
	answers ports.AnswerService
	repo    ports.InteractionRepository
	queue   ports.MessageQueue
	logger  *slog.Logger
}

func NewQuestionUseCase(
	answers ports.AnswerService,
	repo ports.InteractionRepository,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *QuestionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionUseCase{
		answers: answers,
		repo:    repo,
		queue:   queue,
		logger:  logger,
	}
}

// Ask answers synchronously. Writing the audit record is best effort.
func (uc *QuestionUseCase) Ask(ctx context.Context, question string) (*domain.Interaction, *domain.Answer, error) {
	question, err := normalizeQuestion(question)
	if err != nil {
		return nil, nil, err
	}

	answer, err := uc.answers.Answer(ctx, question)
	if err != nil {
		return nil, nil, err
	}

	interaction := uc.newInteraction(question)
	interaction.ApplyAnswer(answer)
	if err := uc.repo.Create(ctx, interaction); err != nil {
		uc.logger.Warn("interaction_log_failed", "interaction_id", interaction.ID, "error", err)
	}
	return interaction, answer, nil
}

// Submit stores a pending question and queues it for a worker.
func (uc *QuestionUseCase) Submit(ctx context.Context, question string) (*domain.Interaction, error) {
	question, err := normalizeQuestion(question)
	if err != nil {
		return nil, err
	}

	interaction := uc.newInteraction(question)
	if err := uc.repo.Create(ctx, interaction); err != nil {
		return nil, fmt.Errorf("create interaction: %w", err)
	}
	if err := uc.queue.PublishQuestion(ctx, interaction.ID); err != nil {
		return nil, fmt.Errorf("publish question: %w", err)
	}
	return interaction, nil
}

func (uc *QuestionUseCase) GetByID(ctx context.Context, id string) (*domain.Interaction, error) {
	interaction, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get interaction: %w", err)
	}
	return interaction, nil
}

// ProcessByID answers a queued question. Questions that are no longer pending are skipped.
func (uc *QuestionUseCase) ProcessByID(ctx context.Context, interactionID string) error {
	interaction, err := uc.repo.GetByID(ctx, interactionID)
	if err != nil {
		return fmt.Errorf("fetch interaction by id: %w", err)
	}
	if interaction.Status != domain.InteractionPending {
		uc.logger.Info("question_already_processed", "interaction_id", interactionID, "status", interaction.Status)
		return nil
	}

	answer, err := uc.answers.Answer(ctx, interaction.Question)
	if err != nil {
		if failErr := uc.repo.MarkFailed(ctx, interactionID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	interaction.DocumentID = uc.answers.Status().DocumentID
	interaction.ApplyAnswer(answer)
	interaction.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Complete(ctx, interaction); err != nil {
		return fmt.Errorf("complete interaction: %w", err)
	}
	return nil
}

func (uc *QuestionUseCase) newInteraction(question string) *domain.Interaction {
	now := time.Now().UTC()
	return &domain.Interaction{
		ID:         uuid.NewString(),
		DocumentID: uc.answers.Status().DocumentID,
		Question:   question,
		Status:     domain.InteractionPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func normalizeQuestion(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "ask question", errors.New("question is required"))
	}
	return question, nil
}
