package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

const interactionColumns = `id, document_id, question, answer, strategy, retrieval_mode, fallback_reason, source_count, status, error_message, created_at, updated_at`

// InteractionRepository is the question/answer audit log.
type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO interactions (`+interactionColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		interaction.ID, interaction.DocumentID, interaction.Question, interaction.Answer,
		string(interaction.Strategy), string(interaction.RetrievalMode), interaction.FallbackReason,
		interaction.SourceCount, string(interaction.Status), interaction.Error,
		interaction.CreatedAt, interaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) GetByID(ctx context.Context, id string) (*domain.Interaction, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+interactionColumns+`
FROM interactions
WHERE id = $1
`, id)

	var interaction domain.Interaction
	var strategy, mode, status string
	err := row.Scan(
		&interaction.ID, &interaction.DocumentID, &interaction.Question, &interaction.Answer,
		&strategy, &mode, &interaction.FallbackReason, &interaction.SourceCount, &status,
		&interaction.Error, &interaction.CreatedAt, &interaction.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInteractionNotFound, id)
		}
		return nil, fmt.Errorf("scan interaction: %w", err)
	}
	interaction.Strategy = domain.AnswerStrategy(strategy)
	interaction.RetrievalMode = domain.RetrievalMode(mode)
	interaction.Status = domain.InteractionStatus(status)
	return &interaction, nil
}

// Complete stores the answer of a previously created interaction.
func (r *InteractionRepository) Complete(ctx context.Context, interaction *domain.Interaction) error {
	if interaction.UpdatedAt.IsZero() {
		interaction.UpdatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE interactions
SET document_id = $2, answer = $3, strategy = $4, retrieval_mode = $5, fallback_reason = $6,
	source_count = $7, status = $8, error_message = $9, updated_at = $10
WHERE id = $1
`,
		interaction.ID, interaction.DocumentID, interaction.Answer, string(interaction.Strategy),
		string(interaction.RetrievalMode), interaction.FallbackReason, interaction.SourceCount,
		string(interaction.Status), interaction.Error, interaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("complete interaction: %w", err)
	}
	return interactionAffected(result, interaction.ID)
}

func (r *InteractionRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE interactions
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(domain.InteractionFailed), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark interaction failed: %w", err)
	}
	return interactionAffected(result, id)
}

func interactionAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("interaction rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInteractionNotFound, id)
	}
	return nil
}
