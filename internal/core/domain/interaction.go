package domain

import "time"

type InteractionStatus string

const (
	InteractionPending  InteractionStatus = "pending"
	InteractionAnswered InteractionStatus = "answered"
	InteractionFailed   InteractionStatus = "failed"
)

// Interaction is one question/answer exchange kept in the audit log.
type Interaction struct {
	ID             string            `json:"id"`
	DocumentID     string            `json:"document_id,omitempty"`
	Question       string            `json:"question"`
	Answer         string            `json:"answer,omitempty"`
	Strategy       AnswerStrategy    `json:"strategy,omitempty"`
	RetrievalMode  RetrievalMode     `json:"retrieval_mode,omitempty"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
	SourceCount    int               `json:"source_count"`
	Status         InteractionStatus `json:"status"`
	Error          string            `json:"error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ApplyAnswer copies answer metadata onto the interaction and marks it answered.
func (i *Interaction) ApplyAnswer(answer *Answer) {
	if answer == nil {
		return
	}
	i.Answer = answer.Text
	i.Strategy = answer.Strategy
	i.RetrievalMode = answer.RetrievalMode
	i.FallbackReason = answer.FallbackReason
	i.SourceCount = len(answer.Sources)
	i.Status = InteractionAnswered
	i.Error = ""
}
