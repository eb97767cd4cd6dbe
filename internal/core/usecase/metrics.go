package usecase

import (
	"time"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

type noopMetrics struct{}

func (noopMetrics) ObserveInitialization(string, domain.SessionStatus, int, time.Duration) {}
func (noopMetrics) ObserveEmbeddingFailure() {}
func (noopMetrics) ObserveRetrieval(domain.RetrievalMode, int) {}
func (noopMetrics) ObserveFallback(string) {}
func (noopMetrics) ObserveAnswer(domain.AnswerStrategy, time.Duration) {}
