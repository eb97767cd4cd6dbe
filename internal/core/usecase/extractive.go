package usecase

import (
	"strings"
	"unicode/utf8"
)

const (
	NoRelevantInformationMessage = "I couldn't find relevant information in the knowledge base to answer your question. " +
		"Please try asking about topics that are covered in the document."
	NotFoundInDocumentMessage = "I cannot find information about this topic in the document. " +
		"Please ask about topics that are covered in the knowledge base."
)

// ExtractiveResponder answers by quoting the best matching sentence of the retrieved chunks.
// It always returns a non-empty string.
type ExtractiveResponder struct {
	cfg ExtractiveConfig
}

func NewExtractiveResponder(cfg ExtractiveConfig) *ExtractiveResponder {
	return &ExtractiveResponder{cfg: cfg}
}

func (r *ExtractiveResponder) Respond(query string, chunks []string) string {
	if len(chunks) == 0 {
		return NotFoundInDocumentMessage
	}

	queryTokens := significantTokens(query, r.cfg.MinTokenLength)

	best := ""
	bestScore := 0.0
	for _, chunk := range chunks {
		for _, sentence := range sentenceDelimiter.Split(chunk, -1) {
			sentence = strings.TrimSpace(sentence)
			if utf8.RuneCountInString(sentence) <= r.cfg.MinSentenceLength {
				continue
			}
			if score := r.score(strings.ToLower(sentence), queryTokens); score > bestScore {
				best = sentence
				bestScore = score
			}
		}
	}

	if best != "" {
		return "Based on the document: " + best + "."
	}

	excerpt, truncated := truncateRunes(chunks[0], r.cfg.ExcerptLength)
	if truncated {
		excerpt += "..."
	}
	if strings.TrimSpace(excerpt) == "" {
		return NotFoundInDocumentMessage
	}
	return "According to the document: " + excerpt
}

func (r *ExtractiveResponder) score(lowerSentence string, queryTokens []string) float64 {
	score := 0.0
	for _, token := range queryTokens {
		if strings.Contains(lowerSentence, token) {
			score++
		}
	}
	for _, word := range r.cfg.QuestionWords {
		if strings.Contains(lowerSentence, word) {
			score += r.cfg.QuestionBonus
			break
		}
	}
	return score
}
