package ollama

import "github.com/kirillkom/document-qa/internal/core/domain"

// generateOptions maps decoding settings onto Ollama model options.
func generateOptions(opts domain.GenerateOptions) map[string]any {
	out := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxLength > 0 {
		out["num_predict"] = opts.MaxLength
	}
	if opts.RepetitionPenalty > 0 {
		out["repeat_penalty"] = opts.RepetitionPenalty
	}
	if opts.Deterministic {
		out["top_k"] = 1
		out["seed"] = 0
	}
	return out
}
