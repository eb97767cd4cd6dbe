package usecase

import "github.com/kirillkom/document-qa/internal/core/domain"

type RetrievalConfig struct {
	TopK               int
	RecoveryTopK       int
	RelevanceThreshold float64
	TermBoost          float64
	// MinTokenLength is the shortest query token (in runes) that takes part in lexical matching.
	MinTokenLength int
}

type IndexConfig struct {
	// Dimensions sizes the zero vectors substituted for failed chunk embeddings
	// when no successful embedding revealed the provider's dimensionality.
	Dimensions    int
	ProgressEvery int
}

type GroundingConfig struct {
	HallucinationMarkers []string
	LeadingLabels        []string
	MinGroundedRatio     float64
	CheckedTokens        int
	MinTokenLength       int
	MinAnswerLength      int
}

type ExtractiveConfig struct {
	MinSentenceLength int
	ExcerptLength     int
	MinTokenLength    int
	QuestionWords     []string
	QuestionBonus     float64
}

type PipelineConfig struct {
	Retrieval  RetrievalConfig
	Index      IndexConfig
	Generation domain.GenerateOptions
	Grounding  GroundingConfig
	Extractive ExtractiveConfig
}

func DefaultHallucinationMarkers() []string {
	return []string{
		"I think", "I believe", "probably", "likely", "might be", "could be",
		"in general", "typically", "usually", "often",
		"from my knowledge", "as far as I know",
	}
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Retrieval: RetrievalConfig{
			TopK:               3,
			RecoveryTopK:       2,
			RelevanceThreshold: 0.2,
			TermBoost:          0.1,
			MinTokenLength:     3,
		},
		Index: IndexConfig{
			Dimensions:    384,
			ProgressEvery: 10,
		},
		Generation: domain.DefaultGenerateOptions(),
		Grounding: GroundingConfig{
			HallucinationMarkers: DefaultHallucinationMarkers(),
			LeadingLabels:        []string{"Answer:", "Response:", "Based on the context:"},
			MinGroundedRatio:     0.3,
			CheckedTokens:        10,
			MinTokenLength:       4,
			MinAnswerLength:      10,
		},
		Extractive: ExtractiveConfig{
			MinSentenceLength: 20,
			ExcerptLength:     200,
			MinTokenLength:    3,
			QuestionWords:     []string{"what", "how", "why", "when"},
			QuestionBonus:     0.5,
		},
	}
}

// normalize replaces unusable sizes with defaults. Thresholds, ratios and boosts are kept
// as configured, including zero.
func (c PipelineConfig) normalize() PipelineConfig {
	out := c
	def := DefaultPipelineConfig()

	if out.Retrieval.TopK <= 0 {
		out.Retrieval.TopK = def.Retrieval.TopK
	}
	if out.Retrieval.RecoveryTopK <= 0 {
		out.Retrieval.RecoveryTopK = def.Retrieval.RecoveryTopK
	}
	if out.Retrieval.MinTokenLength <= 0 {
		out.Retrieval.MinTokenLength = def.Retrieval.MinTokenLength
	}

	if out.Index.Dimensions <= 0 {
		out.Index.Dimensions = def.Index.Dimensions
	}
	if out.Index.ProgressEvery <= 0 {
		out.Index.ProgressEvery = def.Index.ProgressEvery
	}

	if out.Generation.MaxLength <= 0 {
		out.Generation.MaxLength = def.Generation.MaxLength
	}

	if out.Grounding.CheckedTokens <= 0 {
		out.Grounding.CheckedTokens = def.Grounding.CheckedTokens
	}
	if out.Grounding.MinTokenLength <= 0 {
		out.Grounding.MinTokenLength = def.Grounding.MinTokenLength
	}

	if out.Extractive.ExcerptLength <= 0 {
		out.Extractive.ExcerptLength = def.Extractive.ExcerptLength
	}
	if out.Extractive.MinTokenLength <= 0 {
		out.Extractive.MinTokenLength = def.Extractive.MinTokenLength
	}

	return out
}
