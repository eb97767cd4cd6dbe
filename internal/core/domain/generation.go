package domain

type EmbedOptions struct {
	Pooling   string
	Normalize bool
}

// DefaultEmbedOptions is used for both chunk and query embeddings so the vectors are comparable.
var DefaultEmbedOptions = EmbedOptions{Pooling: "mean", Normalize: true}

type GenerateOptions struct {
	MaxLength         int
	Temperature       float64
	Deterministic     bool
	RepetitionPenalty float64
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MaxLength:         150,
		Temperature:       0.1,
		Deterministic:     true,
		RepetitionPenalty: 1.1,
	}
}
