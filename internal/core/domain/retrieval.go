package domain

type RetrievalMode string

const (
	RetrievalSemantic RetrievalMode = "semantic"
	RetrievalLexical  RetrievalMode = "lexical"
)

// ScoredCandidate is a transient ranking record for one chunk.
type ScoredCandidate struct {
	Index        int
	Text         string
	Similarity   float64
	LexicalBoost float64
	Score        float64
}

type RetrievedChunk struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type Retrieval struct {
	Mode   RetrievalMode
	Chunks []RetrievedChunk
}

func (r Retrieval) Texts() []string {
	out := make([]string, 0, len(r.Chunks))
	for _, chunk := range r.Chunks {
		out = append(out, chunk.Text)
	}
	return out
}

type AnswerStrategy string

const (
	StrategyGenerated  AnswerStrategy = "generated"
	StrategyExtractive AnswerStrategy = "extractive"
	StrategyNoContext  AnswerStrategy = "no_context"
)

type Answer struct {
	Text           string           `json:"answer"`
	Strategy       AnswerStrategy   `json:"strategy"`
	RetrievalMode  RetrievalMode    `json:"retrieval_mode,omitempty"`
	FallbackReason string           `json:"fallback_reason,omitempty"`
	Sources        []RetrievedChunk `json:"sources"`
}
