package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

type Config struct {
	// ChunkSize is the target chunk length in runes. A single longer sentence becomes its own chunk.
	ChunkSize int
	// OverlapWords is scaled down by OverlapDivisor and capped at OverlapMaxWords to get the
	// number of trailing words carried into the next chunk.
	OverlapWords    int
	OverlapDivisor  int
	OverlapMaxWords int
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:       500,
		OverlapWords:    50,
		OverlapDivisor:  10,
		OverlapMaxWords: 10,
	}
}

// Splitter packs sentences greedily into chunks of about ChunkSize runes.
// Sentence terminators are dropped.
type Splitter struct {
	cfg Config
}

func NewSplitter(cfg Config) *Splitter {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.OverlapWords < 0 {
		cfg.OverlapWords = 0
	}
	if cfg.OverlapDivisor <= 0 {
		cfg.OverlapDivisor = def.OverlapDivisor
	}
	if cfg.OverlapMaxWords <= 0 {
		cfg.OverlapMaxWords = def.OverlapMaxWords
	}
	return &Splitter{cfg: cfg}
}

func (s *Splitter) OverlapWordCount() int {
	return min(s.cfg.OverlapWords/s.cfg.OverlapDivisor, s.cfg.OverlapMaxWords)
}

func (s *Splitter) Split(text string) []string {
	out := make([]string, 0)
	overlap := s.OverlapWordCount()

	current := ""
	for _, sentence := range sentenceBoundary.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		currentLen := utf8.RuneCountInString(current)
		if currentLen > 0 && currentLen+utf8.RuneCountInString(sentence) > s.cfg.ChunkSize {
			out = append(out, strings.TrimSpace(current))
			if tail := lastWords(current, overlap); tail != "" {
				current = tail + " " + sentence
			} else {
				current = sentence
			}
			continue
		}

		if current != "" {
			current += " "
		}
		current += sentence
	}

	if last := strings.TrimSpace(current); last != "" {
		out = append(out, last)
	}
	return out
}

// lastWords splits on single spaces, so runs of spaces count as empty words.
func lastWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Split(s, " ")
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
