package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// pipelineFile mirrors the YAML overlay. Pointer fields distinguish "unset" from zero.
type pipelineFile struct {
	Chunking struct {
		ChunkSize       *int `yaml:"chunk_size"`
		OverlapWords    *int `yaml:"overlap_words"`
		OverlapDivisor  *int `yaml:"overlap_divisor"`
		OverlapMaxWords *int `yaml:"overlap_max_words"`
	} `yaml:"chunking"`
	Retrieval struct {
		TopK               *int     `yaml:"top_k"`
		RecoveryTopK       *int     `yaml:"recovery_top_k"`
		RelevanceThreshold *float64 `yaml:"relevance_threshold"`
		TermBoost          *float64 `yaml:"term_boost"`
		MinTokenLength     *int     `yaml:"min_token_length"`
	} `yaml:"retrieval"`
	Generation struct {
		MaxLength         *int     `yaml:"max_length"`
		Temperature       *float64 `yaml:"temperature"`
		Deterministic     *bool    `yaml:"deterministic"`
		RepetitionPenalty *float64 `yaml:"repetition_penalty"`
	} `yaml:"generation"`
	Grounding struct {
		MinRatio       *float64 `yaml:"min_ratio"`
		CheckedTokens  *int     `yaml:"checked_tokens"`
		MinTokenLength *int     `yaml:"min_token_length"`
		MinAnswerChars *int     `yaml:"min_answer_chars"`
		Markers        []string `yaml:"markers"`
		LeadingLabels  []string `yaml:"leading_labels"`
	} `yaml:"grounding"`
	Extractive struct {
		MinSentenceChars *int     `yaml:"min_sentence_chars"`
		ExcerptChars     *int     `yaml:"excerpt_chars"`
		QuestionWords    []string `yaml:"question_words"`
		QuestionBonus    *float64 `yaml:"question_bonus"`
	} `yaml:"extractive"`
}

// ApplyFile overlays pipeline settings from a YAML file. An empty path is a no-op.
func (c *Config) ApplyFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pipeline config: %w", err)
	}

	var file pipelineFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse pipeline config %s: %w", path, err)
	}

	setInt(&c.Chunking.ChunkSize, file.Chunking.ChunkSize)
	setInt(&c.Chunking.OverlapWords, file.Chunking.OverlapWords)
	setInt(&c.Chunking.OverlapDivisor, file.Chunking.OverlapDivisor)
	setInt(&c.Chunking.OverlapMaxWords, file.Chunking.OverlapMaxWords)

	p := &c.Pipeline
	setInt(&p.Retrieval.TopK, file.Retrieval.TopK)
	setInt(&p.Retrieval.RecoveryTopK, file.Retrieval.RecoveryTopK)
	setFloat(&p.Retrieval.RelevanceThreshold, file.Retrieval.RelevanceThreshold)
	setFloat(&p.Retrieval.TermBoost, file.Retrieval.TermBoost)
	setInt(&p.Retrieval.MinTokenLength, file.Retrieval.MinTokenLength)

	setInt(&p.Generation.MaxLength, file.Generation.MaxLength)
	setFloat(&p.Generation.Temperature, file.Generation.Temperature)
	if file.Generation.Deterministic != nil {
		p.Generation.Deterministic = *file.Generation.Deterministic
	}
	setFloat(&p.Generation.RepetitionPenalty, file.Generation.RepetitionPenalty)

	setFloat(&p.Grounding.MinGroundedRatio, file.Grounding.MinRatio)
	setInt(&p.Grounding.CheckedTokens, file.Grounding.CheckedTokens)
	setInt(&p.Grounding.MinTokenLength, file.Grounding.MinTokenLength)
	setInt(&p.Grounding.MinAnswerLength, file.Grounding.MinAnswerChars)
	if file.Grounding.Markers != nil {
		p.Grounding.HallucinationMarkers = file.Grounding.Markers
	}
	if file.Grounding.LeadingLabels != nil {
		p.Grounding.LeadingLabels = file.Grounding.LeadingLabels
	}

	setInt(&p.Extractive.MinSentenceLength, file.Extractive.MinSentenceChars)
	setInt(&p.Extractive.ExcerptLength, file.Extractive.ExcerptChars)
	if file.Extractive.QuestionWords != nil {
		p.Extractive.QuestionWords = file.Extractive.QuestionWords
	}
	setFloat(&p.Extractive.QuestionBonus, file.Extractive.QuestionBonus)

	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
