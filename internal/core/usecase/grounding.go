package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/document-qa/internal/core/domain"
)

const (
	RejectHallucinationMarker = "hallucination_marker"
	RejectLowGrounding        = "low_grounding"
	RejectTooShort            = "too_short"
)

// GroundingRejection reports why a generated answer was not accepted.
type GroundingRejection struct {
	Reason string
	Detail string
}

func (r *GroundingRejection) Error() string {
	if r.Detail == "" {
		return "grounding rejected: " + r.Reason
	}
	return fmt.Sprintf("grounding rejected: %s (%s)", r.Reason, r.Detail)
}

func (r *GroundingRejection) Unwrap() error {
	return domain.ErrGroundingRejected
}

type hallucinationMarker struct {
	text    string
	pattern *regexp.Regexp
}

// GroundingValidator cleans raw generator output and rejects answers that drift from the context.
type GroundingValidator struct {
	cfg          GroundingConfig
	leadingLabel *regexp.Regexp
	markers      []hallucinationMarker
}

func NewGroundingValidator(cfg GroundingConfig) *GroundingValidator {
	v := &GroundingValidator{cfg: cfg}

	if len(cfg.LeadingLabels) > 0 {
		quoted := make([]string, 0, len(cfg.LeadingLabels))
		for _, label := range cfg.LeadingLabels {
			if label = strings.TrimSpace(label); label != "" {
				quoted = append(quoted, regexp.QuoteMeta(label))
			}
		}
		if len(quoted) > 0 {
			v.leadingLabel = regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)`)
		}
	}

	for _, marker := range cfg.HallucinationMarkers {
		marker = strings.TrimSpace(marker)
		if marker == "" {
			continue
		}
		v.markers = append(v.markers, hallucinationMarker{
			text:    marker,
			pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(marker)),
		})
	}
	return v
}

// Validate returns the cleaned answer, or a *GroundingRejection.
func (v *GroundingValidator) Validate(raw, prompt, context string) (string, error) {
	answer := raw
	if prompt != "" {
		answer = strings.Replace(answer, prompt, "", 1)
	}
	answer = strings.TrimSpace(answer)
	if v.leadingLabel != nil {
		answer = strings.TrimSpace(v.leadingLabel.ReplaceAllString(answer, ""))
	}

	for _, marker := range v.markers {
		if marker.pattern.MatchString(answer) {
			return "", &GroundingRejection{Reason: RejectHallucinationMarker, Detail: marker.text}
		}
	}

	if ratio, checked := v.groundedRatio(answer, context); checked > 0 && ratio < v.cfg.MinGroundedRatio {
		return "", &GroundingRejection{
			Reason: RejectLowGrounding,
			Detail: fmt.Sprintf("ratio %.2f over %d tokens", ratio, checked),
		}
	}

	if utf8.RuneCountInString(answer) < v.cfg.MinAnswerLength {
		return "", &GroundingRejection{Reason: RejectTooShort}
	}
	return answer, nil
}

func (v *GroundingValidator) groundedRatio(answer, context string) (float64, int) {
	tokens := significantTokens(answer, v.cfg.MinTokenLength)
	if len(tokens) > v.cfg.CheckedTokens {
		tokens = tokens[:v.cfg.CheckedTokens]
	}
	if len(tokens) == 0 {
		return 0, 0
	}

	vocabulary := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(context)) {
		vocabulary[token] = struct{}{}
	}

	grounded := 0
	for _, token := range tokens {
		if _, ok := vocabulary[token]; ok {
			grounded++
		}
	}
	return float64(grounded) / float64(len(tokens)), len(tokens)
}
