package analyzer

import (
	"context"
	"regexp"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

var (
	doubleSpacePattern  = regexp.MustCompile(`  +`)
	missingSpacePattern = regexp.MustCompile(`[.!?][a-zA-Z]`)
)

// RulesBackend runs deterministic punctuation checks. It needs no network
// and never fails, which makes it the fallback when the remote backend is
// unavailable.
type RulesBackend struct{}

// NewRulesBackend creates the rules backend.
func NewRulesBackend() *RulesBackend {
	return &RulesBackend{}
}

// Name identifies the backend in audit entries.
func (b *RulesBackend) Name() string {
	return "basic rules"
}

// Propose scans the text for runs of spaces and for missing spaces after
// sentence punctuation. Offsets are byte positions within the chunk.
func (b *RulesBackend) Propose(_ context.Context, text string) ([]RawSuggestion, error) {
	var suggestions []RawSuggestion

	for _, loc := range doubleSpacePattern.FindAllStringIndex(text, -1) {
		suggestions = append(suggestions, RawSuggestion{
			OriginalText:    ptr(text[loc[0]:loc[1]]),
			SuggestedText:   ptr(" "),
			ErrorType:       ptr(domain.ErrorTypePunctuation),
			Explanation:     ptr("Multiple spaces should be replaced with a single space"),
			ConfidenceScore: ptr(0.8),
			StartPosition:   ptr(loc[0]),
			EndPosition:     ptr(loc[1]),
		})
	}

	for _, loc := range missingSpacePattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		suggestions = append(suggestions, RawSuggestion{
			OriginalText:    ptr(match),
			SuggestedText:   ptr(match[:1] + " " + match[1:]),
			ErrorType:       ptr(domain.ErrorTypePunctuation),
			Explanation:     ptr("Missing space after punctuation"),
			ConfidenceScore: ptr(0.7),
			StartPosition:   ptr(loc[0]),
			EndPosition:     ptr(loc[1]),
		})
	}

	return suggestions, nil
}
