// Package analyzer generates proofreading suggestions for stored content.
// An OpenAI-compatible backend does the heavy lifting when configured; a
// deterministic rules backend covers the rest and serves as the fallback.
package analyzer

import "context"

// Backend proposes edits for one chunk of text. Offsets in the proposals
// are relative to the chunk; the engine re-bases them.
type Backend interface {
	Name() string
	Propose(ctx context.Context, text string) ([]RawSuggestion, error)
}

// RawSuggestion is one backend proposal before validation. Every field is a
// pointer so a missing key is distinguishable from a zero value; proposals
// missing any field are dropped.
type RawSuggestion struct {
	OriginalText    *string  `json:"original_text"`
	SuggestedText   *string  `json:"suggested_text"`
	ErrorType       *string  `json:"error_type"`
	Explanation     *string  `json:"explanation"`
	ConfidenceScore *float64 `json:"confidence_score"`
	StartPosition   *int     `json:"start_position"`
	EndPosition     *int     `json:"end_position"`
}

// Complete reports whether every required field is present.
func (r *RawSuggestion) Complete() bool {
	return r.OriginalText != nil &&
		r.SuggestedText != nil &&
		r.ErrorType != nil &&
		r.Explanation != nil &&
		r.ConfidenceScore != nil &&
		r.StartPosition != nil &&
		r.EndPosition != nil
}

func ptr[T any](v T) *T {
	return &v
}
