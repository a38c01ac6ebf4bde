package domain

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionStatus represents the review state of a proposed edit.
type SuggestionStatus string

const (
	// SuggestionStatusPending indicates the suggestion awaits review.
	SuggestionStatusPending SuggestionStatus = "pending"
	// SuggestionStatusApproved indicates a reviewer accepted the edit.
	SuggestionStatusApproved SuggestionStatus = "approved"
	// SuggestionStatusRejected indicates a reviewer declined the edit.
	SuggestionStatusRejected SuggestionStatus = "rejected"
	// SuggestionStatusApplied indicates the edit was spliced into the text.
	SuggestionStatusApplied SuggestionStatus = "applied"
)

// Error types a suggestion may carry.
const (
	ErrorTypeSpelling    = "spelling"
	ErrorTypeGrammar     = "grammar"
	ErrorTypePunctuation = "punctuation"
	ErrorTypeStyle       = "style"
	ErrorTypeClarity     = "clarity"
)

// Suggestion is one proposed edit against a content row.
//
// StartPosition and EndPosition are half-open byte offsets into the owning
// content's CleanedText as it was when the suggestion was created.
type Suggestion struct {
	ID              string           `db:"id"               json:"id"`
	ContentID       string           `db:"content_id"       json:"content_id"`
	OriginalText    string           `db:"original_text"    json:"original_text"`
	SuggestedText   string           `db:"suggested_text"   json:"suggested_text"`
	ErrorType       string           `db:"error_type"       json:"error_type"`
	Explanation     string           `db:"explanation"      json:"explanation"`
	ConfidenceScore float64          `db:"confidence_score" json:"confidence_score"`
	StartPosition   int              `db:"start_position"   json:"start_position"`
	EndPosition     int              `db:"end_position"     json:"end_position"`
	Status          SuggestionStatus `db:"status"           json:"status"`
	CreatedAt       time.Time        `db:"created_at"       json:"created_at"`
}

// NewSuggestion creates a pending suggestion owned by the given content.
func NewSuggestion(contentID string) *Suggestion {
	return &Suggestion{
		ID:        uuid.New().String(),
		ContentID: contentID,
		Status:    SuggestionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// IsTerminal reports whether the status is a final state.
func (s SuggestionStatus) IsTerminal() bool {
	return s == SuggestionStatusRejected || s == SuggestionStatusApplied
}

// CanApprove reports whether a suggestion in this status may be approved.
func (s SuggestionStatus) CanApprove() bool {
	return s == SuggestionStatusPending
}

// CanReject reports whether a suggestion in this status may be rejected.
func (s SuggestionStatus) CanReject() bool {
	return !s.IsTerminal()
}

// CanApply reports whether a suggestion in this status may be applied.
func (s SuggestionStatus) CanApply() bool {
	return s == SuggestionStatusPending || s == SuggestionStatusApproved
}
