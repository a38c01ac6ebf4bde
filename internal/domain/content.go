package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus represents the analysis state of a stored page.
type ContentStatus string

const (
	// ContentStatusPending indicates the page has not been analyzed yet.
	ContentStatusPending ContentStatus = "pending"
	// ContentStatusAnalyzed indicates suggestions have been generated.
	ContentStatusAnalyzed ContentStatus = "analyzed"
	// ContentStatusReviewed indicates a reviewer has finished with the page.
	ContentStatusReviewed ContentStatus = "reviewed"
)

// DefaultLanguage is assumed for crawled pages until detection exists.
const DefaultLanguage = "en"

// Content is the stored, normalized result of crawling one page.
//
// OriginalText is an immutable snapshot of the page text as fetched.
// CleanedText starts as the boilerplate-stripped extraction and is edited in
// place as suggestions are applied; suggestion offsets refer to the
// CleanedText version captured when the suggestion was created.
type Content struct {
	ID           string        `db:"id"            json:"id"`
	URL          string        `db:"url"           json:"url"`
	Title        string        `db:"title"         json:"title"`
	OriginalText string        `db:"original_text" json:"original_text"`
	CleanedText  string        `db:"cleaned_text"  json:"cleaned_text"`
	Language     string        `db:"language"      json:"language"`
	Status       ContentStatus `db:"status"        json:"status"`
	CreatedAt    time.Time     `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"    json:"updated_at"`
}

// NewContent creates a pending content row for a freshly extracted page.
func NewContent(url, title, originalText, cleanedText string) *Content {
	now := time.Now().UTC()
	return &Content{
		ID:           uuid.New().String(),
		URL:          url,
		Title:        title,
		OriginalText: originalText,
		CleanedText:  cleanedText,
		Language:     DefaultLanguage,
		Status:       ContentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
