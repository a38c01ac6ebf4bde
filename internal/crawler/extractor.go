package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

// Extraction is the readable text pulled from one fetched page.
//
// OriginalText preserves every visible word on the page. CleanedText is the
// main-content pass the analyzer works on; suggestion offsets point into it.
type Extraction struct {
	Title        string
	OriginalText string
	CleanedText  string
}

// invisibleSelectors lists elements whose text is never shown to a reader.
const invisibleSelectors = "script, style, noscript"

// boilerplateSelectors lists page chrome stripped before the main-content pass.
const boilerplateSelectors = "script, style, noscript, nav, header, footer, aside, form, iframe"

// mainContentSelectors are tried in order when locating the readable core of
// a page. The document body is the fallback.
var mainContentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	"#content",
	".content",
	".post-content",
	".entry-content",
}

// Extractor turns raw HTML into proofreadable text.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses a page and returns its title plus both text views.
// Unparseable markup or a page with no visible text reports
// domain.ErrExtractionFailure.
func (e *Extractor) Extract(body []byte, pageURL string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse markup: %w", domain.ErrExtractionFailure, err)
	}

	title := extractTitle(doc, pageURL)

	doc.Find(invisibleSelectors).Remove()
	original := collapseWhitespace(doc.Text())
	if original == "" {
		return nil, fmt.Errorf("%w: no text content at %s", domain.ErrExtractionFailure, pageURL)
	}

	doc.Find(boilerplateSelectors).Remove()
	cleaned := extractMainContent(doc)
	if cleaned == "" {
		cleaned = original
	}

	return &Extraction{
		Title:        title,
		OriginalText: original,
		CleanedText:  cleaned,
	}, nil
}

// extractTitle prefers <title>, then og:title, then the first heading, and
// finally falls back to the page URL so every content row has a label.
func extractTitle(doc *goquery.Document, pageURL string) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}

	return pageURL
}

// extractMainContent returns the collapsed text of the first matching
// content container, falling back to the whole body.
func extractMainContent(doc *goquery.Document) string {
	for _, selector := range mainContentSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		if text := collapseWhitespace(container.Text()); text != "" {
			return text
		}
	}

	return collapseWhitespace(doc.Find("body").First().Text())
}

// collapseWhitespace normalizes all runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
