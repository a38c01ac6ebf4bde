package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

// availabilityTimeout bounds the ping issued by Available.
const availabilityTimeout = 5 * time.Second

// Elastic is an Elasticsearch-backed content index.
type Elastic struct {
	client *es.Client
	index  string
	logger logger.Interface
}

// NewElastic creates an Elasticsearch index from the search configuration.
func NewElastic(cfg config.SearchConfig, log logger.Interface) (*Elastic, error) {
	clientConfig := es.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	index := cfg.IndexName
	if index == "" {
		index = config.DefaultSearchIndexName
	}

	return &Elastic{
		client: client,
		index:  index,
		logger: log,
	}, nil
}

// contentDocument is the indexed shape of a content row.
type contentDocument struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	CleanedText string    `json:"cleaned_text"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// hitDocument is the slice of the document a search result carries.
type hitDocument struct {
	ID     string `mapstructure:"id"`
	URL    string `mapstructure:"url"`
	Title  string `mapstructure:"title"`
	Status string `mapstructure:"status"`
}

// EnsureIndex creates the content index with its mapping when it does not
// exist yet.
func (e *Elastic) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists(
		[]string{e.index},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check search index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("search index check error: %s", res.String())
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":           map[string]string{"type": "keyword"},
				"url":          map[string]string{"type": "keyword"},
				"title":        map[string]string{"type": "text"},
				"cleaned_text": map[string]string{"type": "text"},
				"status":       map[string]string{"type": "keyword"},
				"created_at":   map[string]string{"type": "date"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	create, err := e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	defer create.Body.Close()

	if create.IsError() {
		return fmt.Errorf("search index create error: %s", create.String())
	}

	e.logger.Info("created search index", logger.String("index", e.index))
	return nil
}

// IndexContent adds or replaces the document for a content row.
func (e *Elastic) IndexContent(ctx context.Context, content *domain.Content) error {
	body, err := json.Marshal(contentDocument{
		ID:          content.ID,
		URL:         content.URL,
		Title:       content.Title,
		CleanedText: content.CleanedText,
		Status:      string(content.Status),
		CreatedAt:   content.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal content document: %w", err)
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(content.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index content: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	return nil
}

// Search runs a multi-field match over title, URL, and cleaned text. Title
// matches rank highest.
func (e *Elastic) Search(ctx context.Context, query string, limit int) ([]ContentHit, error) {
	body, err := json.Marshal(map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "url", "cleaned_text"},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Score  float64        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]ContentHit, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var doc hitDocument
		if err := mapstructure.Decode(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode search hit: %w", err)
		}
		hits = append(hits, ContentHit{
			ID:     doc.ID,
			URL:    doc.URL,
			Title:  doc.Title,
			Status: doc.Status,
			Score:  hit.Score,
		})
	}

	return hits, nil
}

// Available reports whether the cluster answers a ping.
func (e *Elastic) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), availabilityTimeout)
	defer cancel()

	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return !res.IsError()
}
