package search

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

func TestStoreIndex_Search(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "url", "title", "original_text", "cleaned_text", "language",
		"status", "created_at", "updated_at",
	}).AddRow("c-1", "https://example.com/go", "Go Guide", "raw", "clean", "en",
		domain.ContentStatusAnalyzed, now, now)
	mock.ExpectQuery("SELECT (.+) FROM contents WHERE title ILIKE").
		WithArgs("%go%", 10).
		WillReturnRows(rows)

	idx := NewStoreIndex(database.NewContentRepository(db))
	hits, err := idx.Search(context.Background(), "go", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c-1", hits[0].ID)
	assert.Equal(t, "Go Guide", hits[0].Title)
	assert.Equal(t, "analyzed", hits[0].Status)
	assert.Zero(t, hits[0].Score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreIndex_IndexContentIsNoOp(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "postgres")

	idx := NewStoreIndex(database.NewContentRepository(db))

	content := domain.NewContent("https://example.com", "Home", "raw", "clean")
	assert.NoError(t, idx.IndexContent(context.Background(), content))
	assert.True(t, idx.Available())
}
