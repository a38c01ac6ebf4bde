package analyzer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/proofcrawl/internal/analyzer"
	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

var contentRows = []string{
	"id", "url", "title", "original_text", "cleaned_text", "language",
	"status", "created_at", "updated_at",
}

// fakeBackend returns canned proposals, or an error, for every chunk.
type fakeBackend struct {
	name      string
	proposals []analyzer.RawSuggestion
	err       error
	calls     int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Propose(context.Context, string) ([]analyzer.RawSuggestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.proposals, nil
}

func completeRaw(start, end int) analyzer.RawSuggestion {
	return analyzer.RawSuggestion{
		OriginalText:    strPtr("teh"),
		SuggestedText:   strPtr("the"),
		ErrorType:       strPtr(domain.ErrorTypeSpelling),
		Explanation:     strPtr("Misspelling"),
		ConfidenceScore: floatPtr(0.9),
		StartPosition:   intPtr(start),
		EndPosition:     intPtr(end),
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func newAnalyzerEngine(t *testing.T, primary, fallback analyzer.Backend, chunkSize int) (*analyzer.Engine, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	engine := analyzer.NewEngine(
		db,
		database.NewContentRepository(db),
		database.NewSuggestionRepository(db),
		database.NewAuditRepository(db),
		primary,
		fallback,
		chunkSize,
		logger.NewNop(),
	)
	return engine, mock
}

func expectContentRow(mock sqlmock.Sqlmock, id, cleaned, status string) {
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM contents WHERE id").
		WithArgs(id).
		WillReturnRows(
			sqlmock.NewRows(contentRows).
				AddRow(id, "https://example.com/p", "P", "raw", cleaned, "en", status, now, now),
		)
}

func TestEngine_Analyze_PersistsAndAudits(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		proposals: []analyzer.RawSuggestion{
			completeRaw(0, 3),
			{OriginalText: strPtr("orphan")}, // incomplete, dropped
		},
	}
	engine, mock := newAnalyzerEngine(t, backend, nil, 2000)

	expectContentRow(mock, "c-1", "teh text", "pending")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO suggestions").
		WithArgs(
			sqlmock.AnyArg(), "c-1", "teh", "the", domain.ErrorTypeSpelling,
			"Misspelling", 0.9, 0, 3, domain.SuggestionStatusPending, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contents SET status").
		WithArgs(domain.ContentStatusAnalyzed, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), domain.AuditActionAnalyzed,
			"Generated 1 suggestions using fake", nil, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.Analyze(context.Background(), "c-1")
	require.NoError(t, err)

	assert.Equal(t, "fake", result.Backend)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "the", result.Suggestions[0].SuggestedText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Analyze_FallsBackWhenUnavailable(t *testing.T) {
	primary := &fakeBackend{name: "OpenAI", err: domain.ErrBackendUnavailable}
	engine, mock := newAnalyzerEngine(t, primary, analyzer.NewRulesBackend(), 2000)

	expectContentRow(mock, "c-1", "Hello  world", "pending")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO suggestions").
		WithArgs(
			sqlmock.AnyArg(), "c-1", "  ", " ", domain.ErrorTypePunctuation,
			"Multiple spaces should be replaced with a single space", 0.8, 5, 7,
			domain.SuggestionStatusPending, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contents SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), domain.AuditActionAnalyzed,
			"Generated 1 suggestions using basic rules", nil, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.Analyze(context.Background(), "c-1")
	require.NoError(t, err)

	assert.Equal(t, "basic rules", result.Backend)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, 1, primary.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Analyze_RebasesChunkOffsets(t *testing.T) {
	backend := &fakeBackend{name: "fake", proposals: []analyzer.RawSuggestion{completeRaw(1, 2)}}
	engine, mock := newAnalyzerEngine(t, backend, nil, 4)

	// Two chunks of 4 bytes: proposals at chunk position 1 land at 1 and 5.
	expectContentRow(mock, "c-1", "abcdefgh", "pending")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO suggestions").
		WithArgs(
			sqlmock.AnyArg(), "c-1", "teh", "the", domain.ErrorTypeSpelling,
			"Misspelling", 0.9, 1, 2, domain.SuggestionStatusPending, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO suggestions").
		WithArgs(
			sqlmock.AnyArg(), "c-1", "teh", "the", domain.ErrorTypeSpelling,
			"Misspelling", 0.9, 5, 6, domain.SuggestionStatusPending, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contents SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.Analyze(context.Background(), "c-1")
	require.NoError(t, err)

	require.Len(t, result.Suggestions, 2)
	assert.Equal(t, 2, backend.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_Analyze_NotFound(t *testing.T) {
	engine, mock := newAnalyzerEngine(t, &fakeBackend{name: "fake"}, nil, 2000)

	mock.ExpectQuery("SELECT (.+) FROM contents WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(contentRows))

	_, err := engine.Analyze(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_Analyze_PersistenceFailure(t *testing.T) {
	backend := &fakeBackend{name: "fake", proposals: []analyzer.RawSuggestion{completeRaw(0, 3)}}
	engine, mock := newAnalyzerEngine(t, backend, nil, 2000)

	expectContentRow(mock, "c-1", "teh text", "pending")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO suggestions").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := engine.Analyze(context.Background(), "c-1")
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
}

func TestEngine_AnalyzeIfNeeded_AlreadyAnalyzed(t *testing.T) {
	backend := &fakeBackend{name: "fake"}
	engine, mock := newAnalyzerEngine(t, backend, nil, 2000)

	expectContentRow(mock, "c-1", "text", "analyzed")

	result, err := engine.AnalyzeIfNeeded(context.Background(), "c-1", false)
	require.NoError(t, err)

	assert.True(t, result.AlreadyAnalyzed)
	assert.Zero(t, backend.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngine_AnalyzeIfNeeded_ForceReanalyzes(t *testing.T) {
	backend := &fakeBackend{name: "fake", proposals: []analyzer.RawSuggestion{}}
	engine, mock := newAnalyzerEngine(t, backend, nil, 2000)

	expectContentRow(mock, "c-1", "text", "analyzed")
	mock.ExpectExec("UPDATE contents SET status").
		WithArgs(domain.ContentStatusPending, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectContentRow(mock, "c-1", "text", "pending")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contents SET status").
		WithArgs(domain.ContentStatusAnalyzed, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), domain.AuditActionAnalyzed,
			"Generated 0 suggestions using fake", nil, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := engine.AnalyzeIfNeeded(context.Background(), "c-1", true)
	require.NoError(t, err)

	assert.False(t, result.AlreadyAnalyzed)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, 1, backend.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
