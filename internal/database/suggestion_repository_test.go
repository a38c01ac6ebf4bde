package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
)

var suggestionRows = []string{
	"id", "content_id", "original_text", "suggested_text", "error_type",
	"explanation", "confidence_score", "start_position", "end_position", "status", "created_at",
}

func TestSuggestionRepository_InsertBatchTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	first := domain.NewSuggestion("c-1")
	first.OriginalText = "Hello  world"
	first.SuggestedText = "Hello world"
	first.ErrorType = domain.ErrorTypePunctuation
	first.ConfidenceScore = 0.8
	first.StartPosition = 5
	first.EndPosition = 7

	second := domain.NewSuggestion("c-1")
	second.OriginalText = "teh"
	second.SuggestedText = "the"
	second.ErrorType = domain.ErrorTypeSpelling
	second.ConfidenceScore = 0.95
	second.StartPosition = 20
	second.EndPosition = 23

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO suggestions").
		WithArgs(
			first.ID, "c-1", "Hello  world", "Hello world", domain.ErrorTypePunctuation,
			"", 0.8, 5, 7, domain.SuggestionStatusPending, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO suggestions").
		WithArgs(
			second.ID, "c-1", "teh", "the", domain.ErrorTypeSpelling,
			"", 0.95, 20, 23, domain.SuggestionStatusPending, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	if err != nil {
		t.Fatalf("Beginx() error = %v", err)
	}

	if err := repo.InsertBatchTx(ctx, tx, []*domain.Suggestion{first, second}); err != nil {
		t.Fatalf("InsertBatchTx() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	requireExpectations(t, mock)
}

func TestSuggestionRepository_List_AppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE status").
		WithArgs("pending", "grammar", 0.7, 50, 0).
		WillReturnRows(
			sqlmock.NewRows(suggestionRows).
				AddRow("s-1", "c-1", "foo", "bar", "grammar", "why", 0.9, 0, 3, "pending", now),
		)

	results, err := repo.List(ctx, database.SuggestionFilter{
		Status:        "pending",
		ErrorType:     "grammar",
		MinConfidence: 0.7,
		Limit:         50,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(results))
	}

	requireExpectations(t, mock)
}

func TestSuggestionRepository_List_NoFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM suggestions ORDER BY").
		WithArgs(50, 10).
		WillReturnRows(sqlmock.NewRows(suggestionRows))

	results, err := repo.List(ctx, database.SuggestionFilter{Limit: 50, Offset: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if results == nil {
		t.Fatal("expected empty slice, got nil")
	}

	requireExpectations(t, mock)
}

func TestSuggestionRepository_TransitionStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusApproved, "s-1", domain.SuggestionStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.TransitionStatus(ctx, "s-1", domain.SuggestionStatusApproved, domain.SuggestionStatusPending)
	if err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}
	if !updated {
		t.Error("expected updated=true")
	}

	requireExpectations(t, mock)
}

func TestSuggestionRepository_TransitionStatus_Guarded(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(
			domain.SuggestionStatusApplied, "s-1",
			domain.SuggestionStatusPending, domain.SuggestionStatusApproved,
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.TransitionStatus(
		ctx, "s-1", domain.SuggestionStatusApplied,
		domain.SuggestionStatusPending, domain.SuggestionStatusApproved,
	)
	if err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}
	if updated {
		t.Error("expected updated=false for guarded transition")
	}

	requireExpectations(t, mock)
}

func TestSuggestionRepository_HighConfidencePending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM suggestions").
		WithArgs(domain.SuggestionStatusPending, 0.8, 10).
		WillReturnRows(
			sqlmock.NewRows(suggestionRows).
				AddRow("s-1", "c-1", "foo", "bar", "spelling", "", 0.95, 0, 3, "pending", now).
				AddRow("s-2", "c-2", "baz", "qux", "grammar", "", 0.85, 4, 7, "pending", now),
		)

	results, err := repo.HighConfidencePending(ctx, 0.8, 10)
	if err != nil {
		t.Fatalf("HighConfidencePending() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(results))
	}
	if results[0].ConfidenceScore < results[1].ConfidenceScore {
		t.Error("expected results ordered by confidence descending")
	}

	requireExpectations(t, mock)
}

func TestSuggestionRepository_Performance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSuggestionRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT").
		WillReturnRows(
			sqlmock.NewRows([]string{"avg_suggestions_per_content", "avg_confidence_score", "success_rate"}).
				AddRow(2.5, 0.82, 66.7),
		)

	stats, err := repo.Performance(ctx)
	if err != nil {
		t.Fatalf("Performance() error = %v", err)
	}
	if stats.AvgSuggestionsPerContent != 2.5 {
		t.Errorf("expected avg 2.5, got %f", stats.AvgSuggestionsPerContent)
	}
	if stats.SuccessRate != 66.7 {
		t.Errorf("expected success rate 66.7, got %f", stats.SuccessRate)
	}

	requireExpectations(t, mock)
}
