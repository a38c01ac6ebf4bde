package review

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/proofcrawl/internal/database"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

var suggestionCols = []string{
	"id", "content_id", "original_text", "suggested_text", "error_type",
	"explanation", "confidence_score", "start_position", "end_position", "status", "created_at",
}

var contentCols = []string{
	"id", "url", "title", "original_text", "cleaned_text", "language",
	"status", "created_at", "updated_at",
}

func newReviewService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	svc := NewService(
		db,
		database.NewSuggestionRepository(db),
		database.NewContentRepository(db),
		database.NewAuditRepository(db),
		logger.NewNop(),
	)

	return svc, mock
}

func suggestionRow(id, contentID, original, suggested string, start, end int, status domain.SuggestionStatus) *sqlmock.Rows {
	return sqlmock.NewRows(suggestionCols).AddRow(
		id, contentID, original, suggested, domain.ErrorTypePunctuation,
		"Multiple spaces should be replaced with a single space", 0.8, start, end, status, time.Now(),
	)
}

func contentRow(id, cleaned string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(contentCols).AddRow(
		id, "https://example.com/post", "Post", "raw "+cleaned, cleaned,
		domain.DefaultLanguage, domain.ContentStatusAnalyzed, now, now,
	)
}

func TestService_Apply(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id = (.+) FOR UPDATE").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 7, domain.SuggestionStatusPending))
	mock.ExpectQuery("SELECT (.+) FROM contents WHERE id = (.+) FOR UPDATE").
		WithArgs("c-1").
		WillReturnRows(contentRow("c-1", "Hello  world"))
	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusApplied, "s-1", domain.SuggestionStatusPending, domain.SuggestionStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contents SET cleaned_text").
		WithArgs("Hello world", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "c-1", domain.AuditActionSuggestionApplied, "Applied suggestion s-1", "editor-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := svc.Apply(context.Background(), "s-1", "editor-1")

	require.NoError(t, err)
	assert.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_UnknownSuggestion(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id = (.+) FOR UPDATE").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	applied, err := svc.Apply(context.Background(), "missing", "editor-1")

	require.NoError(t, err)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_AlreadyApplied(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id = (.+) FOR UPDATE").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 7, domain.SuggestionStatusApplied))
	mock.ExpectRollback()

	applied, err := svc.Apply(context.Background(), "s-1", "editor-1")

	require.NoError(t, err)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_TextDrift(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id = (.+) FOR UPDATE").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 7, domain.SuggestionStatusPending))
	mock.ExpectQuery("SELECT (.+) FROM contents WHERE id = (.+) FOR UPDATE").
		WithArgs("c-1").
		WillReturnRows(contentRow("c-1", "Hello world"))
	mock.ExpectRollback()

	applied, err := svc.Apply(context.Background(), "s-1", "editor-1")

	require.NoError(t, err)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_OffsetsOutOfRange(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id = (.+) FOR UPDATE").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 100, domain.SuggestionStatusPending))
	mock.ExpectQuery("SELECT (.+) FROM contents WHERE id = (.+) FOR UPDATE").
		WithArgs("c-1").
		WillReturnRows(contentRow("c-1", "Hello  world"))
	mock.ExpectRollback()

	applied, err := svc.Apply(context.Background(), "s-1", "editor-1")

	require.NoError(t, err)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Apply_RacedTransition(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id = (.+) FOR UPDATE").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 7, domain.SuggestionStatusApproved))
	mock.ExpectQuery("SELECT (.+) FROM contents WHERE id = (.+) FOR UPDATE").
		WithArgs("c-1").
		WillReturnRows(contentRow("c-1", "Hello  world"))
	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusApplied, "s-1", domain.SuggestionStatusPending, domain.SuggestionStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	applied, err := svc.Apply(context.Background(), "s-1", "editor-1")

	require.NoError(t, err)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Approve(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusApproved, "s-1", domain.SuggestionStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Approve(context.Background(), "s-1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Approve_AlreadyApproved(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusApproved, "s-1", domain.SuggestionStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 7, domain.SuggestionStatusApproved))

	err := svc.Approve(context.Background(), "s-1")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Approve_NotFound(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusApproved, "missing", domain.SuggestionStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	err := svc.Approve(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Reject_FromApproved(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusRejected, "s-1", domain.SuggestionStatusPending, domain.SuggestionStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Reject(context.Background(), "s-1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Reject_AlreadyRejected(t *testing.T) {
	svc, mock := newReviewService(t)

	mock.ExpectExec("UPDATE suggestions SET status").
		WithArgs(domain.SuggestionStatusRejected, "s-1", domain.SuggestionStatusPending, domain.SuggestionStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM suggestions WHERE id").
		WithArgs("s-1").
		WillReturnRows(suggestionRow("s-1", "c-1", "  ", " ", 5, 7, domain.SuggestionStatusRejected))

	err := svc.Reject(context.Background(), "s-1")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpliceText(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		start, end  int
		replacement string
		want        string
		ok          bool
	}{
		{"replace middle", "Hello  world", 5, 7, " ", "Hello world", true},
		{"insert at end", "Hello", 5, 5, "!", "Hello!", true},
		{"delete range", "Hello world", 5, 11, "", "Hello", true},
		{"empty text insert", "", 0, 0, "x", "x", true},
		{"negative start", "Hello", -1, 2, "x", "", false},
		{"end beyond text", "Hello", 0, 6, "x", "", false},
		{"start after end", "Hello", 3, 2, "x", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := spliceText(tt.text, tt.start, tt.end, tt.replacement)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
