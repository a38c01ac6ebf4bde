package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/proofcrawl/internal/domain"
)

func TestJobStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    domain.JobStatus
		terminal  bool
		canCancel bool
	}{
		{domain.JobStatusPending, false, true},
		{domain.JobStatusRunning, false, true},
		{domain.JobStatusCompleted, true, false},
		{domain.JobStatusFailed, true, false},
		{domain.JobStatusCancelled, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.canCancel, tt.status.CanCancel())
		})
	}
}

func TestSuggestionStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status     domain.SuggestionStatus
		canApprove bool
		canReject  bool
		canApply   bool
	}{
		{domain.SuggestionStatusPending, true, true, true},
		{domain.SuggestionStatusApproved, false, true, true},
		{domain.SuggestionStatusRejected, false, false, false},
		{domain.SuggestionStatusApplied, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.canApprove, tt.status.CanApprove())
			assert.Equal(t, tt.canReject, tt.status.CanReject())
			assert.Equal(t, tt.canApply, tt.status.CanApply())
		})
	}
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	job := domain.NewJob("https://example.com", 3, 100)

	require.NotEmpty(t, job.ID)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxDepth)
	assert.Equal(t, 100, job.TotalPages)
	assert.Zero(t, job.PagesCrawled)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestNewContent(t *testing.T) {
	t.Parallel()

	content := domain.NewContent("https://example.com/a", "A", "raw text", "clean text")

	require.NotEmpty(t, content.ID)
	assert.Equal(t, domain.ContentStatusPending, content.Status)
	assert.Equal(t, domain.DefaultLanguage, content.Language)
	assert.Equal(t, "raw text", content.OriginalText)
	assert.Equal(t, "clean text", content.CleanedText)
}

func TestAuditLogWithUser(t *testing.T) {
	t.Parallel()

	entry := domain.NewAuditLog("content-1", domain.AuditActionCrawled, "Successfully crawled https://example.com")
	require.NotNil(t, entry.ContentID)
	assert.Equal(t, "content-1", *entry.ContentID)
	assert.Nil(t, entry.UserID)

	entry = entry.WithUser("reviewer-7")
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "reviewer-7", *entry.UserID)

	entry = domain.NewAuditLog("content-1", domain.AuditActionSuggestionApplied, "Applied suggestion x").WithUser("")
	assert.Nil(t, entry.UserID)
}
