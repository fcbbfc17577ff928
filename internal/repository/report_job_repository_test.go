package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-id-api/internal/models"
)

func TestReportJobRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewReportJobRepository()

	job := &models.ReportJob{ID: "job-1", Type: models.ReportTypeRequests, Format: models.ReportFormatCSV, Status: models.ReportStatusQueued, CreatedBy: "1"}
	require.NoError(t, repo.Create(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())
	assert.Error(t, repo.Create(ctx, job))
	assert.Error(t, repo.Create(ctx, &models.ReportJob{}))

	got, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	got.Status = models.ReportStatusFailed
	again, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, again.Status)

	status := models.ReportStatusFinished
	progress := 100
	url := "/api/v1/export/token"
	finished := time.Now().UTC()
	require.NoError(t, repo.Update(ctx, "job-1", models.ReportJobUpdate{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &url,
		FinishedAt: &finished,
	}))

	got, err = repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.ResultURL)
	assert.Equal(t, url, *got.ResultURL)
	assert.Nil(t, got.ErrorMessage)
}

func TestReportJobRepositoryNotFound(t *testing.T) {
	repo := NewReportJobRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	err = repo.Update(context.Background(), "missing", models.ReportJobUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationRepositoryLatest(t *testing.T) {
	repo := NewNotificationRepository(time.Now())

	items, err := repo.Latest(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	all, err := repo.Latest(context.Background(), 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 3)
}
