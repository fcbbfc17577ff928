package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/repository"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/jobs"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	return nil, errors.New("render failed")
}

type reportFixture struct {
	repo     *repository.ReportJobRepository
	queue    *recordingQueue
	exporter *ExportService
	service  *ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	repo := repository.NewReportJobRepository()
	queue := &recordingQueue{}
	exporter := newTestExportService(t)
	svc := NewReportService(repo, queue, exporter, nil, nil, zap.NewNop(), ReportServiceConfig{})
	return &reportFixture{repo: repo, queue: queue, exporter: exporter, service: svc}
}

func TestReportCreateJobQueues(t *testing.T) {
	f := newReportFixture(t)

	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{Type: models.ReportTypeRequests, Format: models.ReportFormatCSV}, "1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, resp.ID, f.queue.jobs[0].ID)
	assert.Equal(t, ReportJobKind, f.queue.jobs[0].Kind)

	stored, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", stored.CreatedBy)
}

func TestReportCreateJobValidates(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.CreateJob(context.Background(), dto.ReportRequest{Type: models.ReportTypeRequests, Format: "xlsx"}, "1")
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "format")
	assert.Empty(t, f.queue.jobs)
}

func TestReportCreateJobEnqueueFailure(t *testing.T) {
	f := newReportFixture(t)
	f.queue.err = errors.New("queue full")

	_, err := f.service.CreateJob(context.Background(), dto.ReportRequest{Type: models.ReportTypeRequests, Format: models.ReportFormatCSV}, "1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
}

func TestReportWorkerFinishesAndDownloads(t *testing.T) {
	f := newReportFixture(t)
	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{Type: models.ReportTypeStatusSummary, Format: models.ReportFormatCSV}, "1")
	require.NoError(t, err)

	worker := NewReportWorker(f.repo, f.exporter, nil, 2, 0, zap.NewNop())
	require.NoError(t, worker.Handle(context.Background(), f.queue.jobs[0]))

	status, err := f.service.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.Nil(t, status.Error)
	require.NotNil(t, status.FinishedAt)

	token := (*status.ResultURL)[strings.LastIndex(*status.ResultURL, "/")+1:]
	download, err := f.service.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasPrefix(download.Filename, "status_summary_"))

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Total,120,")
}

func TestReportWorkerRetriesThenFails(t *testing.T) {
	f := newReportFixture(t)
	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{Type: models.ReportTypeRequests, Format: models.ReportFormatCSV}, "1")
	require.NoError(t, err)

	worker := NewReportWorker(f.repo, failingGenerator{}, nil, 1, 0, zap.NewNop())

	job := f.queue.jobs[0]
	require.Error(t, worker.Handle(context.Background(), job))
	status, err := f.service.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, status.Status)
	assert.Equal(t, 0, status.Progress)

	job.Attempt = 1
	require.Error(t, worker.Handle(context.Background(), job))
	status, err = f.service.GetStatus(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, status.Status)
	require.NotNil(t, status.Error)
	assert.Equal(t, "render failed", *status.Error)
}

func TestReportGetStatusUnknown(t *testing.T) {
	_, err := newReportFixture(t).service.GetStatus(context.Background(), "missing")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestReportResolveDownloadRejects(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.ResolveDownload(context.Background(), "garbage")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))

	// a validly signed token for a job that never finished
	resp, err := f.service.CreateJob(context.Background(), dto.ReportRequest{Type: models.ReportTypeRequests, Format: models.ReportFormatCSV}, "1")
	require.NoError(t, err)
	job, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	result, err := f.exporter.Generate(context.Background(), job)
	require.NoError(t, err)

	_, err = f.service.ResolveDownload(context.Background(), result.Token)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrForbidden.Code))
}

func TestReportSummary(t *testing.T) {
	summary, err := newReportFixture(t).service.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, summary.Total)
}
