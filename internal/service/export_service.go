package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/pkg/export"
	"github.com/noah-isme/campus-id-api/pkg/storage"
)

type reportDataSource interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.IDRequest, int, error)
	Stats(ctx context.Context) (models.RequestStats, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	Sweep(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report tables and persists rendered files.
type ExportService struct {
	source    reportDataSource
	storage   fileStorage
	renderers map[models.ReportFormat]export.Renderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(source reportDataSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		source:  source,
		storage: store,
		renderers: map[models.ReportFormat]export.Renderer{
			models.ReportFormatCSV: export.CSV{},
			models.ReportFormatPDF: export.PDF{},
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Summary computes the status distribution and chart series behind the reports view.
func (s *ExportService) Summary(ctx context.Context) (*dto.ReportSummaryResponse, error) {
	stats, err := s.source.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ReportSummaryResponse{
		Total:        stats.Total,
		Distribution: Distribution(stats),
		Weekly:       Series(WeekdayLabels, stats.WeeklyData),
		Monthly:      Series(MonthLabels, stats.MonthlyData),
	}, nil
}

// Distribution splits the total across tracked statuses. Percentages are rounded to one
// decimal place and are zero when there are no requests.
func Distribution(stats models.RequestStats) []dto.StatusShare {
	counts := []struct {
		status models.RequestStatus
		count  int
	}{
		{models.StatusPending, stats.Pending},
		{models.StatusApproved, stats.Approved},
		{models.StatusProcessing, stats.Processing},
		{models.StatusReady, stats.Ready},
		{models.StatusRejected, stats.Rejected},
	}
	out := make([]dto.StatusShare, 0, len(counts))
	for _, c := range counts {
		share := dto.StatusShare{Status: c.status, Label: c.status.Info().StatusText, Count: c.count}
		if stats.Total > 0 {
			share.Percent = float64(int(float64(c.count)*1000/float64(stats.Total)+0.5)) / 10
		}
		out = append(out, share)
	}
	return out
}

// Generate renders the job's table in its format, stores it and signs a download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}
	table, err := s.buildTable(ctx, job.Type)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(table)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", job.Type, s.now().UTC().Format("20060102T150405"), job.ID, renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}
	token, grant, err := s.signer.Sign(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("report rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    grant.ExpiresAt,
	}, nil
}

// ContentType returns the MIME type for format.
func (s *ExportService) ContentType(format models.ReportFormat) string {
	if r, ok := s.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// ParseToken validates a download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Grant, error) {
	return s.signer.Verify(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Sweep removes stored exports older than ttl.
func (s *ExportService) Sweep(ttl time.Duration) ([]string, error) {
	return s.storage.Sweep(ttl)
}

func (s *ExportService) buildTable(ctx context.Context, kind models.ReportType) (export.Table, error) {
	generated := s.now().UTC()
	switch kind {
	case models.ReportTypeRequests:
		records, _, err := s.source.List(ctx, models.RequestFilter{})
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{
			Title:       "ID Card Requests",
			Columns:     []string{"Request ID", "Student ID", "Student Name", "Department", "Program", "Request Date", "Status", "Payment"},
			GeneratedAt: generated,
		}
		for _, rec := range records {
			table.AddRow(rec.ID, rec.StudentID, rec.StudentName, rec.Department, rec.Program, rec.RequestDate, rec.Status.StatusText, string(rec.PaymentStatus))
		}
		return table, nil
	case models.ReportTypeStatusSummary:
		stats, err := s.source.Stats(ctx)
		if err != nil {
			return export.Table{}, err
		}
		table := export.Table{
			Title:       "Request Status Summary",
			Columns:     []string{"Status", "Count", "Percent"},
			GeneratedAt: generated,
		}
		for _, share := range Distribution(stats) {
			table.AddRow(share.Label, strconv.Itoa(share.Count), strconv.FormatFloat(share.Percent, 'f', 1, 64)+"%")
		}
		table.AddRow("Total", strconv.Itoa(stats.Total), "")
		return table, nil
	default:
		return export.Table{}, fmt.Errorf("unsupported report type %s", kind)
	}
}
