package dto

import (
	"time"

	"github.com/noah-isme/campus-id-api/internal/models"
)

// ReportRequest asks for an export to be generated.
type ReportRequest struct {
	Type   models.ReportType   `json:"type" validate:"required,oneof=requests status_summary"`
	Format models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportJobResponse acknowledges a queued job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse reports job progress and, once finished, the download link.
type ReportStatusResponse struct {
	ID         string              `json:"id"`
	Type       models.ReportType   `json:"type"`
	Format     models.ReportFormat `json:"format"`
	Status     models.ReportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	ResultURL  *string             `json:"resultUrl,omitempty"`
	Error      *string             `json:"error,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
}

// StatusShare is one slice of the status distribution.
type StatusShare struct {
	Status  models.RequestStatus `json:"status"`
	Label   string               `json:"label"`
	Count   int                  `json:"count"`
	Percent float64              `json:"percent"`
}

// ReportSummaryResponse is the data behind the admin reports view.
type ReportSummaryResponse struct {
	Total        int           `json:"total"`
	Distribution []StatusShare `json:"distribution"`
	Weekly       []SeriesPoint `json:"weekly"`
	Monthly      []SeriesPoint `json:"monthly"`
}
