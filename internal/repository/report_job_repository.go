package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/campus-id-api/internal/models"
)

// ReportJobRepository keeps report job metadata in memory for the life of the process.
type ReportJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*models.ReportJob
}

// NewReportJobRepository constructs an empty job store.
func NewReportJobRepository() *ReportJobRepository {
	return &ReportJobRepository{jobs: make(map[string]*models.ReportJob)}
}

// Create stores a new job.
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("create report job: missing id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("create report job %s: duplicate id", job.ID)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	stored := *job
	r.jobs[job.ID] = &stored
	return nil
}

// GetByID returns a copy of the job.
func (r *ReportJobRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get report job %s: %w", id, ErrNotFound)
	}
	cp := *job
	return &cp, nil
}

// Update applies the non-nil fields of params.
func (r *ReportJobRepository) Update(ctx context.Context, id string, params models.ReportJobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("update report job %s: %w", id, ErrNotFound)
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		msg := *params.ErrorMessage
		job.ErrorMessage = &msg
	}
	if params.FinishedAt != nil {
		ts := *params.FinishedAt
		job.FinishedAt = &ts
	}
	return nil
}
