package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

// UpdateExportJobParams describes mutable job fields. Nil fields are left untouched.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// ExportJobRepository keeps export snapshot jobs in memory. Jobs live as long
// as their stored files; both are dropped by the cleanup routine.
type ExportJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.ExportJob
}

// NewExportJobRepository instantiates an empty job store.
func NewExportJobRepository() *ExportJobRepository {
	return &ExportJobRepository{jobs: make(map[string]models.ExportJob)}
}

// Create stores a new job. The id must be unique.
func (r *ExportJobRepository) Create(_ context.Context, job *models.ExportJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("export job id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("export job %s already exists", job.ID)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.jobs[job.ID] = cloneJob(*job)
	return nil
}

// GetByID returns a copy of the job.
func (r *ExportJobRepository) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("export job %s not found", id))
	}
	copied := cloneJob(job)
	return &copied, nil
}

// Update applies params to the job.
func (r *ExportJobRepository) Update(_ context.Context, id string, params UpdateExportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("export job %s not found", id))
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			msg := *params.ErrorMessage
			job.ErrorMessage = &msg
		}
	}
	if params.FinishedAt != nil {
		finished := *params.FinishedAt
		job.FinishedAt = &finished
	}
	r.jobs[id] = job
	return nil
}

// ListFinishedBefore returns finished or failed jobs completed before cutoff, oldest first.
func (r *ExportJobRepository) ListFinishedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.ExportJob, 0)
	for _, job := range r.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			result = append(result, cloneJob(job))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FinishedAt.Before(*result[j].FinishedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Delete forgets a job.
func (r *ExportJobRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

func cloneJob(job models.ExportJob) models.ExportJob {
	if job.Params.CompetitionID != nil {
		id := *job.Params.CompetitionID
		job.Params.CompetitionID = &id
	}
	if job.ResultURL != nil {
		url := *job.ResultURL
		job.ResultURL = &url
	}
	if job.ErrorMessage != nil {
		msg := *job.ErrorMessage
		job.ErrorMessage = &msg
	}
	if job.FinishedAt != nil {
		finished := *job.FinishedAt
		job.FinishedAt = &finished
	}
	return job
}
