package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/trendx-analytics-api/internal/analytics"
	"github.com/noah-isme/trendx-analytics-api/internal/dto"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
	"github.com/noah-isme/trendx-analytics-api/internal/repository"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
	"github.com/noah-isme/trendx-analytics-api/pkg/jobs"
	"github.com/noah-isme/trendx-analytics-api/pkg/storage"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job[models.ExportParams]) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ExportJobConfig governs snapshot retention.
type ExportJobConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportJobService manages the lifecycle of stored export snapshots.
type ExportJobService struct {
	repo      exportJobStore
	queue     jobDispatcher
	exporter  *ExportService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobConfig
	now       func() time.Time
}

// NewExportJobService constructs the export job service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, exporter *ExportService, validate *validator.Validate, cfg ExportJobConfig, logger *zap.Logger) *ExportJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportJobService{
		repo:      repo,
		queue:     queue,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CreateJob validates the request, records the job and enqueues rendering.
// Relative presets are pinned to concrete bounds so the snapshot reflects the
// moment it was requested.
func (s *ExportJobService) CreateJob(ctx context.Context, params models.ExportParams, actor *models.JWTClaims) (*dto.ExportJobResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	params.Platform = models.NormalizePlatform(string(params.Platform))
	if err := s.validator.Struct(params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	if params.Kind != models.ExportKindManual && params.CompetitionID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "competition_id is required")
	}
	if params.Kind == models.ExportKindManual && !actor.Role.CanCurate() {
		return nil, appErrors.ErrForbidden
	}
	if params.Kind == models.ExportKindRanking {
		if _, err := analytics.ParseMetric(string(params.Metric)); err != nil {
			return nil, err
		}
		if err := pinPreset(&params, s.now()); err != nil {
			return nil, err
		}
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Params:    params,
		Status:    models.ExportStatusQueued,
		CreatedBy: actor.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job[models.ExportParams]{ID: job.ID, Payload: job.Params}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, "EXPORT_QUEUE_FULL", http.StatusServiceUnavailable, "export queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return toJobResponse(job), nil
}

// GetStatus exposes job metadata. Viewers only see their own jobs.
func (s *ExportJobService) GetStatus(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ExportJobResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanCurate() && job.CreatedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return toJobResponse(job), nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, name, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  path.Base(name),
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// HandleFailure marks a job failed once the queue gives up on it.
func (s *ExportJobService) HandleFailure(ctx context.Context, job jobs.Job[models.ExportParams], err error) {
	s.logger.Error("export job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
	s.markFailed(ctx, job.ID, err.Error())
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 0)
	if err != nil {
		s.logger.Warn("cleanup list failed", zap.Error(err))
		return
	}
	for _, job := range expired {
		if job.ResultURL != nil {
			if _, name, _, err := s.exporter.ParseToken(extractToken(*job.ResultURL), true); err == nil {
				if err := s.exporter.Delete(name); err != nil {
					s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
		}
		_ = s.repo.Delete(ctx, job.ID)
	}
	removed, err := s.exporter.Cleanup(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
		return
	}
	if len(expired) > 0 || len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("jobs", len(expired)), zap.Int("files", len(removed)))
	}
}

func (s *ExportJobService) markFailed(ctx context.Context, id, msg string) {
	failed := models.ExportStatusFailed
	now := s.now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark job failed", zap.String("job_id", id), zap.Error(err))
	}
}

// pinPreset replaces a relative preset with the bounds it resolves to now.
func pinPreset(params *models.ExportParams, now time.Time) error {
	if params.Start != "" || params.End != "" || params.Preset == "" {
		return nil
	}
	window, err := analytics.ResolvePreset(params.Preset, now)
	if err != nil {
		return err
	}
	params.Preset = ""
	if window != nil {
		params.Start = strconv.FormatInt(window.Start, 10)
		params.End = strconv.FormatInt(window.End, 10)
	}
	return nil
}

func toJobResponse(job *models.ExportJob) *dto.ExportJobResponse {
	return &dto.ExportJobResponse{
		ID:        job.ID,
		Kind:      job.Params.Kind,
		Format:    job.Params.Format,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	repo     exportJobStore
	exporter exportGenerator
	logger   *zap.Logger
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, exporter exportGenerator, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, exporter: exporter, logger: logger}
}

// Handle renders one snapshot. Errors are returned to the queue for retry.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job[models.ExportParams]) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		queued := models.ExportStatusQueued
		msg := err.Error()
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &queued, ErrorMessage: &msg}); updateErr != nil {
			w.logger.Warn("failed to requeue job", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ExportStatusFinished
	now := time.Now().UTC()
	url := result.URL
	cleared := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		ResultURL:    &url,
		ErrorMessage: &cleared,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}
