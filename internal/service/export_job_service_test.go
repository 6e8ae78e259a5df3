package service

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	"github.com/noah-isme/trendx-analytics-api/internal/repository"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
	"github.com/noah-isme/trendx-analytics-api/pkg/jobs"
)

type dispatcherStub struct {
	jobs []jobs.Job[models.ExportParams]
	err  error
}

func (d *dispatcherStub) Enqueue(job jobs.Job[models.ExportParams]) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type exportJobFixture struct {
	repo       *repository.ExportJobRepository
	dispatcher *dispatcherStub
	exporter   *ExportService
	svc        *ExportJobService
	worker     *ExportWorker
}

func newExportJobFixture(t *testing.T) *exportJobFixture {
	t.Helper()
	repo := repository.NewExportJobRepository()
	dispatcher := &dispatcherStub{}
	exporter := newTestExportService(t, &tableSourceStub{})
	svc := NewExportJobService(repo, dispatcher, exporter, nil, ExportJobConfig{ResultTTL: time.Hour}, zap.NewNop())
	return &exportJobFixture{
		repo:       repo,
		dispatcher: dispatcher,
		exporter:   exporter,
		svc:        svc,
		worker:     NewExportWorker(repo, exporter, zap.NewNop()),
	}
}

var (
	curator = &models.JWTClaims{UserID: "curator-1", Role: models.RoleCurator}
	viewer  = &models.JWTClaims{UserID: "viewer-1", Role: models.RoleViewer}
)

func TestExportJobServiceCreateJobValidation(t *testing.T) {
	f := newExportJobFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateJob(ctx, models.ExportParams{Kind: models.ExportKindRanking, Format: models.ExportFormatCSV}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = f.svc.CreateJob(ctx, models.ExportParams{Kind: "grades", Format: models.ExportFormatCSV}, curator)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.CreateJob(ctx, models.ExportParams{Kind: models.ExportKindVideos, Format: models.ExportFormatCSV}, curator)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.CreateJob(ctx, models.ExportParams{Kind: models.ExportKindManual, Format: models.ExportFormatCSV}, viewer)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.CreateJob(ctx, models.ExportParams{
		Kind: models.ExportKindRanking, Format: models.ExportFormatCSV, CompetitionID: int64Ptr(3), Metric: "followers",
	}, curator)
	assert.ErrorIs(t, err, appErrors.ErrUnknownMetric)

	assert.Empty(t, f.dispatcher.jobs)
}

func TestExportJobServiceCreateJobPinsPreset(t *testing.T) {
	f := newExportJobFixture(t)
	now := time.Unix(1704672000, 0)
	f.svc.now = func() time.Time { return now }

	resp, err := f.svc.CreateJob(context.Background(), models.ExportParams{
		Kind:          models.ExportKindRanking,
		Format:        models.ExportFormatPDF,
		CompetitionID: int64Ptr(3),
		Preset:        "last_week",
	}, viewer)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)

	require.Len(t, f.dispatcher.jobs, 1)
	payload := f.dispatcher.jobs[0].Payload
	assert.Equal(t, resp.ID, f.dispatcher.jobs[0].ID)
	assert.Empty(t, payload.Preset)
	assert.Equal(t, strconv.FormatInt(now.Unix()-7*24*3600, 10), payload.Start)
	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), payload.End)

	stored, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "viewer-1", stored.CreatedBy)
}

func TestExportJobServiceQueueFullMarksFailed(t *testing.T) {
	f := newExportJobFixture(t)
	f.dispatcher.err = jobs.ErrQueueFull

	_, err := f.svc.CreateJob(context.Background(), models.ExportParams{
		Kind: models.ExportKindManual, Format: models.ExportFormatCSV,
	}, curator)
	require.Error(t, err)
	assert.Equal(t, "EXPORT_QUEUE_FULL", appErrors.FromError(err).Code)

	failed, err := f.repo.ListFinishedBefore(context.Background(), time.Now().Add(time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, models.ExportStatusFailed, failed[0].Status)
}

func TestExportJobServiceGetStatusOwnership(t *testing.T) {
	f := newExportJobFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateJob(ctx, models.ExportParams{
		Kind: models.ExportKindVideos, Format: models.ExportFormatCSV, CompetitionID: int64Ptr(3),
	}, curator)
	require.NoError(t, err)

	_, err = f.svc.GetStatus(ctx, resp.ID, viewer)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	status, err := f.svc.GetStatus(ctx, resp.ID, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, status.ID)

	_, err = f.svc.GetStatus(ctx, "missing", curator)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportWorkerLifecycleAndDownload(t *testing.T) {
	f := newExportJobFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateJob(ctx, models.ExportParams{
		Kind: models.ExportKindVideos, Format: models.ExportFormatCSV, CompetitionID: int64Ptr(3),
	}, curator)
	require.NoError(t, err)
	require.Len(t, f.dispatcher.jobs, 1)

	require.NoError(t, f.worker.Handle(ctx, f.dispatcher.jobs[0]))

	status, err := f.svc.GetStatus(ctx, resp.ID, curator)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)
	assert.Nil(t, status.Error)

	token := extractToken(*status.ResultURL)
	download, err := f.svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ExportFormatCSV, download.Format)
	assert.Contains(t, download.Filename, "videos_3_")
	payload, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Bia")

	_, err = f.svc.ResolveDownload(ctx, token+"0")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestExportWorkerFailureRequeues(t *testing.T) {
	repo := repository.NewExportJobRepository()
	exporter := newTestExportService(t, &tableSourceStub{err: appErrors.ErrRepositoryUnavailable})
	svc := NewExportJobService(repo, &dispatcherStub{}, exporter, nil, ExportJobConfig{}, zap.NewNop())
	worker := NewExportWorker(repo, exporter, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.CreateJob(ctx, models.ExportParams{Kind: models.ExportKindManual, Format: models.ExportFormatCSV}, curator)
	require.NoError(t, err)

	job := jobs.Job[models.ExportParams]{ID: resp.ID, Attempt: 1}
	err = worker.Handle(ctx, job)
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, stored.Status)
	require.NotNil(t, stored.ErrorMessage)

	svc.HandleFailure(ctx, job, appErrors.ErrRepositoryUnavailable)
	stored, err = repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
	assert.NotNil(t, stored.FinishedAt)
}

func TestExportJobServiceCleanupExpired(t *testing.T) {
	f := newExportJobFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateJob(ctx, models.ExportParams{
		Kind: models.ExportKindVideos, Format: models.ExportFormatCSV, CompetitionID: int64Ptr(3),
	}, curator)
	require.NoError(t, err)
	require.NoError(t, f.worker.Handle(ctx, f.dispatcher.jobs[0]))

	stored, err := f.repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	_, name, _, err := f.exporter.ParseToken(extractToken(*stored.ResultURL), false)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	f.svc.cleanupExpired(ctx)

	_, err = f.repo.GetByID(ctx, resp.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = f.exporter.Open(name)
	assert.Error(t, err)
}
