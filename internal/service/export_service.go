package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/trendx-analytics-api/internal/analytics"
	"github.com/noah-isme/trendx-analytics-api/internal/dto"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
	"github.com/noah-isme/trendx-analytics-api/pkg/export"
	"github.com/noah-isme/trendx-analytics-api/pkg/storage"
)

// tableSource supplies the datasets an export can render.
type tableSource interface {
	Ranking(ctx context.Context, req dto.RankingRequest) (*models.Ranking, bool, error)
	Videos(ctx context.Context, req dto.VideoListRequest) (*models.VideoListing, bool, error)
	ManualVideos(ctx context.Context, req dto.ManualVideoRequest) (*models.ManualListing, bool, error)
}

type snapshotStorage interface {
	Save(name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tableWriter interface {
	Write(w io.Writer, table export.Table) error
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures a stored snapshot.
type ExportResult struct {
	Name      string
	Token     string
	URL       string
	Format    models.ExportFormat
	Size      int64
	ExpiresAt time.Time
}

// ExportService renders rankings and video listings as CSV or PDF, either
// streamed to a response or stored as a snapshot behind a signed URL.
type ExportService struct {
	source  tableSource
	storage snapshotStorage
	csv     tableWriter
	pdf     tableWriter
	signer  *storage.SignedURLSigner
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(source tableSource, store snapshotStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger, csv, pdf tableWriter) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(analytics.NewNumberFormatter(""))
	}
	return &ExportService{
		source:  source,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Build resolves params into a table. Rows are computed eagerly so errors
// surface before anything is written.
func (s *ExportService) Build(ctx context.Context, params models.ExportParams) (export.Table, error) {
	switch params.Kind {
	case models.ExportKindRanking:
		if params.CompetitionID == nil {
			return export.Table{}, appErrors.Clone(appErrors.ErrValidation, "competition_id is required for ranking exports")
		}
		ranking, _, err := s.source.Ranking(ctx, dto.RankingRequest{
			CompetitionID: *params.CompetitionID,
			Metric:        string(params.Metric),
			Limit:         params.Limit,
			MinViews:      params.MinViews,
			WindowParams:  dto.WindowParams{Preset: params.Preset, Start: params.Start, End: params.End},
		})
		if err != nil {
			return export.Table{}, err
		}
		table := analytics.RankingRows(ranking.Entries)
		table.Title = fmt.Sprintf("Ranking - competition %d by %s", ranking.CompetitionID, ranking.Metric)
		return table, nil

	case models.ExportKindVideos:
		if params.CompetitionID == nil {
			return export.Table{}, appErrors.Clone(appErrors.ErrValidation, "competition_id is required for video exports")
		}
		listing, _, err := s.source.Videos(ctx, dto.VideoListRequest{
			CompetitionID: *params.CompetitionID,
			Platform:      string(params.Platform),
			LinkOnly:      params.LinkOnly,
			ViralOnly:     params.ViralOnly,
		})
		if err != nil {
			return export.Table{}, err
		}
		table := analytics.ToFlatRows(listing.Videos, analytics.VideoColumns)
		table.Title = fmt.Sprintf("Videos - competition %d", *params.CompetitionID)
		return table, nil

	case models.ExportKindManual:
		listing, _, err := s.source.ManualVideos(ctx, dto.ManualVideoRequest{
			CompetitionID: params.CompetitionID,
			Reason:        params.Reason,
		})
		if err != nil {
			return export.Table{}, err
		}
		table := analytics.ToFlatRows(listing.Videos, analytics.ManualVideoColumns)
		table.Title = "Manual videos"
		return table, nil

	default:
		return export.Table{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %q", params.Kind))
	}
}

// Write renders table to w in format.
func (s *ExportService) Write(w io.Writer, kind models.ExportKind, format models.ExportFormat, table export.Table) error {
	var writer tableWriter
	switch format {
	case models.ExportFormatCSV, "":
		writer, format = s.csv, models.ExportFormatCSV
	case models.ExportFormatPDF:
		writer = s.pdf
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err := writer.Write(w, table); err != nil {
		return fmt.Errorf("render %s export: %w", format, err)
	}
	s.metrics.RecordExport(kind, format)
	return nil
}

// Generate renders the job's dataset and stores it as a signed snapshot.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	table, err := s.Build(ctx, job.Params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Write(&buf, job.Params.Kind, job.Params.Format, table); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s/%s/%s", job.Params.Kind, job.ID, Filename(job.Params, time.Now()))
	size, err := s.storage.Save(name, &buf)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, name)
	if err != nil {
		_ = s.storage.Delete(name)
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("export snapshot stored", zap.String("job_id", job.ID), zap.String("name", name), zap.Int64("bytes", size))
	return &ExportResult{
		Name:      name,
		Token:     token,
		URL:       fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:    job.Params.Format,
		Size:      size,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, name string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(name string) (*os.File, error) {
	return s.storage.Open(name)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(name string) error {
	return s.storage.Delete(name)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// ContentType maps an export format to its MIME type.
func ContentType(format models.ExportFormat) string {
	if format == models.ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds the download name of an export.
func Filename(params models.ExportParams, now time.Time) string {
	scope := "all"
	if params.CompetitionID != nil {
		scope = strconv.FormatInt(*params.CompetitionID, 10)
	}
	parts := []string{string(params.Kind), scope}
	if params.Kind == models.ExportKindRanking && params.Metric != "" {
		parts = append(parts, string(params.Metric))
	}
	format := params.Format
	if format == "" {
		format = models.ExportFormatCSV
	}
	parts = append(parts, now.UTC().Format("20060102_150405"))
	return sanitizeFilename(strings.Join(parts, "_")) + "." + string(format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "export"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
