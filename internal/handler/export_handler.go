package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trendx-analytics-api/internal/dto"
	"github.com/noah-isme/trendx-analytics-api/internal/middleware"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
	"github.com/noah-isme/trendx-analytics-api/internal/service"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
	"github.com/noah-isme/trendx-analytics-api/pkg/export"
	"github.com/noah-isme/trendx-analytics-api/pkg/response"
)

type exportRenderer interface {
	Build(ctx context.Context, params models.ExportParams) (export.Table, error)
	Write(w io.Writer, kind models.ExportKind, format models.ExportFormat, table export.Table) error
}

type exportJobService interface {
	CreateJob(ctx context.Context, params models.ExportParams, actor *models.JWTClaims) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ExportJobResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler streams CSV/PDF downloads and manages stored snapshots.
type ExportHandler struct {
	renderer exportRenderer
	jobs     exportJobService
}

// NewExportHandler constructs the export handler.
func NewExportHandler(renderer exportRenderer, jobs exportJobService) *ExportHandler {
	return &ExportHandler{renderer: renderer, jobs: jobs}
}

// RankingExport godoc
// @Summary Download a leaderboard
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param id path int true "Competition ID"
// @Param format query string false "csv or pdf"
// @Param metric query string false "Sort metric"
// @Success 200 {file} file
// @Router /competitions/{id}/ranking/export [get]
func (h *ExportHandler) RankingExport(c *gin.Context) {
	req, err := bindRanking(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := bindFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, models.ExportParams{
		Kind:          models.ExportKindRanking,
		Format:        format,
		CompetitionID: &req.CompetitionID,
		Metric:        models.RankingMetric(req.Metric),
		Limit:         req.Limit,
		Preset:        req.Preset,
		Start:         req.Start,
		End:           req.End,
		MinViews:      req.MinViews,
	})
}

// VideoExport godoc
// @Summary Download a competition video listing
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param id path int true "Competition ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /competitions/{id}/videos/export [get]
func (h *ExportHandler) VideoExport(c *gin.Context) {
	req, err := bindVideos(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := bindFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, models.ExportParams{
		Kind:          models.ExportKindVideos,
		Format:        format,
		CompetitionID: &req.CompetitionID,
		Platform:      models.NormalizePlatform(req.Platform),
		LinkOnly:      req.LinkOnly,
		ViralOnly:     req.ViralOnly,
	})
}

// ManualExport godoc
// @Summary Download curator-added videos
// @Tags Exports
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param competition_id query int false "Competition ID"
// @Param reason query string false "Manual reason"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /manual-videos/export [get]
func (h *ExportHandler) ManualExport(c *gin.Context) {
	var req dto.ManualVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	format, err := bindFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, models.ExportParams{
		Kind:          models.ExportKindManual,
		Format:        format,
		CompetitionID: req.CompetitionID,
		Reason:        req.Reason,
	})
}

// CreateJob godoc
// @Summary Queue a stored export snapshot
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ExportParams true "Snapshot parameters"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) CreateJob(c *gin.Context) {
	var params models.ExportParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload"))
		return
	}
	job, err := h.jobs.CreateJob(c.Request.Context(), params, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// JobStatus godoc
// @Summary Export snapshot status
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) JobStatus(c *gin.Context) {
	job, err := h.jobs.GetStatus(c.Request.Context(), c.Param("id"), middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a stored export snapshot
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.jobs.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	size := int64(-1)
	if info, err := download.File.Stat(); err == nil {
		size = info.Size()
	}
	response.Attachment(c, service.ContentType(download.Format), download.Filename)
	c.Header("Expires", download.ExpiresAt.UTC().Format(http.TimeFormat))
	c.DataFromReader(http.StatusOK, size, service.ContentType(download.Format), download.File, nil)
}

// stream builds the table before any byte is written so failures still get
// a JSON error envelope.
func (h *ExportHandler) stream(c *gin.Context, params models.ExportParams) {
	table, err := h.renderer.Build(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, service.ContentType(params.Format), service.Filename(params, time.Now()))
	c.Status(http.StatusOK)
	if err := h.renderer.Write(c.Writer, params.Kind, params.Format, table); err != nil {
		_ = c.Error(err)
	}
}

func bindFormat(c *gin.Context) (models.ExportFormat, error) {
	var params dto.ExportFormatParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return "", bindError(err)
	}
	switch format := models.ExportFormat(strings.ToLower(strings.TrimSpace(params.Format))); format {
	case "":
		return models.ExportFormatCSV, nil
	case models.ExportFormatCSV, models.ExportFormatPDF:
		return format, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
