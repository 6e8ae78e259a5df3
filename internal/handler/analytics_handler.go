package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trendx-analytics-api/internal/analytics"
	"github.com/noah-isme/trendx-analytics-api/internal/dto"
	"github.com/noah-isme/trendx-analytics-api/internal/middleware"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
	"github.com/noah-isme/trendx-analytics-api/pkg/response"
)

type analyticsService interface {
	Competitions(ctx context.Context) ([]models.Competition, bool, error)
	Overview(ctx context.Context, competitionID int64) (*models.CompetitionOverview, bool, error)
	Ranking(ctx context.Context, req dto.RankingRequest) (*models.Ranking, bool, error)
	Videos(ctx context.Context, req dto.VideoListRequest) (*models.VideoListing, bool, error)
	ManualVideos(ctx context.Context, req dto.ManualVideoRequest) (*models.ManualListing, bool, error)
	DailySeries(ctx context.Context, req dto.SeriesRequest) (*models.DailySeries, bool, error)
	WeekdaySeries(ctx context.Context, req dto.SeriesRequest) (*models.WeekdaySeries, bool, error)
	GlobalSummary(ctx context.Context) (*models.GlobalSummary, bool, error)
	GlobalTop(ctx context.Context, req dto.GlobalTopRequest) (*models.GlobalTop, bool, error)
	Invalidate(ctx context.Context, req dto.InvalidateRequest) (int, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler exposes competition rankings, listings and rollups.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Competitions godoc
// @Summary List competitions
// @Tags Competitions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /competitions [get]
func (h *AnalyticsHandler) Competitions(c *gin.Context) {
	competitions, hit, err := h.analytics.Competitions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, competitions, hit, nil)
}

// Overview godoc
// @Summary Competition overview cards
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /competitions/{id}/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	id, err := competitionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	overview, hit, err := h.analytics.Overview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, overview, hit, nil)
}

// Ranking godoc
// @Summary Creator leaderboard
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Param metric query string false "views, likes, engagement or videos"
// @Param limit query int false "Maximum entries"
// @Param preset query string false "all, last_week, last_month or last_3_months"
// @Param start query string false "Unix seconds or YYYY-MM-DD"
// @Param end query string false "Unix seconds or YYYY-MM-DD"
// @Param min_views query int false "Minimum creator views"
// @Param page query int false "Page"
// @Param page_size query int false "25, 50, 100 or 200"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /competitions/{id}/ranking [get]
func (h *AnalyticsHandler) Ranking(c *gin.Context) {
	req, err := bindRanking(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ranking, hit, err := h.analytics.Ranking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	page := analytics.Paginate(ranking.Entries, req.PageSize, req.Page)
	out := *ranking
	out.Entries = page.Items
	respond(c, out, hit, page.Pagination())
}

// Videos godoc
// @Summary Competition video listing
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Param platform query string false "tiktok, youtube or instagram"
// @Param link_only query bool false "Only videos with a link"
// @Param viral_only query bool false "Only videos above the viral threshold"
// @Param page query int false "Page"
// @Param page_size query int false "25, 50, 100 or 200"
// @Success 200 {object} response.Envelope
// @Router /competitions/{id}/videos [get]
func (h *AnalyticsHandler) Videos(c *gin.Context) {
	req, err := bindVideos(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	listing, hit, err := h.analytics.Videos(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	page := analytics.Paginate(listing.Videos, req.PageSize, req.Page)
	out := *listing
	out.Videos = page.Items
	respond(c, out, hit, page.Pagination())
}

// ManualVideos godoc
// @Summary Curator-added videos
// @Tags Curation
// @Produce json
// @Security BearerAuth
// @Param competition_id query int false "Competition ID"
// @Param reason query string false "Manual reason"
// @Param page query int false "Page"
// @Param page_size query int false "25, 50, 100 or 200"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /manual-videos [get]
func (h *AnalyticsHandler) ManualVideos(c *gin.Context) {
	var req dto.ManualVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	listing, hit, err := h.analytics.ManualVideos(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	page := analytics.Paginate(listing.Videos, req.PageSize, req.Page)
	out := *listing
	out.Videos = page.Items
	respond(c, out, hit, page.Pagination())
}

// DailySeries godoc
// @Summary Daily publishing series of a competition
// @Tags Series
// @Produce json
// @Param id path int true "Competition ID"
// @Param preset query string false "Window preset"
// @Param start query string false "Window start"
// @Param end query string false "Window end"
// @Success 200 {object} response.Envelope
// @Router /competitions/{id}/series/daily [get]
func (h *AnalyticsHandler) DailySeries(c *gin.Context) {
	req, err := bindSeries(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	series, hit, err := h.analytics.DailySeries(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, series, hit, nil)
}

// WeekdaySeries godoc
// @Summary Weekday publishing series of a competition
// @Tags Series
// @Produce json
// @Param id path int true "Competition ID"
// @Success 200 {object} response.Envelope
// @Router /competitions/{id}/series/weekday [get]
func (h *AnalyticsHandler) WeekdaySeries(c *gin.Context) {
	req, err := bindSeries(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	series, hit, err := h.analytics.WeekdaySeries(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, series, hit, nil)
}

// GlobalDailySeries godoc
// @Summary Daily publishing series across competitions
// @Tags Global
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /global/series/daily [get]
func (h *AnalyticsHandler) GlobalDailySeries(c *gin.Context) {
	req, err := bindSeries(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	series, hit, err := h.analytics.DailySeries(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, series, hit, nil)
}

// GlobalSummary godoc
// @Summary System-wide rollup
// @Tags Global
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /global/summary [get]
func (h *AnalyticsHandler) GlobalSummary(c *gin.Context) {
	summary, hit, err := h.analytics.GlobalSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, hit, nil)
}

// GlobalTop godoc
// @Summary Top creators and videos across competitions
// @Tags Global
// @Produce json
// @Param n query int false "Entries per list (default 10)"
// @Param metric query string false "views, likes or engagement"
// @Success 200 {object} response.Envelope
// @Router /global/top [get]
func (h *AnalyticsHandler) GlobalTop(c *gin.Context) {
	var req dto.GlobalTopRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	top, hit, err := h.analytics.GlobalTop(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, top, hit, nil)
}

// InvalidateCache godoc
// @Summary Drop cached aggregates
// @Tags Curation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.InvalidateRequest false "Competition scope"
// @Success 200 {object} response.Envelope
// @Router /cache/invalidate [post]
func (h *AnalyticsHandler) InvalidateCache(c *gin.Context) {
	var req dto.InvalidateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
	}
	deleted, err := h.analytics.Invalidate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.InvalidateResponse{Deleted: deleted}, nil)
}

// System godoc
// @Summary Instrumentation snapshot
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	respond(c, h.analytics.SystemMetrics(), false, nil)
}

func respond(c *gin.Context, data interface{}, hit bool, pagination *models.Pagination) {
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, pagination, middleware.ExtractMeta(c))
}

func bindRanking(c *gin.Context) (dto.RankingRequest, error) {
	var req dto.RankingRequest
	id, err := competitionID(c)
	if err != nil {
		return req, err
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, bindError(err)
	}
	req.CompetitionID = id
	return req, nil
}

func bindVideos(c *gin.Context) (dto.VideoListRequest, error) {
	var req dto.VideoListRequest
	id, err := competitionID(c)
	if err != nil {
		return req, err
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, bindError(err)
	}
	req.CompetitionID = id
	return req, nil
}

func bindSeries(c *gin.Context, scoped bool) (dto.SeriesRequest, error) {
	var req dto.SeriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, bindError(err)
	}
	if scoped {
		id, err := competitionID(c)
		if err != nil {
			return req, err
		}
		req.CompetitionID = id
	}
	return req, nil
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
}
