package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/trendx-analytics-api/internal/analytics"
	"github.com/noah-isme/trendx-analytics-api/internal/dto"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
	"github.com/noah-isme/trendx-analytics-api/pkg/config"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

const defaultTopN = 10

// RecordRepository describes the record store reads required by AnalyticsService.
type RecordRepository interface {
	ListVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error)
	ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error)
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
	GetCompetition(ctx context.Context, id int64) (*models.Competition, error)
}

// AnalyticsService reads records, runs the aggregation engine and memoises
// the results. The boolean returned by read methods reports a cache hit.
type AnalyticsService struct {
	repo      RecordRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.AnalyticsConfig
	loc       *time.Location
	now       func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo RecordRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, cfg config.AnalyticsConfig, logger *zap.Logger) *AnalyticsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = analytics.DefaultLimit
	}
	return &AnalyticsService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		loc:       cfg.Location(),
		now:       time.Now,
	}
}

// Location returns the timezone used for calendar bucketing.
func (s *AnalyticsService) Location() *time.Location {
	return s.loc
}

// Competitions lists every competition in the default order.
func (s *AnalyticsService) Competitions(ctx context.Context) ([]models.Competition, bool, error) {
	return cached(ctx, s, cacheKey("global", "competitions"), func() ([]models.Competition, error) {
		competitions, err := s.listCompetitions(ctx)
		if err != nil {
			return nil, err
		}
		return analytics.SortCompetitions(competitions), nil
	})
}

// Overview returns the header totals of one competition.
func (s *AnalyticsService) Overview(ctx context.Context, competitionID int64) (*models.CompetitionOverview, bool, error) {
	if competitionID <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "competition id must be positive")
	}
	return cached(ctx, s, competitionKey(competitionID, "overview"), func() (*models.CompetitionOverview, error) {
		competition, err := s.getCompetition(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		videos, err := s.listVideos(ctx, models.VideoFilter{CompetitionID: &competitionID})
		if err != nil {
			return nil, err
		}
		overview := analytics.CompetitionOverview(*competition, videos, s.cfg.SyntheticPrefix)
		return &overview, nil
	})
}

// Ranking builds the creator leaderboard of a competition. Metric and window
// are rejected before the record store is read.
func (s *AnalyticsService) Ranking(ctx context.Context, req dto.RankingRequest) (*models.Ranking, bool, error) {
	if err := s.validate(req); err != nil {
		return nil, false, err
	}
	metric, err := analytics.ParseMetric(req.Metric)
	if err != nil {
		return nil, false, err
	}
	window, err := s.resolveWindow(req.WindowParams)
	if err != nil {
		return nil, false, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	key := competitionKey(req.CompetitionID, "ranking", windowKey(req.WindowParams, window), string(metric),
		strconv.Itoa(limit), strconv.FormatInt(req.MinViews, 10))
	return cached(ctx, s, key, func() (*models.Ranking, error) {
		videos, err := s.listVideos(ctx, models.VideoFilter{CompetitionID: &req.CompetitionID, Window: window})
		if err != nil {
			return nil, err
		}
		entries, err := analytics.BuildRanking(videos, models.RankingQuery{
			CompetitionID: req.CompetitionID,
			Window:        window,
			Metric:        metric,
			Limit:         limit,
			MinViews:      req.MinViews,
		})
		if err != nil {
			return nil, err
		}
		return &models.Ranking{
			CompetitionID: req.CompetitionID,
			Metric:        metric,
			Window:        window,
			Summary:       analytics.SummarizeRanking(entries),
			Entries:       entries,
		}, nil
	})
}

// Videos lists a competition's videos after the platform, link and viral
// filters, most viewed first.
func (s *AnalyticsService) Videos(ctx context.Context, req dto.VideoListRequest) (*models.VideoListing, bool, error) {
	req.Platform = string(models.NormalizePlatform(req.Platform))
	if err := s.validate(req); err != nil {
		return nil, false, err
	}

	key := competitionKey(req.CompetitionID, "videos", req.Platform, strconv.FormatBool(req.LinkOnly), strconv.FormatBool(req.ViralOnly))
	return cached(ctx, s, key, func() (*models.VideoListing, error) {
		videos, err := s.listVideos(ctx, models.VideoFilter{CompetitionID: &req.CompetitionID})
		if err != nil {
			return nil, err
		}
		filtered, threshold := analytics.FilterVideos(videos, models.VideoQuery{
			CompetitionID: req.CompetitionID,
			Platform:      models.Platform(req.Platform),
			LinkOnly:      req.LinkOnly,
			ViralOnly:     req.ViralOnly,
		})
		return &models.VideoListing{
			ViralThreshold: threshold,
			Stats:          analytics.SummarizeVideos(filtered),
			Videos:         analytics.OrderByViews(filtered),
		}, nil
	})
}

// ManualVideos lists curator-added videos, newest ingestion first. The
// summary covers every manual video in scope; the reason filter only narrows
// the list.
func (s *AnalyticsService) ManualVideos(ctx context.Context, req dto.ManualVideoRequest) (*models.ManualListing, bool, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validate(req); err != nil {
		return nil, false, err
	}

	scope := "all"
	if req.CompetitionID != nil {
		scope = strconv.FormatInt(*req.CompetitionID, 10)
	}
	return cached(ctx, s, cacheKey("manual", scope, req.Reason), func() (*models.ManualListing, error) {
		videos, err := s.listVideos(ctx, models.VideoFilter{CompetitionID: req.CompetitionID, ManualOnly: true})
		if err != nil {
			return nil, err
		}
		filtered, _ := analytics.FilterVideos(videos, models.VideoQuery{ManualOnly: true, Reason: req.Reason})
		return &models.ManualListing{
			Summary: analytics.ManualSummary(videos),
			Videos:  analytics.OrderByIngestion(filtered),
		}, nil
	})
}

// DailySeries returns per-day buckets with trend, cumulative views and top
// days. A zero competition id covers every competition.
func (s *AnalyticsService) DailySeries(ctx context.Context, req dto.SeriesRequest) (*models.DailySeries, bool, error) {
	if err := s.validate(req); err != nil {
		return nil, false, err
	}
	window, err := s.resolveWindow(req.WindowParams)
	if err != nil {
		return nil, false, err
	}
	return cached(ctx, s, seriesKey(req, window, "daily"), func() (*models.DailySeries, error) {
		videos, err := s.listVideos(ctx, seriesFilter(req.CompetitionID, window))
		if err != nil {
			return nil, err
		}
		series := analytics.DailySeriesOf(videos, s.loc)
		return &series, nil
	})
}

// WeekdaySeries returns the seven weekday buckets and the best weekdays.
func (s *AnalyticsService) WeekdaySeries(ctx context.Context, req dto.SeriesRequest) (*models.WeekdaySeries, bool, error) {
	if err := s.validate(req); err != nil {
		return nil, false, err
	}
	window, err := s.resolveWindow(req.WindowParams)
	if err != nil {
		return nil, false, err
	}
	return cached(ctx, s, seriesKey(req, window, "weekday"), func() (*models.WeekdaySeries, error) {
		videos, err := s.listVideos(ctx, seriesFilter(req.CompetitionID, window))
		if err != nil {
			return nil, err
		}
		series := analytics.WeekdaySeriesOf(videos, s.loc)
		return &series, nil
	})
}

// GlobalSummary rolls every competition up, zero-filling those without videos.
func (s *AnalyticsService) GlobalSummary(ctx context.Context) (*models.GlobalSummary, bool, error) {
	return cached(ctx, s, cacheKey("global", "summary"), func() (*models.GlobalSummary, error) {
		competitions, err := s.listCompetitions(ctx)
		if err != nil {
			return nil, err
		}
		videos, err := s.listVideos(ctx, models.VideoFilter{})
		if err != nil {
			return nil, err
		}
		accounts, err := s.listAccounts(ctx, models.AccountFilter{})
		if err != nil {
			return nil, err
		}
		summary := analytics.GlobalSummary(competitions, videos, accounts)
		return &summary, nil
	})
}

// GlobalTop returns the top creators by views and the top videos by metric
// across every competition.
func (s *AnalyticsService) GlobalTop(ctx context.Context, req dto.GlobalTopRequest) (*models.GlobalTop, bool, error) {
	if err := s.validate(req); err != nil {
		return nil, false, err
	}
	metric, err := analytics.ParseMetric(req.Metric)
	if err != nil {
		return nil, false, err
	}
	n := req.N
	if n <= 0 {
		n = defaultTopN
	}
	return cached(ctx, s, cacheKey("global", "top", string(metric), strconv.Itoa(n)), func() (*models.GlobalTop, error) {
		videos, err := s.listVideos(ctx, models.VideoFilter{})
		if err != nil {
			return nil, err
		}
		top, err := analytics.TopVideos(videos, metric, n)
		if err != nil {
			return nil, err
		}
		return &models.GlobalTop{Creators: analytics.TopCreators(videos, n), Videos: top}, nil
	})
}

// Invalidate drops cached aggregates of one competition together with the
// global and manual views that include it. A nil id drops everything.
func (s *AnalyticsService) Invalidate(ctx context.Context, req dto.InvalidateRequest) (int, error) {
	if err := s.validate(req); err != nil {
		return 0, err
	}
	patterns := []string{cacheKey("*")}
	if req.CompetitionID != nil {
		patterns = []string{
			competitionKey(*req.CompetitionID, "*"),
			cacheKey("global", "*"),
			cacheKey("manual", "*"),
		}
	}

	deleted := 0
	for _, pattern := range patterns {
		n, err := s.cache.Invalidate(ctx, pattern)
		deleted += n
		if err != nil {
			return deleted, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate cache")
		}
	}
	s.logger.Info("analytics cache invalidated", zap.Strings("patterns", patterns), zap.Int("deleted", deleted))
	return deleted, nil
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	return nil
}

func (s *AnalyticsService) resolveWindow(p dto.WindowParams) (*models.Window, error) {
	if p.Start != "" || p.End != "" {
		return analytics.ParseWindow(p.Start, p.End, s.loc)
	}
	return analytics.ResolvePreset(p.Preset, s.now().Truncate(time.Minute))
}

func (s *AnalyticsService) listVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	start := time.Now()
	videos, err := s.repo.ListVideos(ctx, filter)
	s.metrics.ObserveQuery("list_videos", time.Since(start))
	if err != nil {
		return nil, s.unavailable(err, "list videos"+describeFilter(filter), filterFields(filter)...)
	}
	return videos, nil
}

func (s *AnalyticsService) listAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	start := time.Now()
	accounts, err := s.repo.ListAccounts(ctx, filter)
	s.metrics.ObserveQuery("list_accounts", time.Since(start))
	if err != nil {
		return nil, s.unavailable(err, "list accounts")
	}
	return accounts, nil
}

func (s *AnalyticsService) listCompetitions(ctx context.Context) ([]models.Competition, error) {
	start := time.Now()
	competitions, err := s.repo.ListCompetitions(ctx)
	s.metrics.ObserveQuery("list_competitions", time.Since(start))
	if err != nil {
		return nil, s.unavailable(err, "list competitions")
	}
	return competitions, nil
}

func (s *AnalyticsService) getCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	start := time.Now()
	competition, err := s.repo.GetCompetition(ctx, id)
	s.metrics.ObserveQuery("get_competition", time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		return nil, s.unavailable(err, fmt.Sprintf("get competition %d", id), zap.Int64("competition_id", id))
	}
	return competition, nil
}

func (s *AnalyticsService) unavailable(err error, operation string, fields ...zap.Field) error {
	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	s.logger.Error("record repository unavailable", fields...)
	return appErrors.Wrap(err, appErrors.ErrRepositoryUnavailable.Code, appErrors.ErrRepositoryUnavailable.Status, operation)
}

// cached returns the memoised value under key or computes and stores it.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, compute func() (T, error)) (T, bool, error) {
	var value T
	if s.cache.Get(ctx, key, &value) {
		return value, true, nil
	}
	value, err := compute()
	if err != nil {
		var zero T
		return zero, false, err
	}
	s.cache.Set(ctx, key, value, s.cfg.CacheTTL)
	return value, false, nil
}

func cacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		builder.WriteByte(':')
		if part == "" {
			part = "-"
		}
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func competitionKey(id int64, parts ...string) string {
	return cacheKey(append([]string{"competition", strconv.FormatInt(id, 10)}, parts...)...)
}

func seriesKey(req dto.SeriesRequest, window *models.Window, kind string) string {
	if req.CompetitionID == 0 {
		return cacheKey("global", "series", kind, windowKey(req.WindowParams, window))
	}
	return competitionKey(req.CompetitionID, "series", kind, windowKey(req.WindowParams, window))
}

// windowKey keys relative presets on their resolved bounds. Presets resolve
// against a minute-truncated clock, so requests within the same minute share
// an entry and a later minute never serves a stale window.
func windowKey(p dto.WindowParams, window *models.Window) string {
	if p.Start != "" || p.End != "" {
		return p.Start + ".." + p.End
	}
	if window == nil {
		return analytics.PresetAll
	}
	return strings.ToLower(strings.TrimSpace(p.Preset)) + "@" +
		strconv.FormatInt(window.Start, 10) + ".." + strconv.FormatInt(window.End, 10)
}

func seriesFilter(competitionID int64, window *models.Window) models.VideoFilter {
	filter := models.VideoFilter{Window: window}
	if competitionID > 0 {
		filter.CompetitionID = &competitionID
	}
	return filter
}

func describeFilter(filter models.VideoFilter) string {
	var builder strings.Builder
	if filter.CompetitionID != nil {
		fmt.Fprintf(&builder, " for competition %d", *filter.CompetitionID)
	} else {
		builder.WriteString(" for all competitions")
	}
	if filter.Window != nil {
		fmt.Fprintf(&builder, " in window %d..%d", filter.Window.Start, filter.Window.End)
	}
	return builder.String()
}

func filterFields(filter models.VideoFilter) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if filter.CompetitionID != nil {
		fields = append(fields, zap.Int64("competition_id", *filter.CompetitionID))
	}
	if filter.Window != nil {
		fields = append(fields, zap.Int64("window_start", filter.Window.Start), zap.Int64("window_end", filter.Window.End))
	}
	return fields
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid parameters"
	}
	fe := fieldErrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
}
