package service

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/trendx-analytics-api/internal/dto"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
	"github.com/noah-isme/trendx-analytics-api/pkg/config"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

type mockRecordRepo struct {
	videos       []models.Video
	accounts     []models.Account
	competitions []models.Competition
	videosErr    error
	filters      []models.VideoFilter
	videoCalls   int
}

func (m *mockRecordRepo) ListVideos(_ context.Context, filter models.VideoFilter) ([]models.Video, error) {
	m.videoCalls++
	m.filters = append(m.filters, filter)
	if m.videosErr != nil {
		return nil, m.videosErr
	}
	return m.videos, nil
}

func (m *mockRecordRepo) ListAccounts(_ context.Context, _ models.AccountFilter) ([]models.Account, error) {
	return m.accounts, nil
}

func (m *mockRecordRepo) ListCompetitions(_ context.Context) ([]models.Competition, error) {
	return m.competitions, nil
}

func (m *mockRecordRepo) GetCompetition(_ context.Context, id int64) (*models.Competition, error) {
	for _, c := range m.competitions {
		if c.ID == id {
			competition := c
			return &competition, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "competition not found")
}

type stubCacheRepo struct {
	store    map[string][]byte
	patterns []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	s.patterns = append(s.patterns, pattern)
	deleted := 0
	for key := range s.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.store, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *stubCacheRepo) keys() []string {
	keys := make([]string, 0, len(s.store))
	for key := range s.store {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func sampleVideos() []models.Video {
	return []models.Video{
		{ID: 1, CompetitionID: 3, UserID: "u1", Platform: models.PlatformTikTok, Views: 500, Likes: 50, CreatorName: strPtr("Ana"), URL: strPtr("https://t.example/1")},
		{ID: 2, CompetitionID: 3, UserID: "u2", Platform: models.PlatformYouTube, Views: 300, Likes: 10, CreatorName: strPtr("Bia")},
		{ID: 3, CompetitionID: 3, UserID: "u1", Platform: models.PlatformTikTok, Views: 200, Likes: 20, CreatorName: strPtr("Ana"), Manual: true, ManualReason: strPtr("late sync")},
		{ID: 4, CompetitionID: 3, UserID: "u3", Platform: models.PlatformInstagram, Views: 10, Likes: 1, Manual: true},
	}
}

func newTestAnalyticsService(repo *mockRecordRepo, cacheRepo CacheRepository) *AnalyticsService {
	var cacheSvc *CacheService
	if cacheRepo != nil {
		cacheSvc = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewAnalyticsService(repo, cacheSvc, nil, nil, config.AnalyticsConfig{CacheTTL: time.Minute}, zap.NewNop())
}

func TestAnalyticsServiceRankingCaching(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	cacheRepo := &stubCacheRepo{}
	svc := newTestAnalyticsService(repo, cacheRepo)
	ctx := context.Background()
	req := dto.RankingRequest{CompetitionID: 3, Metric: "views"}

	ranking, hit, err := svc.Ranking(ctx, req)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, ranking.Entries, 3)
	assert.Equal(t, "Ana", ranking.Entries[0].Creator)
	assert.Equal(t, int64(700), ranking.Entries[0].Views)
	assert.Equal(t, models.UnknownCreator, ranking.Entries[2].Creator)
	assert.Equal(t, []string{"analytics:competition:3:ranking:all:views:100:0"}, cacheRepo.keys())

	cachedRanking, hit, err := svc.Ranking(ctx, req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.videoCalls)
	assert.Equal(t, ranking, cachedRanking)
}

func TestAnalyticsServiceRankingRejectsBeforeReading(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	svc := newTestAnalyticsService(repo, nil)
	ctx := context.Background()

	_, _, err := svc.Ranking(ctx, dto.RankingRequest{CompetitionID: 3, Metric: "followers"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnknownMetric)

	_, _, err = svc.Ranking(ctx, dto.RankingRequest{
		CompetitionID: 3,
		WindowParams:  dto.WindowParams{Start: "2024-02-01", End: "2024-01-01"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidWindow)

	_, _, err = svc.Ranking(ctx, dto.RankingRequest{CompetitionID: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Equal(t, 0, repo.videoCalls)
}

func TestAnalyticsServiceRankingWindowPassedToRepository(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := newTestAnalyticsService(repo, nil)

	_, _, err := svc.Ranking(context.Background(), dto.RankingRequest{
		CompetitionID: 3,
		WindowParams:  dto.WindowParams{Preset: "last_week", Start: "1704067200", End: "1704153600"},
	})
	require.NoError(t, err)
	require.Len(t, repo.filters, 1)
	require.NotNil(t, repo.filters[0].Window)
	assert.Equal(t, models.Window{Start: 1704067200, End: 1704153600}, *repo.filters[0].Window)
	assert.Equal(t, int64(3), *repo.filters[0].CompetitionID)
}

func TestAnalyticsServicePresetUsesClock(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := newTestAnalyticsService(repo, nil)
	svc.now = func() time.Time { return time.Unix(1704672000, 0) }

	_, _, err := svc.DailySeries(context.Background(), dto.SeriesRequest{WindowParams: dto.WindowParams{Preset: "last_week"}})
	require.NoError(t, err)
	require.Len(t, repo.filters, 1)
	assert.Nil(t, repo.filters[0].CompetitionID)
	assert.Equal(t, models.Window{Start: 1704067200, End: 1704672000}, *repo.filters[0].Window)
}

func TestAnalyticsServiceRepositoryUnavailable(t *testing.T) {
	repo := &mockRecordRepo{videosErr: assert.AnError}
	svc := newTestAnalyticsService(repo, nil)

	_, _, err := svc.Videos(context.Background(), dto.VideoListRequest{CompetitionID: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrRepositoryUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "list videos for competition 3")
}

func TestAnalyticsServiceOverviewNotFound(t *testing.T) {
	repo := &mockRecordRepo{competitions: []models.Competition{{ID: 3, Name: "Summer"}}}
	svc := newTestAnalyticsService(repo, nil)

	_, _, err := svc.Overview(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 0, repo.videoCalls)

	repo.videos = sampleVideos()
	overview, _, err := svc.Overview(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Summer", overview.Competition.Name)
	assert.Equal(t, int64(4), overview.Videos)
	assert.Equal(t, int64(1010), overview.Views)
}

func TestAnalyticsServiceVideosNormalisesPlatform(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	svc := newTestAnalyticsService(repo, nil)

	listing, _, err := svc.Videos(context.Background(), dto.VideoListRequest{CompetitionID: 3, Platform: " TikTok "})
	require.NoError(t, err)
	require.Len(t, listing.Videos, 2)
	assert.Equal(t, int64(1), listing.Videos[0].ID)
	assert.Equal(t, 2, listing.Stats.Count)
	assert.Equal(t, 1, listing.Stats.WithLink)

	_, _, err = svc.Videos(context.Background(), dto.VideoListRequest{CompetitionID: 3, Platform: "vimeo"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAnalyticsServiceManualSummaryIgnoresReasonFilter(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	svc := newTestAnalyticsService(repo, nil)

	listing, _, err := svc.ManualVideos(context.Background(), dto.ManualVideoRequest{Reason: " late sync "})
	require.NoError(t, err)
	require.Len(t, listing.Videos, 1)
	assert.Equal(t, int64(3), listing.Videos[0].ID)
	assert.Equal(t, 2, listing.Summary.Total)
	require.Len(t, repo.filters, 1)
	assert.True(t, repo.filters[0].ManualOnly)
	assert.Nil(t, repo.filters[0].CompetitionID)
}

func TestAnalyticsServiceGlobalTopDefaults(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	svc := newTestAnalyticsService(repo, nil)

	top, _, err := svc.GlobalTop(context.Background(), dto.GlobalTopRequest{})
	require.NoError(t, err)
	require.Len(t, top.Videos, 4)
	assert.Equal(t, int64(1), top.Videos[0].ID)
	assert.Equal(t, "Ana", top.Creators[0].Creator)

	_, _, err = svc.GlobalTop(context.Background(), dto.GlobalTopRequest{Metric: "videos"})
	assert.ErrorIs(t, err, appErrors.ErrUnknownMetric)
}

func TestAnalyticsServiceInvalidate(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos(), competitions: []models.Competition{{ID: 3}, {ID: 4}}}
	cacheRepo := &stubCacheRepo{}
	svc := newTestAnalyticsService(repo, cacheRepo)
	ctx := context.Background()

	_, _, err := svc.Ranking(ctx, dto.RankingRequest{CompetitionID: 3})
	require.NoError(t, err)
	_, _, err = svc.Ranking(ctx, dto.RankingRequest{CompetitionID: 4})
	require.NoError(t, err)
	_, _, err = svc.GlobalSummary(ctx)
	require.NoError(t, err)
	require.Len(t, cacheRepo.keys(), 3)

	deleted, err := svc.Invalidate(ctx, dto.InvalidateRequest{CompetitionID: int64Ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{
		"analytics:competition:3:*",
		"analytics:global:*",
		"analytics:manual:*",
	}, cacheRepo.patterns)
	remaining := cacheRepo.keys()
	require.Len(t, remaining, 1)
	assert.True(t, strings.HasPrefix(remaining[0], "analytics:competition:4:"))

	deleted, err = svc.Invalidate(ctx, dto.InvalidateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, "analytics:*", cacheRepo.patterns[len(cacheRepo.patterns)-1])
}

func TestAnalyticsServiceCacheDisabled(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	svc := newTestAnalyticsService(repo, nil)

	deleted, err := svc.Invalidate(context.Background(), dto.InvalidateRequest{})
	require.NoError(t, err)
	assert.Zero(t, deleted)

	for i := 0; i < 2; i++ {
		_, hit, err := svc.Videos(context.Background(), dto.VideoListRequest{CompetitionID: 3})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, repo.videoCalls)
}

func TestCacheKeyEscapesParts(t *testing.T) {
	assert.Equal(t, "analytics:manual:all:-", cacheKey("manual", "all", ""))
	assert.Equal(t, "analytics:manual:all:a|b", cacheKey("manual", "all", "a:b"))
	assert.Equal(t, "2024-01-01..2024-01-31", windowKey(dto.WindowParams{Preset: "last_week", Start: "2024-01-01", End: "2024-01-31"}, nil))
	assert.Equal(t, "all", windowKey(dto.WindowParams{}, nil))
	assert.Equal(t, "last_week@100..200", windowKey(dto.WindowParams{Preset: " Last_Week"}, &models.Window{Start: 100, End: 200}))
}

func TestAnalyticsServicePresetCacheFollowsClock(t *testing.T) {
	repo := &mockRecordRepo{videos: sampleVideos()}
	cacheRepo := &stubCacheRepo{}
	svc := newTestAnalyticsService(repo, cacheRepo)
	clock := time.Unix(1704672000, 0)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()
	req := dto.SeriesRequest{CompetitionID: 3, WindowParams: dto.WindowParams{Preset: "last_week"}}

	_, hit, err := svc.DailySeries(ctx, req)
	require.NoError(t, err)
	assert.False(t, hit)

	clock = clock.Add(40 * time.Second)
	_, hit, err = svc.DailySeries(ctx, req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.videoCalls)

	clock = clock.Add(time.Minute)
	_, hit, err = svc.DailySeries(ctx, req)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.videoCalls)
	require.Len(t, repo.filters, 2)
	assert.Equal(t, models.Window{Start: 1704067260, End: 1704672060}, *repo.filters[1].Window)
	assert.Equal(t, []string{
		"analytics:competition:3:series:daily:last_week@1704067200..1704672000",
		"analytics:competition:3:series:daily:last_week@1704067260..1704672060",
	}, cacheRepo.keys())
}
