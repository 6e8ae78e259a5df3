package analytics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

func TestBuildRankingSingleCreator(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("U"), withCounts(100, 10, 0, 0)),
		newVideo(1, withCreator("U"), withCounts(200, 0, 0, 0)),
		newVideo(1, withCreator("U"), withCounts(300, 30, 0, 0)),
	}

	entries, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	row := entries[0]
	assert.Equal(t, 1, row.Rank)
	assert.Equal(t, "U", row.Creator)
	assert.Equal(t, int64(3), row.Videos)
	assert.Equal(t, int64(600), row.Views)
	assert.Equal(t, int64(40), row.Likes)
	assert.Equal(t, int64(40), row.TotalInteractions)
	assert.Equal(t, 6.67, row.EngagementRate)
}

func TestBuildRankingMergesPlatformsUnderOneLabel(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("ana"), withPlatform("TikTok"), withCounts(100, 0, 0, 0)),
		newVideo(1, withCreator("ana"), withPlatform("youtube"), withCounts(50, 0, 0, 0)),
		newVideo(1, withCreator("ana"), withPlatform("instagram"), withCounts(25, 0, 0, 0)),
		newVideo(1, withPlatform("tiktok"), withCounts(10, 0, 0, 0)),
		newVideo(1, withCreator(""), withCounts(5, 0, 0, 0)),
	}

	entries, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "ana", entries[0].Creator)
	assert.Equal(t, int64(175), entries[0].Views)
	assert.Equal(t, int64(100), entries[0].TikTokViews)
	assert.Equal(t, int64(50), entries[0].YouTubeViews)
	assert.Equal(t, int64(25), entries[0].InstagramViews)

	assert.Equal(t, models.UnknownCreator, entries[1].Creator)
	assert.Equal(t, int64(15), entries[1].Views)
	assert.Equal(t, int64(2), entries[1].Videos)
}

func TestBuildRankingDropsZeroViewCreators(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("a"), withCounts(100, 5, 0, 0)),
		newVideo(1, withCreator("zero"), withCounts(0, 50, 0, 0)),
		newVideo(1, withCreator("b"), withCounts(40, 0, 0, 0)),
	}

	entries, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var ranked, all int64
	for _, e := range entries {
		ranked += e.Views
	}
	for _, v := range videos {
		all += v.Views
	}
	assert.LessOrEqual(t, ranked, all)
	assert.Equal(t, all, ranked)
}

func TestBuildRankingStableTies(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("first"), withCounts(100, 1, 0, 0)),
		newVideo(1, withCreator("second"), withCounts(100, 9, 0, 0)),
		newVideo(1, withCreator("third"), withCounts(100, 5, 0, 0)),
	}

	entries, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Metric: models.MetricViews})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, creators(entries))

	entries, err = BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Metric: models.MetricLikes})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "third", "first"}, creators(entries))
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestBuildRankingMetrics(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("many"), withCounts(1000, 10, 0, 0)),
		newVideo(1, withCreator("many"), withCounts(1000, 10, 0, 0)),
		newVideo(1, withCreator("many"), withCounts(1000, 10, 0, 0)),
		newVideo(1, withCreator("engaging"), withCounts(100, 50, 10, 0)),
	}

	byEngagement, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Metric: "engagement"})
	require.NoError(t, err)
	assert.Equal(t, []string{"engaging", "many"}, creators(byEngagement))
	assert.Equal(t, 60.0, byEngagement[0].EngagementRate)

	byVideos, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Metric: "VIDEOS"})
	require.NoError(t, err)
	assert.Equal(t, []string{"many", "engaging"}, creators(byVideos))
}

func TestBuildRankingRejectsBadInputBeforeGrouping(t *testing.T) {
	_, err := BuildRanking(nil, models.RankingQuery{CompetitionID: 1, Metric: "shares"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnknownMetric))

	_, err = BuildRanking(nil, models.RankingQuery{CompetitionID: 1, Window: &models.Window{Start: 20, End: 10}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidWindow))
}

func TestBuildRankingWindow(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("in"), withCounts(10, 0, 0, 0), publishedAt(day(1))),
		newVideo(1, withCreator("edge"), withCounts(20, 0, 0, 0), publishedAt(day(2))),
		newVideo(1, withCreator("out"), withCounts(30, 0, 0, 0), publishedAt(day(5))),
		newVideo(1, withCreator("undated"), withCounts(40, 0, 0, 0)),
	}

	entries, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Window: &models.Window{Start: day(1), End: day(2)}})
	require.NoError(t, err)
	assert.Equal(t, []string{"edge", "in"}, creators(entries))

	empty, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Window: &models.Window{Start: day(10), End: day(11)}})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBuildRankingScopesCompetitionAndLimits(t *testing.T) {
	var videos []models.Video
	for i := 0; i < 120; i++ {
		videos = append(videos, newVideo(1, withCreator(fmt.Sprintf("c%03d", i)), withCounts(int64(1000-i), 0, 0, 0)))
	}
	videos = append(videos, newVideo(2, withCreator("elsewhere"), withCounts(5000, 0, 0, 0)))

	entries, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1})
	require.NoError(t, err)
	require.Len(t, entries, DefaultLimit)
	assert.Equal(t, "c000", entries[0].Creator)
	assert.Equal(t, 100, entries[99].Rank)

	limited, err := BuildRanking(videos, models.RankingQuery{CompetitionID: 1, Limit: 3, MinViews: 999})
	require.NoError(t, err)
	assert.Equal(t, []string{"c000", "c001"}, creators(limited))
}

func TestBuildRankingDeterministic(t *testing.T) {
	videos := []models.Video{
		newVideo(1, withCreator("a"), withCounts(10, 1, 1, 1)),
		newVideo(1, withCreator("b"), withCounts(10, 2, 0, 0)),
		newVideo(1, withCreator("c"), withCounts(30, 0, 3, 0)),
	}
	q := models.RankingQuery{CompetitionID: 1, Metric: models.MetricEngagement}

	first, err := BuildRanking(videos, q)
	require.NoError(t, err)
	second, err := BuildRanking(videos, q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseMetric(t *testing.T) {
	metric, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, models.MetricViews, metric)

	metric, err = ParseMetric(" Likes ")
	require.NoError(t, err)
	assert.Equal(t, models.MetricLikes, metric)

	_, err = ParseMetric("followers")
	assert.ErrorIs(t, err, appErrors.ErrUnknownMetric)
}

func TestSummarizeRanking(t *testing.T) {
	summary := SummarizeRanking([]models.UserAggregate{
		{Videos: 2, Views: 100, Likes: 10, EngagementRate: 10},
		{Videos: 1, Views: 50, Likes: 1, EngagementRate: 5},
	})
	assert.Equal(t, models.RankingSummary{Creators: 2, Videos: 3, Views: 150, Likes: 11, AverageEngagement: 7.5}, summary)
	assert.Equal(t, models.RankingSummary{}, SummarizeRanking(nil))
}

func creators(entries []models.UserAggregate) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Creator
	}
	return out
}
