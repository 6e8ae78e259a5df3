package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

// DefaultLimit caps leaderboards when the caller passes no limit.
const DefaultLimit = 100

// ParseMetric resolves a raw sort key. An empty key means views.
func ParseMetric(raw string) (models.RankingMetric, error) {
	switch metric := models.RankingMetric(strings.ToLower(strings.TrimSpace(raw))); metric {
	case "":
		return models.MetricViews, nil
	case models.MetricViews, models.MetricLikes, models.MetricEngagement, models.MetricVideos:
		return metric, nil
	default:
		return "", unknownMetric(models.RankingMetric(raw))
	}
}

func unknownMetric(metric models.RankingMetric) error {
	return appErrors.Clone(appErrors.ErrUnknownMetric, fmt.Sprintf("unsupported ranking metric %q", metric))
}

// BuildRanking groups the competition's videos by creator and returns the
// leaderboard sorted by q.Metric. Metric and window are validated before any
// grouping. Ties keep first-appearance order.
func BuildRanking(videos []models.Video, q models.RankingQuery) ([]models.UserAggregate, error) {
	metric, err := ParseMetric(string(q.Metric))
	if err != nil {
		return nil, err
	}
	if err := ValidateWindow(q.Window); err != nil {
		return nil, err
	}

	var (
		groups []*models.UserAggregate
		index  = make(map[string]int)
	)
	for _, v := range videos {
		if v.CompetitionID != q.CompetitionID || !inWindow(v, q.Window) {
			continue
		}
		label := v.Creator()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, &models.UserAggregate{Creator: label})
		}
		addVideo(groups[i], v)
	}

	entries := make([]models.UserAggregate, 0, len(groups))
	for _, g := range groups {
		if g.Views <= 0 || g.Views < q.MinViews {
			continue
		}
		g.TotalInteractions = TotalInteractions(g.Likes, g.Comments, g.Shares)
		g.EngagementRate = EngagementRate(g.TotalInteractions, g.Views)
		entries = append(entries, *g)
	}

	key := metricKey(metric)
	sort.SliceStable(entries, func(i, j int) bool {
		return key(entries[i]) > key(entries[j])
	})

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// SummarizeRanking totals a leaderboard for its header cards.
func SummarizeRanking(entries []models.UserAggregate) models.RankingSummary {
	summary := models.RankingSummary{Creators: len(entries)}
	if len(entries) == 0 {
		return summary
	}
	var engagement float64
	for _, e := range entries {
		summary.Videos += e.Videos
		summary.Views += e.Views
		summary.Likes += e.Likes
		engagement += e.EngagementRate
	}
	summary.AverageEngagement = roundFloat(engagement / float64(len(entries)))
	return summary
}

func addVideo(g *models.UserAggregate, v models.Video) {
	g.Videos++
	g.Views += v.Views
	g.Likes += v.Likes
	g.Comments += v.Comments
	g.Shares += v.Shares
	switch models.NormalizePlatform(string(v.Platform)) {
	case models.PlatformTikTok:
		g.TikTokViews += v.Views
	case models.PlatformYouTube:
		g.YouTubeViews += v.Views
	case models.PlatformInstagram:
		g.InstagramViews += v.Views
	}
}

func inWindow(v models.Video, w *models.Window) bool {
	if w == nil {
		return true
	}
	return v.PublishedAt != nil && w.Contains(*v.PublishedAt)
}

func metricKey(metric models.RankingMetric) func(models.UserAggregate) float64 {
	switch metric {
	case models.MetricLikes:
		return func(e models.UserAggregate) float64 { return float64(e.Likes) }
	case models.MetricEngagement:
		return func(e models.UserAggregate) float64 { return e.EngagementRate }
	case models.MetricVideos:
		return func(e models.UserAggregate) float64 { return float64(e.Videos) }
	default:
		return func(e models.UserAggregate) float64 { return float64(e.Views) }
	}
}
