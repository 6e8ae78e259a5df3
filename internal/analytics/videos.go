package analytics

import (
	"sort"
	"strings"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
)

// FilterVideos applies the listing filters of q to a competition's videos.
// The viral threshold is computed over every video passed in, before the
// platform filter narrows the set, so it stays the competition threshold.
func FilterVideos(videos []models.Video, q models.VideoQuery) ([]models.Video, float64) {
	views := make([]int64, len(videos))
	for i, v := range videos {
		views[i] = v.Views
	}
	threshold := ViralThreshold(views)
	platform := models.NormalizePlatform(string(q.Platform))
	reason := strings.TrimSpace(q.Reason)

	filtered := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if platform != "" && models.NormalizePlatform(string(v.Platform)) != platform {
			continue
		}
		if q.ManualOnly && !v.Manual {
			continue
		}
		if reason != "" && (!v.Manual || ManualReasonOf(v) != reason) {
			continue
		}
		if q.LinkOnly && !v.HasLink() {
			continue
		}
		if q.ViralOnly && !IsViral(v.Views, threshold) {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered, threshold
}

// ManualReasonOf returns the trimmed curator reason of v, or "unspecified"
// when none was recorded. ManualSummary groups by it and FilterVideos matches
// on it, so every reported reason can be filtered on.
func ManualReasonOf(v models.Video) string {
	if v.ManualReason != nil {
		if reason := strings.TrimSpace(*v.ManualReason); reason != "" {
			return reason
		}
	}
	return noReason
}

// SummarizeVideos computes the stats cards of a filtered video set.
func SummarizeVideos(videos []models.Video) models.VideoStats {
	stats := models.VideoStats{Count: len(videos)}
	for _, v := range videos {
		stats.TotalViews += v.Views
		stats.TotalLikes += v.Likes
		if v.HasLink() {
			stats.WithLink++
		}
	}
	if stats.Count > 0 {
		stats.LinkPercent = ratio(int64(stats.WithLink)*100, int64(stats.Count))
	}
	stats.AverageViews = AverageViews(stats.TotalViews, int64(stats.Count))
	return stats
}

// OrderByViews sorts videos by views, most viewed first. Equal views keep input order.
func OrderByViews(videos []models.Video) []models.Video {
	sorted := make([]models.Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Views > sorted[j].Views })
	return sorted
}

// OrderByIngestion sorts manual videos newest ingestion first, then by views.
// Videos without an ingestion time sort last.
func OrderByIngestion(videos []models.Video) []models.Video {
	sorted := make([]models.Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ScrapedAt, sorted[j].ScrapedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return sorted[i].Views > sorted[j].Views
	})
	return sorted
}
