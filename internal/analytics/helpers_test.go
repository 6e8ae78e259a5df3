package analytics

import (
	"time"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
)

// jan1 is Monday 2024-01-01 00:00 UTC.
const jan1 int64 = 1704067200

func strPtr(s string) *string { return &s }

func tsPtr(ts int64) *int64 { return &ts }

func day(n int) int64 { return jan1 + int64(n)*secondsPerDay }

type videoOpt func(*models.Video)

func withCreator(name string) videoOpt {
	return func(v *models.Video) { v.CreatorName = strPtr(name) }
}

func withPlatform(p string) videoOpt {
	return func(v *models.Video) { v.Platform = models.Platform(p) }
}

func withCounts(views, likes, comments, shares int64) videoOpt {
	return func(v *models.Video) {
		v.Views, v.Likes, v.Comments, v.Shares = views, likes, comments, shares
	}
}

func publishedAt(ts int64) videoOpt {
	return func(v *models.Video) { v.PublishedAt = tsPtr(ts) }
}

func withUser(id string) videoOpt {
	return func(v *models.Video) { v.UserID = id }
}

func withURL(url string) videoOpt {
	return func(v *models.Video) { v.URL = strPtr(url) }
}

func manual(reason string) videoOpt {
	return func(v *models.Video) {
		v.Manual = true
		if reason != "" {
			v.ManualReason = strPtr(reason)
		}
	}
}

func scrapedAt(t time.Time) videoOpt {
	return func(v *models.Video) { v.ScrapedAt = &t }
}

var nextVideoID int64

func newVideo(competitionID int64, opts ...videoOpt) models.Video {
	nextVideoID++
	v := models.Video{
		ID:            nextVideoID,
		CompetitionID: competitionID,
		UserID:        "user",
		Platform:      models.PlatformTikTok,
		Title:         "clip",
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}
