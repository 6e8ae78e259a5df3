package models

// RankingMetric is the sort key of a leaderboard.
type RankingMetric string

const (
	MetricViews      RankingMetric = "views"
	MetricLikes      RankingMetric = "likes"
	MetricEngagement RankingMetric = "engagement"
	MetricVideos     RankingMetric = "videos"
)

// Window is an inclusive publish-time range in Unix seconds.
type Window struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Contains reports whether ts falls inside the window, bounds included.
func (w Window) Contains(ts int64) bool {
	return w.Start <= ts && ts <= w.End
}

// RankingQuery carries every leaderboard parameter explicitly.
type RankingQuery struct {
	CompetitionID int64
	Window        *Window
	Metric        RankingMetric
	Limit         int
	MinViews      int64
}

// UserAggregate is one leaderboard row.
type UserAggregate struct {
	Rank              int     `json:"rank"`
	Creator           string  `json:"creator"`
	Videos            int64   `json:"videos"`
	Views             int64   `json:"views"`
	Likes             int64   `json:"likes"`
	Comments          int64   `json:"comments"`
	Shares            int64   `json:"shares"`
	TikTokViews       int64   `json:"tiktok_views"`
	YouTubeViews      int64   `json:"youtube_views"`
	InstagramViews    int64   `json:"instagram_views"`
	TotalInteractions int64   `json:"total_interactions"`
	EngagementRate    float64 `json:"engagement_rate"`
}

// RankingSummary holds the header totals of a leaderboard.
type RankingSummary struct {
	Creators          int     `json:"creators"`
	Videos            int64   `json:"videos"`
	Views             int64   `json:"views"`
	Likes             int64   `json:"likes"`
	AverageEngagement float64 `json:"average_engagement"`
}

// Ranking is the leaderboard payload returned to clients.
type Ranking struct {
	CompetitionID int64           `json:"competition_id"`
	Metric        RankingMetric   `json:"metric"`
	Window        *Window         `json:"window,omitempty"`
	Summary       RankingSummary  `json:"summary"`
	Entries       []UserAggregate `json:"entries"`
}
