package models

// TrendDirection classifies the change between the first and last week of a series.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// DailyBucket aggregates the videos published on one calendar date.
type DailyBucket struct {
	Date        string  `json:"date"`
	Count       int64   `json:"count"`
	SumViews    int64   `json:"sum_views"`
	SumLikes    int64   `json:"sum_likes"`
	SumComments int64   `json:"sum_comments"`
	MeanViews   float64 `json:"mean_views"`
	MeanLikes   float64 `json:"mean_likes"`
}

// WeekdayBucket aggregates the videos published on one weekday.
type WeekdayBucket struct {
	Weekday     string  `json:"weekday"`
	Count       int64   `json:"count"`
	SumViews    int64   `json:"sum_views"`
	SumLikes    int64   `json:"sum_likes"`
	SumComments int64   `json:"sum_comments"`
	MeanViews   float64 `json:"mean_views"`
	MeanLikes   float64 `json:"mean_likes"`
}

// BestWeekdays names the busiest weekday and the weekday with the best mean views.
type BestWeekdays struct {
	MostVideos    string `json:"most_videos,omitempty"`
	BestMeanViews string `json:"best_mean_views,omitempty"`
}

// Trend compares the mean daily video count of the first and last seven buckets.
type Trend struct {
	Available     bool           `json:"available"`
	FirstWeekMean float64        `json:"first_week_mean"`
	LastWeekMean  float64        `json:"last_week_mean"`
	ChangePercent float64        `json:"change_percent"`
	Direction     TrendDirection `json:"direction,omitempty"`
}

// CumulativePoint is one step of the running view total.
type CumulativePoint struct {
	Date            string `json:"date"`
	Views           int64  `json:"views"`
	CumulativeViews int64  `json:"cumulative_views"`
}

// DailySeries bundles the day-bucketed views of a record set.
type DailySeries struct {
	Days       []DailyBucket     `json:"days"`
	Trend      Trend             `json:"trend"`
	Cumulative []CumulativePoint `json:"cumulative"`
	TopDays    []DailyBucket     `json:"top_days"`
}

// WeekdaySeries bundles the seven weekday buckets.
type WeekdaySeries struct {
	Buckets []WeekdayBucket `json:"buckets"`
	Best    BestWeekdays    `json:"best"`
}
