package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
)

const (
	trendWeek      = 7
	trendMinDays   = 8
	trendThreshold = 10.0
	defaultTopDays = 10
)

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

type bucketAcc struct {
	count, views, likes, comments int64
}

func (a *bucketAcc) add(v models.Video) {
	a.count++
	a.views += v.Views
	a.likes += v.Likes
	a.comments += v.Comments
}

// ByDay buckets videos by their publish date in loc, ascending. Videos
// without a publish timestamp are skipped.
func ByDay(videos []models.Video, loc *time.Location) []models.DailyBucket {
	if loc == nil {
		loc = time.UTC
	}
	accs := make(map[string]*bucketAcc)
	for _, v := range videos {
		if v.PublishedAt == nil {
			continue
		}
		date := time.Unix(*v.PublishedAt, 0).In(loc).Format(dateLayout)
		acc, ok := accs[date]
		if !ok {
			acc = &bucketAcc{}
			accs[date] = acc
		}
		acc.add(v)
	}

	dates := make([]string, 0, len(accs))
	for date := range accs {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]models.DailyBucket, 0, len(dates))
	for _, date := range dates {
		acc := accs[date]
		days = append(days, models.DailyBucket{
			Date:        date,
			Count:       acc.count,
			SumViews:    acc.views,
			SumLikes:    acc.likes,
			SumComments: acc.comments,
			MeanViews:   ratio(acc.views, acc.count),
			MeanLikes:   ratio(acc.likes, acc.count),
		})
	}
	return days
}

// ByWeekday returns exactly seven buckets, Monday through Sunday, zero-filled.
func ByWeekday(videos []models.Video, loc *time.Location) []models.WeekdayBucket {
	if loc == nil {
		loc = time.UTC
	}
	var accs [7]bucketAcc
	for _, v := range videos {
		if v.PublishedAt == nil {
			continue
		}
		wd := time.Unix(*v.PublishedAt, 0).In(loc).Weekday()
		accs[(int(wd)+6)%7].add(v)
	}

	buckets := make([]models.WeekdayBucket, len(weekdayOrder))
	for i, wd := range weekdayOrder {
		acc := accs[i]
		buckets[i] = models.WeekdayBucket{
			Weekday:     wd.String(),
			Count:       acc.count,
			SumViews:    acc.views,
			SumLikes:    acc.likes,
			SumComments: acc.comments,
			MeanViews:   ratio(acc.views, acc.count),
			MeanLikes:   ratio(acc.likes, acc.count),
		}
	}
	return buckets
}

// BestWeekdays picks the weekday with most videos and the one with the best
// mean views. Ties resolve to the earlier weekday. Empty buckets yield
// empty names.
func BestWeekdays(buckets []models.WeekdayBucket) models.BestWeekdays {
	var (
		best      models.BestWeekdays
		mostCount int64
		bestMean  float64
		seenMean  bool
	)
	for _, b := range buckets {
		if b.Count == 0 {
			continue
		}
		if b.Count > mostCount {
			mostCount = b.Count
			best.MostVideos = b.Weekday
		}
		if !seenMean || b.MeanViews > bestMean {
			seenMean = true
			bestMean = b.MeanViews
			best.BestMeanViews = b.Weekday
		}
	}
	return best
}

// DetectTrend compares the mean daily video count of the first and last seven
// buckets. It needs at least eight buckets.
func DetectTrend(days []models.DailyBucket) models.Trend {
	if len(days) < trendMinDays {
		return models.Trend{}
	}
	first := meanCount(days[:trendWeek])
	last := meanCount(days[len(days)-trendWeek:])

	var change float64
	if first != 0 {
		change = (last - first) / first * 100
	}
	direction := models.TrendStable
	switch {
	case change > trendThreshold:
		direction = models.TrendRising
	case change < -trendThreshold:
		direction = models.TrendFalling
	}
	return models.Trend{
		Available:     true,
		FirstWeekMean: roundFloat(first),
		LastWeekMean:  roundFloat(last),
		ChangePercent: roundFloat(change),
		Direction:     direction,
	}
}

// Cumulative returns the running view total over ascending days.
func Cumulative(days []models.DailyBucket) []models.CumulativePoint {
	points := make([]models.CumulativePoint, len(days))
	var running int64
	for i, d := range days {
		running += d.SumViews
		points[i] = models.CumulativePoint{Date: d.Date, Views: d.SumViews, CumulativeViews: running}
	}
	return points
}

// TopDays returns the n days with most views; ties keep date order.
func TopDays(days []models.DailyBucket, n int) []models.DailyBucket {
	if n <= 0 {
		n = defaultTopDays
	}
	top := make([]models.DailyBucket, len(days))
	copy(top, days)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].SumViews > top[j].SumViews
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// DailySeriesOf assembles the daily buckets with their trend, running total
// and best days.
func DailySeriesOf(videos []models.Video, loc *time.Location) models.DailySeries {
	days := ByDay(videos, loc)
	return models.DailySeries{
		Days:       days,
		Trend:      DetectTrend(days),
		Cumulative: Cumulative(days),
		TopDays:    TopDays(days, defaultTopDays),
	}
}

// WeekdaySeriesOf assembles the weekday buckets and their best days.
func WeekdaySeriesOf(videos []models.Video, loc *time.Location) models.WeekdaySeries {
	buckets := ByWeekday(videos, loc)
	return models.WeekdaySeries{Buckets: buckets, Best: BestWeekdays(buckets)}
}

func meanCount(days []models.DailyBucket) float64 {
	var total int64
	for _, d := range days {
		total += d.Count
	}
	return float64(total) / float64(len(days))
}
