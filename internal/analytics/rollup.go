package analytics

import (
	"sort"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
)

// SortCompetitions applies the default competition order: active first, then
// newest id first.
func SortCompetitions(competitions []models.Competition) []models.Competition {
	sorted := make([]models.Competition, len(competitions))
	copy(sorted, competitions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Active != sorted[j].Active {
			return sorted[i].Active
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}

// GlobalSummary rolls every competition, video and registered account into
// system-wide totals. Competitions without videos appear zero-filled.
func GlobalSummary(competitions []models.Competition, videos []models.Video, accounts []models.Account) models.GlobalSummary {
	summary := models.GlobalSummary{
		PerCompetition: make([]models.CompetitionRollup, 0, len(competitions)),
		PerPlatform:    PlatformBreakdown(videos),
	}

	type compAcc struct {
		totals rollupAcc
		users  map[string]struct{}
	}
	byComp := make(map[int64]*compAcc)
	for _, v := range videos {
		summary.TotalVideos++
		summary.TotalViews += v.Views
		summary.TotalLikes += v.Likes
		summary.TotalComments += v.Comments
		summary.TotalShares += v.Shares

		acc, ok := byComp[v.CompetitionID]
		if !ok {
			acc = &compAcc{users: make(map[string]struct{})}
			byComp[v.CompetitionID] = acc
		}
		acc.totals.add(v)
		acc.users[v.UserID] = struct{}{}
	}
	summary.CompetitionCount = len(byComp)
	summary.EngagementRate = EngagementRate(
		TotalInteractions(summary.TotalLikes, summary.TotalComments, summary.TotalShares),
		summary.TotalViews,
	)

	users := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		users[a.UserID] = struct{}{}
	}
	summary.TotalUsers = len(users)

	for _, c := range SortCompetitions(competitions) {
		row := models.CompetitionRollup{ID: c.ID, Name: c.Name, Active: c.Active}
		if acc, ok := byComp[c.ID]; ok {
			t := acc.totals
			row.Videos, row.Views, row.Likes, row.Comments, row.Shares = t.videos, t.views, t.likes, t.comments, t.shares
			row.Users = len(acc.users)
			row.AverageViews = AverageViews(t.views, t.videos)
			row.EngagementRate = t.engagement()
		}
		summary.PerCompetition = append(summary.PerCompetition, row)
	}
	sort.SliceStable(summary.PerCompetition, func(i, j int) bool {
		return summary.PerCompetition[i].Views > summary.PerCompetition[j].Views
	})
	return summary
}

// PlatformBreakdown groups videos by lowercase platform, most viewed first.
// Equal view counts keep alphabetical platform order.
func PlatformBreakdown(videos []models.Video) []models.PlatformRollup {
	accs := make(map[models.Platform]*rollupAcc)
	for _, v := range videos {
		p := models.NormalizePlatform(string(v.Platform))
		acc, ok := accs[p]
		if !ok {
			acc = &rollupAcc{}
			accs[p] = acc
		}
		acc.add(v)
	}

	rows := make([]models.PlatformRollup, 0, len(accs))
	for p, acc := range accs {
		rows = append(rows, models.PlatformRollup{
			Platform:       p,
			Videos:         acc.videos,
			Views:          acc.views,
			Likes:          acc.likes,
			Comments:       acc.comments,
			Shares:         acc.shares,
			AverageViews:   AverageViews(acc.views, acc.videos),
			EngagementRate: acc.engagement(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Platform < rows[j].Platform })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Views > rows[j].Views })
	return rows
}

// CompetitionOverview computes the header figures of one competition.
// Accounts with the synthetic prefix are left out of the per-platform account
// counts only.
func CompetitionOverview(competition models.Competition, videos []models.Video, syntheticPrefix string) models.CompetitionOverview {
	overview := models.CompetitionOverview{
		Competition:        competition,
		AccountsByPlatform: make(map[models.Platform]int, len(models.KnownPlatforms)),
	}
	for _, p := range models.KnownPlatforms {
		overview.AccountsByPlatform[p] = 0
	}

	var (
		totals       rollupAcc
		scoped       = make([]models.Video, 0, len(videos))
		users        = make(map[string]struct{})
		realAccounts = make(map[models.Platform]map[string]struct{})
	)
	for _, v := range videos {
		if v.CompetitionID != competition.ID {
			continue
		}
		scoped = append(scoped, v)
		totals.add(v)
		users[v.UserID] = struct{}{}
		if v.HasLink() {
			overview.VideosWithLink++
		}
		if v.PublishedAt != nil {
			ts := *v.PublishedAt
			if overview.FirstPublished == nil || ts < *overview.FirstPublished {
				overview.FirstPublished = &ts
			}
			if overview.LastPublished == nil || ts > *overview.LastPublished {
				last := ts
				overview.LastPublished = &last
			}
		}
		if models.IsSynthetic(v.UserID, syntheticPrefix) {
			continue
		}
		p := models.NormalizePlatform(string(v.Platform))
		if _, known := overview.AccountsByPlatform[p]; !known {
			continue
		}
		if realAccounts[p] == nil {
			realAccounts[p] = make(map[string]struct{})
		}
		realAccounts[p][v.UserID] = struct{}{}
	}
	for p, ids := range realAccounts {
		overview.AccountsByPlatform[p] = len(ids)
	}

	overview.Videos, overview.Views, overview.Likes = totals.videos, totals.views, totals.likes
	overview.Comments, overview.Shares = totals.comments, totals.shares
	overview.Users = len(users)
	overview.AverageViews = AverageViews(totals.views, totals.videos)
	overview.EngagementRate = totals.engagement()
	overview.PerPlatform = PlatformBreakdown(scoped)

	if overview.FirstPublished != nil {
		overview.DurationDays = int((*overview.LastPublished-*overview.FirstPublished)/secondsPerDay) + 1
		overview.VideosPerDay = ratio(totals.videos, int64(overview.DurationDays))
	}
	return overview
}

// TopCreators ranks creators across every competition by views.
func TopCreators(videos []models.Video, n int) []models.CreatorTotal {
	var (
		rows  []models.CreatorTotal
		accs  []*rollupAcc
		index = make(map[string]int)
	)
	for _, v := range videos {
		label := v.Creator()
		i, ok := index[label]
		if !ok {
			i = len(rows)
			index[label] = i
			rows = append(rows, models.CreatorTotal{Creator: label})
			accs = append(accs, &rollupAcc{})
		}
		accs[i].add(v)
	}

	out := make([]models.CreatorTotal, 0, len(rows))
	for i, row := range rows {
		acc := accs[i]
		if acc.views <= 0 {
			continue
		}
		row.Videos, row.Views, row.Likes = acc.videos, acc.views, acc.likes
		row.EngagementRate = acc.engagement()
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopVideos returns the n best videos by metric. Video count is not a per-video
// metric and is rejected.
func TopVideos(videos []models.Video, metric models.RankingMetric, n int) ([]models.Video, error) {
	metric, err := ParseMetric(string(metric))
	if err != nil {
		return nil, err
	}
	var key func(models.Video) float64
	switch metric {
	case models.MetricViews:
		key = func(v models.Video) float64 { return float64(v.Views) }
	case models.MetricLikes:
		key = func(v models.Video) float64 { return float64(v.Likes) }
	case models.MetricEngagement:
		key = func(v models.Video) float64 {
			return EngagementRate(TotalInteractions(v.Likes, v.Comments, v.Shares), v.Views)
		}
	default:
		return nil, unknownMetric(metric)
	}

	top := make([]models.Video, len(videos))
	copy(top, videos)
	sort.SliceStable(top, func(i, j int) bool { return key(top[i]) > key(top[j]) })
	if n > 0 && len(top) > n {
		top = top[:n]
	}
	return top, nil
}

// ManualSummary counts curator-added videos by platform and reason. Reasons
// are ordered by count, then by first appearance.
func ManualSummary(videos []models.Video) models.ManualSummary {
	summary := models.ManualSummary{
		ByPlatform: make(map[models.Platform]int),
		ByReason:   []models.ReasonCount{},
	}
	index := make(map[string]int)
	for _, v := range videos {
		if !v.Manual {
			continue
		}
		summary.Total++
		summary.Views += v.Views
		summary.ByPlatform[models.NormalizePlatform(string(v.Platform))]++

		reason := ManualReasonOf(v)
		i, ok := index[reason]
		if !ok {
			i = len(summary.ByReason)
			index[reason] = i
			summary.ByReason = append(summary.ByReason, models.ReasonCount{Reason: reason})
		}
		summary.ByReason[i].Count++
	}
	sort.SliceStable(summary.ByReason, func(i, j int) bool {
		return summary.ByReason[i].Count > summary.ByReason[j].Count
	})
	return summary
}

const noReason = "unspecified"

type rollupAcc struct {
	videos, views, likes, comments, shares int64
}

func (a *rollupAcc) add(v models.Video) {
	a.videos++
	a.views += v.Views
	a.likes += v.Likes
	a.comments += v.Comments
	a.shares += v.Shares
}

func (a *rollupAcc) engagement() float64 {
	return EngagementRate(TotalInteractions(a.likes, a.comments, a.shares), a.views)
}
