package analytics

import (
	"strconv"
	"time"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	"github.com/noah-isme/trendx-analytics-api/pkg/export"
)

// Column maps one video field to an export column.
type Column struct {
	Header  string
	Numeric bool
	Value   func(models.Video) string
}

var (
	ColCreator     = Column{Header: "Creator", Value: func(v models.Video) string { return v.Creator() }}
	ColAccount     = Column{Header: "Platform Account", Value: func(v models.Video) string { return deref(v.AccountUsername) }}
	ColPlatform    = Column{Header: "Platform", Value: func(v models.Video) string { return string(v.Platform) }}
	ColCompetition = Column{Header: "Competition", Value: func(v models.Video) string { return deref(v.CompetitionName) }}
	ColTitle       = Column{Header: "Title", Value: func(v models.Video) string { return v.Title }}
	ColLink        = Column{Header: "Link", Value: func(v models.Video) string { return deref(v.URL) }}
	ColViews       = Column{Header: "Views", Numeric: true, Value: func(v models.Video) string { return itoa(v.Views) }}
	ColLikes       = Column{Header: "Likes", Numeric: true, Value: func(v models.Video) string { return itoa(v.Likes) }}
	ColComments    = Column{Header: "Comments", Numeric: true, Value: func(v models.Video) string { return itoa(v.Comments) }}
	ColShares      = Column{Header: "Shares", Numeric: true, Value: func(v models.Video) string { return itoa(v.Shares) }}
	ColPublishedAt = Column{Header: "Published At", Value: func(v models.Video) string { return formatUnix(v.PublishedAt) }}
	ColAddedAt     = Column{Header: "Added At", Value: func(v models.Video) string { return formatTime(v.ScrapedAt) }}
	ColAddedBy     = Column{Header: "Added By", Value: func(v models.Video) string { return deref(v.AddedBy) }}
	ColReason      = Column{Header: "Reason", Value: func(v models.Video) string { return deref(v.ManualReason) }}
	ColHashtags    = Column{Header: "Hashtags", Value: func(v models.Video) string { return deref(v.Hashtags) }}
)

// VideoColumns is the default video export layout.
var VideoColumns = []Column{ColCreator, ColPlatform, ColTitle, ColLink, ColViews, ColLikes, ColComments, ColShares, ColPublishedAt}

// ManualVideoColumns adds the curator metadata of manual entries.
var ManualVideoColumns = []Column{
	ColCreator, ColAccount, ColPlatform, ColCompetition, ColTitle, ColLink,
	ColViews, ColLikes, ColComments, ColAddedAt, ColAddedBy, ColReason, ColHashtags,
}

var rankingHeaders = []string{
	"Rank", "Creator", "Videos", "Views", "Likes", "Comments", "Shares",
	"TikTok Views", "YouTube Views", "Instagram Views", "Interactions", "Engagement (%)",
}

// ToFlatRows maps videos onto columns, keeping input order. Rows are built
// on demand from the slice, so the table can be written any number of times.
func ToFlatRows(videos []models.Video, columns []Column) export.Table {
	headers := make([]string, len(columns))
	numeric := make([]bool, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
		numeric[i] = col.Numeric
	}
	return export.Table{
		Headers: headers,
		Numeric: numeric,
		Rows: func(yield func([]string) bool) {
			for _, v := range videos {
				row := make([]string, len(columns))
				for i, col := range columns {
					row[i] = col.Value(v)
				}
				if !yield(row) {
					return
				}
			}
		},
	}
}

// RankingRows maps leaderboard entries onto the ranking export layout.
func RankingRows(entries []models.UserAggregate) export.Table {
	numeric := make([]bool, len(rankingHeaders))
	for i := range numeric {
		// creator and engagement rate are not integer counts
		numeric[i] = i != 1 && i != len(rankingHeaders)-1
	}
	return export.Table{
		Headers: rankingHeaders,
		Numeric: numeric,
		Rows: func(yield func([]string) bool) {
			for _, e := range entries {
				row := []string{
					strconv.Itoa(e.Rank), e.Creator, itoa(e.Videos), itoa(e.Views), itoa(e.Likes),
					itoa(e.Comments), itoa(e.Shares), itoa(e.TikTokViews), itoa(e.YouTubeViews),
					itoa(e.InstagramViews), itoa(e.TotalInteractions),
					strconv.FormatFloat(e.EngagementRate, 'f', 2, 64),
				}
				if !yield(row) {
					return
				}
			}
		},
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatUnix(ts *int64) string {
	if ts == nil {
		return ""
	}
	return time.Unix(*ts, 0).UTC().Format(time.RFC3339)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
