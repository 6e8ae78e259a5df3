package models

// GlobalSummary rolls every competition up into system-wide totals.
//
// TotalUsers counts distinct ids in the account registry, including accounts
// without videos. CompetitionRollup.Users counts only distinct users with at
// least one video in that competition.
type GlobalSummary struct {
	CompetitionCount int                 `json:"competition_count"`
	TotalVideos      int64               `json:"total_videos"`
	TotalViews       int64               `json:"total_views"`
	TotalLikes       int64               `json:"total_likes"`
	TotalComments    int64               `json:"total_comments"`
	TotalShares      int64               `json:"total_shares"`
	TotalUsers       int                 `json:"total_users"`
	EngagementRate   float64             `json:"engagement_rate"`
	PerCompetition   []CompetitionRollup `json:"per_competition"`
	PerPlatform      []PlatformRollup    `json:"per_platform"`
}

// CompetitionRollup is a zero-filled per-competition row.
type CompetitionRollup struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Active         bool    `json:"active"`
	Videos         int64   `json:"videos"`
	Views          int64   `json:"views"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	Users          int     `json:"users"`
	AverageViews   float64 `json:"average_views"`
	EngagementRate float64 `json:"engagement_rate"`
}

// PlatformRollup aggregates videos of one platform.
type PlatformRollup struct {
	Platform       Platform `json:"platform"`
	Videos         int64    `json:"videos"`
	Views          int64    `json:"views"`
	Likes          int64    `json:"likes"`
	Comments       int64    `json:"comments"`
	Shares         int64    `json:"shares"`
	AverageViews   float64  `json:"average_views"`
	EngagementRate float64  `json:"engagement_rate"`
}

// CompetitionOverview is the header card set for a single competition.
type CompetitionOverview struct {
	Competition        Competition      `json:"competition"`
	Videos             int64            `json:"videos"`
	Views              int64            `json:"views"`
	Likes              int64            `json:"likes"`
	Comments           int64            `json:"comments"`
	Shares             int64            `json:"shares"`
	Users              int              `json:"users"`
	AccountsByPlatform map[Platform]int `json:"accounts_by_platform"`
	PerPlatform        []PlatformRollup `json:"per_platform"`
	VideosWithLink     int              `json:"videos_with_link"`
	AverageViews       float64          `json:"average_views"`
	EngagementRate     float64          `json:"engagement_rate"`
	FirstPublished     *int64           `json:"first_published,omitempty"`
	LastPublished      *int64           `json:"last_published,omitempty"`
	DurationDays       int              `json:"duration_days"`
	VideosPerDay       float64          `json:"videos_per_day"`
}

// CreatorTotal is a cross-competition creator row.
type CreatorTotal struct {
	Creator        string  `json:"creator"`
	Videos         int64   `json:"videos"`
	Views          int64   `json:"views"`
	Likes          int64   `json:"likes"`
	EngagementRate float64 `json:"engagement_rate"`
}

// GlobalTop lists the strongest creators and videos across every competition.
type GlobalTop struct {
	Creators []CreatorTotal `json:"creators"`
	Videos   []Video        `json:"videos"`
}

// ManualSummary describes curator-added videos.
type ManualSummary struct {
	Total      int              `json:"total"`
	Views      int64            `json:"views"`
	ByPlatform map[Platform]int `json:"by_platform"`
	ByReason   []ReasonCount    `json:"by_reason"`
}

// ReasonCount counts manual videos sharing one reason.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// ManualListing is the curator view of manual videos.
type ManualListing struct {
	Summary ManualSummary `json:"summary"`
	Videos  []Video       `json:"videos"`
}
