package models

import "time"

// UnknownCreator labels videos with no linked account display name.
const UnknownCreator = "Unknown user"

// Video is a single competition entry. Counts are never negative.
type Video struct {
	ID            int64      `json:"id"`
	CompetitionID int64      `json:"competition_id"`
	UserID        string     `json:"user_id"`
	Platform      Platform   `json:"platform"`
	Title         string     `json:"title"`
	URL           *string    `json:"url,omitempty"`
	PublishedAt   *int64     `json:"published_at,omitempty"`
	ScrapedAt     *time.Time `json:"scraped_at,omitempty"`
	Views         int64      `json:"views"`
	Likes         int64      `json:"likes"`
	Comments      int64      `json:"comments"`
	Shares        int64      `json:"shares"`
	Manual        bool       `json:"manual"`
	ManualReason  *string    `json:"manual_reason,omitempty"`
	AddedBy       *string    `json:"added_by,omitempty"`
	Hashtags      *string    `json:"hashtags,omitempty"`

	CreatorName     *string `json:"creator_name,omitempty"`
	AccountUsername *string `json:"account_username,omitempty"`
	CompetitionName *string `json:"competition_name,omitempty"`
}

// Creator returns the ranking label for the video.
func (v Video) Creator() string {
	if v.CreatorName == nil || *v.CreatorName == "" {
		return UnknownCreator
	}
	return *v.CreatorName
}

// HasLink reports whether the video carries a non-empty URL.
func (v Video) HasLink() bool {
	return v.URL != nil && *v.URL != ""
}

// VideoFilter scopes repository video reads. A nil CompetitionID reads every competition.
type VideoFilter struct {
	CompetitionID *int64
	Window        *Window
	ManualOnly    bool
	Reason        string
}

// VideoQuery describes the filtered video listing.
type VideoQuery struct {
	CompetitionID int64
	Platform      Platform
	LinkOnly      bool
	ViralOnly     bool
	ManualOnly    bool
	Reason        string
}

// VideoListing is a filtered page of videos plus the stats of the full filtered set.
type VideoListing struct {
	ViralThreshold float64    `json:"viral_threshold"`
	Stats          VideoStats `json:"stats"`
	Videos         []Video    `json:"videos"`
}

// VideoStats summarises a filtered video set.
type VideoStats struct {
	Count        int     `json:"count"`
	WithLink     int     `json:"with_link"`
	LinkPercent  float64 `json:"link_percent"`
	TotalViews   int64   `json:"total_views"`
	TotalLikes   int64   `json:"total_likes"`
	AverageViews float64 `json:"average_views"`
}
