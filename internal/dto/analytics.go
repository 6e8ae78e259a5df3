package dto

import "github.com/noah-isme/trendx-analytics-api/internal/models"

// WindowParams selects a publish-time window. Explicit start/end bounds take
// precedence over a preset.
type WindowParams struct {
	Preset string `form:"preset" validate:"omitempty,oneof=all last_week last_month last_3_months"`
	Start  string `form:"start"`
	End    string `form:"end"`
}

// PageParams selects a page of a list response.
type PageParams struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,oneof=25 50 100 200"`
}

// RankingRequest captures GET /competitions/:id/ranking query parameters.
type RankingRequest struct {
	CompetitionID int64  `form:"-" validate:"required,min=1"`
	Metric        string `form:"metric"`
	Limit         int    `form:"limit" validate:"omitempty,min=1,max=1000"`
	MinViews      int64  `form:"min_views" validate:"min=0"`
	WindowParams
	PageParams
}

// VideoListRequest captures GET /competitions/:id/videos query parameters.
type VideoListRequest struct {
	CompetitionID int64  `form:"-" validate:"required,min=1"`
	Platform      string `form:"platform" validate:"omitempty,oneof=tiktok youtube instagram"`
	LinkOnly      bool   `form:"link_only"`
	ViralOnly     bool   `form:"viral_only"`
	PageParams
}

// ManualVideoRequest captures GET /manual-videos query parameters.
type ManualVideoRequest struct {
	CompetitionID *int64 `form:"competition_id" validate:"omitempty,min=1"`
	Reason        string `form:"reason" validate:"max=200"`
	PageParams
}

// SeriesRequest captures time series query parameters. A zero CompetitionID
// selects every competition.
type SeriesRequest struct {
	CompetitionID int64 `form:"-" validate:"min=0"`
	WindowParams
}

// GlobalTopRequest captures GET /global/top query parameters.
type GlobalTopRequest struct {
	N      int    `form:"n" validate:"omitempty,min=1,max=100"`
	Metric string `form:"metric"`
}

// ExportFormatParams selects the download format of an export endpoint.
type ExportFormatParams struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// InvalidateRequest captures POST /cache/invalidate payload. A nil
// CompetitionID drops every cached aggregate.
type InvalidateRequest struct {
	CompetitionID *int64 `json:"competition_id" validate:"omitempty,min=1"`
}

// InvalidateResponse reports how many cache entries were dropped.
type InvalidateResponse struct {
	Deleted int `json:"deleted"`
}

// ExportJobResponse exposes snapshot job state.
type ExportJobResponse struct {
	ID        string              `json:"id"`
	Kind      models.ExportKind   `json:"kind"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
