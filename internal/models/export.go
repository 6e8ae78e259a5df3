package models

import "time"

// ExportFormat enumerates downloadable formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportKind names the dataset an export snapshot renders.
type ExportKind string

const (
	ExportKindRanking ExportKind = "ranking"
	ExportKindVideos  ExportKind = "videos"
	ExportKindManual  ExportKind = "manual"
)

// ExportStatus tracks an export snapshot job.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportParams captures what a snapshot renders. Every filter is explicit so a
// queued job renders the same rows the request described.
type ExportParams struct {
	Kind          ExportKind    `json:"kind" validate:"required,oneof=ranking videos manual"`
	Format        ExportFormat  `json:"format" validate:"required,oneof=csv pdf"`
	CompetitionID *int64        `json:"competition_id,omitempty" validate:"omitempty,min=1"`
	Metric        RankingMetric `json:"metric,omitempty"`
	Limit         int           `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
	Preset        string        `json:"preset,omitempty" validate:"omitempty,oneof=all last_week last_month last_3_months"`
	Start         string        `json:"start,omitempty"`
	End           string        `json:"end,omitempty"`
	MinViews      int64         `json:"min_views,omitempty" validate:"omitempty,min=0"`
	Platform      Platform      `json:"platform,omitempty" validate:"omitempty,oneof=tiktok youtube instagram"`
	LinkOnly      bool          `json:"link_only,omitempty"`
	ViralOnly     bool          `json:"viral_only,omitempty"`
	Reason        string        `json:"reason,omitempty" validate:"max=200"`
}

// ExportJob is a stored snapshot request.
type ExportJob struct {
	ID           string       `json:"id"`
	Params       ExportParams `json:"params"`
	Status       ExportStatus `json:"status"`
	ResultURL    *string      `json:"result_url,omitempty"`
	ErrorMessage *string      `json:"error,omitempty"`
	CreatedBy    string       `json:"created_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}
