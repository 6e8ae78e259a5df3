package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

const videoColumns = `v.id, v.competition_id, v.user_id, v.platform, v.title, v.url, v.published_timestamp, v.scraped_at,
        v.views, v.likes, v.comments, v.shares, v.is_admin_added, v.manual_reason, v.added_by, v.hashtags,
        u.discord_username, u.username AS account_username, c.name AS competition_name`

// RecordRepository reads competitions, accounts and videos from the record store.
// It never writes.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository instantiates the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

type videoRow struct {
	ID              int64          `db:"id"`
	CompetitionID   int64          `db:"competition_id"`
	UserID          sql.NullString `db:"user_id"`
	Platform        sql.NullString `db:"platform"`
	Title           sql.NullString `db:"title"`
	URL             sql.NullString `db:"url"`
	PublishedAt     sql.NullInt64  `db:"published_timestamp"`
	ScrapedAt       sql.NullTime   `db:"scraped_at"`
	Views           sql.NullInt64  `db:"views"`
	Likes           sql.NullInt64  `db:"likes"`
	Comments        sql.NullInt64  `db:"comments"`
	Shares          sql.NullInt64  `db:"shares"`
	Manual          sql.NullBool   `db:"is_admin_added"`
	ManualReason    sql.NullString `db:"manual_reason"`
	AddedBy         sql.NullString `db:"added_by"`
	Hashtags        sql.NullString `db:"hashtags"`
	CreatorName     sql.NullString `db:"discord_username"`
	AccountUsername sql.NullString `db:"account_username"`
	CompetitionName sql.NullString `db:"competition_name"`
}

func (r videoRow) toModel() models.Video {
	v := models.Video{
		ID:              r.ID,
		CompetitionID:   r.CompetitionID,
		UserID:          r.UserID.String,
		Platform:        models.Platform(r.Platform.String),
		Title:           r.Title.String,
		URL:             nullString(r.URL),
		Views:           count(r.Views),
		Likes:           count(r.Likes),
		Comments:        count(r.Comments),
		Shares:          count(r.Shares),
		Manual:          r.Manual.Valid && r.Manual.Bool,
		ManualReason:    nullString(r.ManualReason),
		AddedBy:         nullString(r.AddedBy),
		Hashtags:        nullString(r.Hashtags),
		CreatorName:     nullString(r.CreatorName),
		AccountUsername: nullString(r.AccountUsername),
		CompetitionName: nullString(r.CompetitionName),
	}
	if r.PublishedAt.Valid {
		ts := r.PublishedAt.Int64
		v.PublishedAt = &ts
	}
	if r.ScrapedAt.Valid {
		t := r.ScrapedAt.Time
		v.ScrapedAt = &t
	}
	return v
}

// ListVideos returns videos matching filter. Manual listings come back in
// ingestion order, everything else by views.
func (r *RecordRepository) ListVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(videoColumns)
	builder.WriteString(` FROM valid_videos v
        LEFT JOIN user_accounts u ON v.user_id = u.user_id AND v.platform = u.platform
        LEFT JOIN competitions c ON v.competition_id = c.id
        WHERE 1=1`)

	var args []interface{}
	if filter.CompetitionID != nil {
		args = append(args, *filter.CompetitionID)
		builder.WriteString(fmt.Sprintf(" AND v.competition_id = $%d", len(args)))
	}
	if filter.Window != nil {
		args = append(args, filter.Window.Start)
		builder.WriteString(fmt.Sprintf(" AND v.published_timestamp >= $%d", len(args)))
		args = append(args, filter.Window.End)
		builder.WriteString(fmt.Sprintf(" AND v.published_timestamp <= $%d", len(args)))
	}
	if filter.ManualOnly {
		builder.WriteString(" AND v.is_admin_added = TRUE")
	}
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		builder.WriteString(fmt.Sprintf(" AND v.manual_reason = $%d", len(args)))
	}
	if filter.ManualOnly {
		builder.WriteString(" ORDER BY v.scraped_at DESC NULLS LAST, v.views DESC, v.id")
	} else {
		builder.WriteString(" ORDER BY v.views DESC, v.id")
	}

	var rows []videoRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	videos := make([]models.Video, len(rows))
	for i, row := range rows {
		videos[i] = row.toModel()
	}
	return videos, nil
}

type accountRow struct {
	UserID      string         `db:"user_id"`
	Platform    sql.NullString `db:"platform"`
	Username    sql.NullString `db:"username"`
	DisplayName sql.NullString `db:"discord_username"`
}

// ListAccounts returns registry accounts matching filter.
func (r *RecordRepository) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	var builder strings.Builder
	builder.WriteString("SELECT user_id, platform, username, discord_username FROM user_accounts WHERE 1=1")

	var args []interface{}
	if filter.Platform != nil {
		args = append(args, string(models.NormalizePlatform(string(*filter.Platform))))
		builder.WriteString(fmt.Sprintf(" AND LOWER(platform) = $%d", len(args)))
	}
	if filter.ExcludeSynthetic && filter.SyntheticPrefix != "" {
		args = append(args, escapeLike(filter.SyntheticPrefix)+"%")
		builder.WriteString(fmt.Sprintf(" AND user_id NOT LIKE $%d", len(args)))
	}
	builder.WriteString(" ORDER BY user_id, platform")

	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]models.Account, len(rows))
	for i, row := range rows {
		accounts[i] = models.Account{
			UserID:      row.UserID,
			Platform:    models.Platform(row.Platform.String),
			Username:    nullString(row.Username),
			DisplayName: nullString(row.DisplayName),
		}
	}
	return accounts, nil
}

const competitionColumns = "id, name, is_active, hashtags, created_at"

// ListCompetitions returns every competition, active first then newest first.
func (r *RecordRepository) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	query := "SELECT " + competitionColumns + " FROM competitions ORDER BY is_active DESC, id DESC"
	var competitions []models.Competition
	if err := r.db.SelectContext(ctx, &competitions, query); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return competitions, nil
}

// GetCompetition fetches a competition by id.
func (r *RecordRepository) GetCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	query := "SELECT " + competitionColumns + " FROM competitions WHERE id = $1"
	var competition models.Competition
	if err := r.db.GetContext(ctx, &competition, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("competition %d not found", id))
		}
		return nil, fmt.Errorf("get competition %d: %w", id, err)
	}
	return &competition, nil
}

// Ping reports whether the record store answers.
func (r *RecordRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

// count maps missing and negative counters to zero.
func count(n sql.NullInt64) int64 {
	if !n.Valid || n.Int64 < 0 {
		return 0
	}
	return n.Int64
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	value := s.String
	return &value
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
