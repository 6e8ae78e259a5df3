package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

var videoRowColumns = []string{
	"id", "competition_id", "user_id", "platform", "title", "url", "published_timestamp", "scraped_at",
	"views", "likes", "comments", "shares", "is_admin_added", "manual_reason", "added_by", "hashtags",
	"discord_username", "account_username", "competition_name",
}

func newRecordRepoMock(t *testing.T) (*RecordRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewRecordRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestRecordRepositoryListVideosNormalisesCounts(t *testing.T) {
	repo, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	scraped := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(videoRowColumns).
		AddRow(1, 3, "u1", "TikTok", "clip", "https://t/1", 1704067200, scraped, 500, nil, -4, 2, false, nil, nil, "#go", "Ana", "@ana", "Spring").
		AddRow(2, 3, "u2", "youtube", "other", nil, nil, nil, nil, 1, 0, 0, nil, nil, nil, nil, nil, nil, "Spring")

	compID := int64(3)
	mock.ExpectQuery(`FROM valid_videos v\s+LEFT JOIN user_accounts u ON v.user_id = u.user_id AND v.platform = u.platform\s+LEFT JOIN competitions c ON v.competition_id = c.id\s+WHERE 1=1 AND v.competition_id = \$1 AND v.published_timestamp >= \$2 AND v.published_timestamp <= \$3 ORDER BY v.views DESC, v.id`).
		WithArgs(compID, int64(100), int64(200)).
		WillReturnRows(rows)

	videos, err := repo.ListVideos(context.Background(), models.VideoFilter{
		CompetitionID: &compID,
		Window:        &models.Window{Start: 100, End: 200},
	})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	first := videos[0]
	assert.Equal(t, int64(500), first.Views)
	assert.Equal(t, int64(0), first.Likes)
	assert.Equal(t, int64(0), first.Comments)
	assert.Equal(t, int64(2), first.Shares)
	assert.Equal(t, "Ana", first.Creator())
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, int64(1704067200), *first.PublishedAt)
	require.NotNil(t, first.ScrapedAt)
	assert.True(t, scraped.Equal(*first.ScrapedAt))

	second := videos[1]
	assert.Nil(t, second.URL)
	assert.Nil(t, second.PublishedAt)
	assert.False(t, second.Manual)
	assert.Equal(t, models.UnknownCreator, second.Creator())
	assert.Equal(t, "Spring", *second.CompetitionName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListManualVideos(t *testing.T) {
	repo, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND v.is_admin_added = TRUE AND v.manual_reason = $1 ORDER BY v.scraped_at DESC NULLS LAST, v.views DESC, v.id")).
		WithArgs("scraper miss").
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow(9, 1, "u1", "instagram", "clip", nil, nil, nil, 10, 1, 0, 0, true, "scraper miss", "mod", nil, nil, nil, "Winter"))

	videos, err := repo.ListVideos(context.Background(), models.VideoFilter{ManualOnly: true, Reason: "scraper miss"})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.True(t, videos[0].Manual)
	assert.Equal(t, "mod", *videos[0].AddedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListVideosWrapsFailure(t *testing.T) {
	repo, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM valid_videos").WillReturnError(sql.ErrConnDone)

	_, err := repo.ListVideos(context.Background(), models.VideoFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestRecordRepositoryListAccountsExcludesSynthetic(t *testing.T) {
	repo, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	platform := models.Platform("TikTok")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, platform, username, discord_username FROM user_accounts WHERE 1=1 AND LOWER(platform) = $1 AND user_id NOT LIKE $2 ORDER BY user_id, platform")).
		WithArgs("tiktok", `demo\_user\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "platform", "username", "discord_username"}).
			AddRow("u1", "tiktok", "@ana", nil))

	accounts, err := repo.ListAccounts(context.Background(), models.AccountFilter{
		Platform:         &platform,
		ExcludeSynthetic: true,
		SyntheticPrefix:  "demo_user_",
	})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "@ana", *accounts[0].Username)
	assert.Nil(t, accounts[0].DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryCompetitions(t *testing.T) {
	repo, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	columns := []string{"id", "name", "is_active", "hashtags", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, is_active, hashtags, created_at FROM competitions ORDER BY is_active DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(4, "Spring", true, "#spring", time.Now()).
			AddRow(2, "Winter", false, nil, nil))

	competitions, err := repo.ListCompetitions(context.Background())
	require.NoError(t, err)
	require.Len(t, competitions, 2)
	assert.True(t, competitions[0].Active)
	assert.Nil(t, competitions[1].Hashtag)

	mock.ExpectQuery(regexp.QuoteMeta("FROM competitions WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = repo.GetCompetition(context.Background(), 7)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
