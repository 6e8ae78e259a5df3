package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trendx-analytics-api/internal/models"
	appErrors "github.com/noah-isme/trendx-analytics-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONIncludesPaginationAndMeta(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, []int{1, 2}, &models.Pagination{Page: 1, PageSize: 50, TotalCount: 2, PageCount: 1}, map[string]interface{}{"cache_hit": false})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["pagination"].(map[string]interface{})["page_count"])
	assert.Equal(t, false, body["meta"].(map[string]interface{})["cache_hit"])
}

func TestErrorUsesDomainStatus(t *testing.T) {
	c, rec := newContext()
	Error(c, appErrors.Clone(appErrors.ErrUnknownMetric, "unsupported metric shares"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNKNOWN_METRIC"`)
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsServerFailures(t *testing.T) {
	c, rec := newContext()
	Error(c, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, c.Errors, 1)
	assert.True(t, c.IsAborted())
}

func TestAttachmentHeaders(t *testing.T) {
	c, rec := newContext()
	Attachment(c, "text/csv; charset=utf-8", "ranking_3.csv")
	c.Status(http.StatusOK)

	assert.Equal(t, `attachment; filename="ranking_3.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
}
