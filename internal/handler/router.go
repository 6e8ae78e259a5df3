package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trendx-analytics-api/internal/middleware"
	"github.com/noah-isme/trendx-analytics-api/internal/models"
)

// Routes groups the handlers mounted under the API prefix.
type Routes struct {
	Analytics *AnalyticsHandler
	Exports   *ExportHandler
	Tokens    middleware.TokenValidator
}

// Register mounts the analytics API on group.
func Register(group *gin.RouterGroup, routes Routes) {
	authenticated := middleware.JWT(routes.Tokens)
	curators := middleware.RequireRoles(models.RoleAdmin, models.RoleCurator)

	a := routes.Analytics
	group.GET("/competitions", a.Competitions)
	competition := group.Group("/competitions/:id")
	competition.GET("/overview", a.Overview)
	competition.GET("/ranking", a.Ranking)
	competition.GET("/videos", a.Videos)
	competition.GET("/series/daily", a.DailySeries)
	competition.GET("/series/weekday", a.WeekdaySeries)

	global := group.Group("/global")
	global.GET("/summary", a.GlobalSummary)
	global.GET("/series/daily", a.GlobalDailySeries)
	global.GET("/top", a.GlobalTop)

	group.GET("/system/metrics", a.System)
	group.GET("/manual-videos", authenticated, curators, a.ManualVideos)
	group.POST("/cache/invalidate", authenticated, curators, a.InvalidateCache)

	if e := routes.Exports; e != nil {
		competition.GET("/ranking/export", e.RankingExport)
		competition.GET("/videos/export", e.VideoExport)
		group.GET("/manual-videos/export", authenticated, curators, e.ManualExport)
		group.POST("/exports", authenticated, e.CreateJob)
		group.GET("/exports/:id", authenticated, e.JobStatus)
		group.GET("/exports/download/:token", e.Download)
	}
}
