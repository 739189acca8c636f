package admin

import (
	"fmt"
	"net/http"
	"strconv"

	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

var statsErrorRules = []handlershared.MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.announcement_not_found"},
	{Target: service.ErrPeriodInvalid, Code: response.CodeBadRequest, Key: "error.period_invalid"},
}

// GetAnnouncementStats 单条公告统计
func (h *Handler) GetAnnouncementStats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.GetStats(id, c.Query("period"))
	if err != nil {
		respondMapped(c, err, statsErrorRules, response.CodeInternal, "error.stats_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// ExportAnnouncementStats 导出单条公告按日统计 CSV
func (h *Handler) ExportAnnouncementStats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.GetStats(id, c.Query("period"))
	if err != nil {
		respondMapped(c, err, statsErrorRules, response.CodeInternal, "error.stats_export_failed")
		return
	}
	filename := service.StatsCSVFilename(stats.Slug, stats.Period)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", service.BuildStatsCSV(stats))
}

// GetGlobalStats 全局统计看板
func (h *Handler) GetGlobalStats(c *gin.Context) {
	forceRefresh, _ := strconv.ParseBool(c.DefaultQuery("force_refresh", "false"))
	stats, err := h.StatsService.GetGlobalStats(c.Request.Context(), service.GlobalStatsInput{
		Period:       c.Query("period"),
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		respondMapped(c, err, statsErrorRules, response.CodeInternal, "error.stats_fetch_failed")
		return
	}
	response.Success(c, stats)
}
