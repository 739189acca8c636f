package service

import (
	"fmt"
	"strconv"
	"strings"
)

// StatsCSVFilename 导出文件名 stats-<slug>-<period>.csv
func StatsCSVFilename(slug, period string) string {
	return fmt.Sprintf("stats-%s-%s.csv", slug, period)
}

// BuildStatsCSV 按日导出浏览与点赞，每行以换行结束；字段均为日期与整数，无需转义
func BuildStatsCSV(stats *AnnouncementStats) []byte {
	var b strings.Builder
	b.WriteString("Date,Views,Likes\n")
	if stats == nil {
		return []byte(b.String())
	}
	likes := make(map[string]int64, len(stats.LikesByDay))
	for _, point := range stats.LikesByDay {
		likes[point.Date] = point.Count
	}
	for _, point := range stats.ViewsByDay {
		b.WriteString(point.Date)
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(point.Count, 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(likes[point.Date], 10))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
