package shared

import (
	"strconv"

	"github.com/dujiao-next/announcements/internal/http/response"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// QueryPagination 读取 page / page_size，非数字按默认值处理
func QueryPagination(c *gin.Context) (int, int) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		q = pageQuery{}
	}
	return NormalizePagination(q.Page, q.PageSize)
}

func BuildPagination(page, pageSize int, total int64) response.Pagination {
	p := response.Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

// ParseUintParam 解析路径中的正整数 ID
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}
