package repository

import (
	"errors"

	"gorm.io/gorm"
)

// firstOrNil 查询单条记录，不存在时返回 nil, nil
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var dest T
	if err := query.First(&dest, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dest, nil
}

// applyPagination 页码小于 1 按第一页处理，pageSize<=0 不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	return query.Limit(pageSize).Offset(pageOffset(page, pageSize))
}

func pageOffset(page, pageSize int) int {
	if page < 1 || pageSize <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}
