package repository

import "time"

// AnnouncementListFilter 查询公告列表的过滤条件
type AnnouncementListFilter struct {
	Page          int
	PageSize      int
	Status        string
	CategoryID    uint
	CategorySlug  string
	Search        string
	Featured      *bool
	OnlyPublished bool
	Now           time.Time
	OrderBy       string
	WithRelations bool
}

// CategoryListFilter 查询公告分类列表的过滤条件
type CategoryListFilter struct {
	OnlyActive    bool
	Search        string
	WithPublished bool
	PublishedAsOf time.Time
}

// DayCountRow 按日计数结果
type DayCountRow struct {
	Day   string
	Total int64
}

// ReferrerCountRow 来源计数结果
type ReferrerCountRow struct {
	Referrer string
	Total    int64
}
