package repository

import (
	"strings"

	"gorm.io/gorm"
)

// announcementSearchColumns 后台与前台关键字检索的列
var announcementSearchColumns = []string{"title", "excerpt", "content_markdown", "content_html"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeOperator Postgres 的 LIKE 区分大小写，改用 ILIKE；SQLite 对 ASCII 默认不区分
func likeOperator(db *gorm.DB) string {
	if db != nil && db.Dialector != nil {
		switch strings.ToLower(db.Dialector.Name()) {
		case "postgres", "postgresql":
			return "ILIKE"
		}
	}
	return "LIKE"
}

// matchAny 关键字命中任一列即可，空关键字不追加条件
func matchAny(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		clause, n := likeClause(likeOperator(db), columns)
		if n == 0 {
			return db
		}
		pattern := "%" + likeEscaper.Replace(term) + "%"
		args := make([]interface{}, n)
		for i := range args {
			args[i] = pattern
		}
		return db.Where(clause, args...)
	}
}

func likeClause(operator string, columns []string) (string, int) {
	var b strings.Builder
	n := 0
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		if n > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString(column + " " + operator + ` ? ESCAPE '\'`)
		n++
	}
	if n == 0 {
		return "", 0
	}
	return "(" + b.String() + ")", n
}
