package common

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Paginate applies page/page_size to a query.
// Usage: db.Scopes(common.Paginate(req)).Find(&jobs)
func Paginate(req PaginationRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.GetPageSize())
	}
}

// SortBy applies whitelisted ordering; unknown fields fall back to
// created_at DESC.
func SortBy(sortBy, sortOrder string, allowedFields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if sortBy == "" {
			return db.Order("created_at DESC")
		}
		allowed := false
		for _, f := range allowedFields {
			if f == sortBy {
				allowed = true
				break
			}
		}
		if !allowed {
			return db.Order("created_at DESC")
		}
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))
	}
}

// KeywordSearch applies a LIKE filter across the given fields.
func KeywordSearch(keyword string, fields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" || len(fields) == 0 {
			return db
		}
		conditions := make([]string, 0, len(fields))
		args := make([]interface{}, 0, len(fields))
		for _, field := range fields {
			conditions = append(conditions, fmt.Sprintf("%s LIKE ?", field))
			args = append(args, "%"+keyword+"%")
		}
		return db.Where("("+strings.Join(conditions, " OR ")+")", args...)
	}
}

// ActiveOnly filters to rows whose status column is "active".
func ActiveOnly() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", "active")
	}
}
