package database

import (
	"gorm.io/gorm"

	"github.com/hextras/hextras-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// WithCoordinates restricts tasks to rows that can be placed on the map
func WithCoordinates(db *gorm.DB) *gorm.DB {
	return db.Where("tasks.latitude IS NOT NULL AND tasks.longitude IS NOT NULL")
}
