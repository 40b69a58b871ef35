package models

import "github.com/lib/pq"

// CoachingPack is an English coaching offer shown on the site.
type CoachingPack struct {
	BaseModel
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        int64          `json:"price"`
	Duration     string         `json:"duration"`
	Features     pq.StringArray `gorm:"type:text[]" json:"features"`
	IsPopular    bool           `json:"is_popular"`
	DisplayOrder int            `gorm:"index" json:"display_order"`
}
