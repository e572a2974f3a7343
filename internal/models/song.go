package models

import (
	"time"
)

type Song struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"type:varchar(255);not null" json:"title"`
	Artist   string `gorm:"type:varchar(255);not null" json:"artist"`
	Filename string `gorm:"type:varchar(255);not null" json:"filename"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`

	// Materialized average over the song's ratings, recomputed inside the
	// rating upsert transaction.
	Rating      float64 `gorm:"default:0" json:"rating"`
	RatingCount int     `gorm:"default:0" json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Ratings []Rating `gorm:"foreignKey:SongID" json:"-"`
}

type SongUpload struct {
	Title  string `form:"title" binding:"required"`
	Artist string `form:"artist" binding:"required"`
}

// SongFilter holds the catalog's optional filters; zero values impose no
// constraint and present filters are ANDed.
type SongFilter struct {
	Title  string
	Artist string
	UserID uint
}
