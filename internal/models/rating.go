package models

import (
	"time"
)

type Rating struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	Value  int  `gorm:"not null" json:"value"`
	SongID uint `gorm:"not null;index:idx_ratings_user_song,priority:2" json:"song_id"`
	UserID uint `gorm:"not null;index:idx_ratings_user_song,priority:1" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
	Song Song `gorm:"foreignKey:SongID" json:"-"`
}

type RateSong struct {
	SongID uint `form:"song_id" binding:"required"`
	Rating int  `form:"rating" binding:"required,min=1,max=5"`
}
