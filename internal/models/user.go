package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, never the plaintext
	Guest     bool      `gorm:"default:false" json:"guest"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Songs   []Song   `gorm:"foreignKey:UserID" json:"songs,omitempty"`
	Ratings []Rating `gorm:"foreignKey:UserID" json:"-"`
}

type UserRegister struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Guest    bool   `form:"guest"`
}

type UserLogin struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}
