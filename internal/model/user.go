package model

import (
	"gorm.io/gorm"
)

// User is the single persisted record type. Username and email are unique
// across the table; Password holds only the bcrypt hash; RefreshToken is the
// single currently valid refresh token, or empty when the session is closed.
type User struct {
	gorm.Model
	FullName     string `gorm:"column:full_name;not null"`
	Username     string `gorm:"column:username;uniqueIndex;not null"` // stored lowercased
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	Password     string `gorm:"column:password;not null"`
	Avatar       string `gorm:"column:avatar;not null"`
	CoverImage   string `gorm:"column:cover_image"`
	RefreshToken string `gorm:"column:refresh_token;default:null"`
}
