package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin     = "ADMIN"
	RoleWebmaster = "WEBMASTER"
	RoleUser      = "USER"
)

type User struct {
	gorm.Model
	Name      string    `json:"name" gorm:"default:''"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Role      string    `json:"role" gorm:"default:'USER'"` // USER, WEBMASTER, ADMIN
	Password  string    `json:"-" gorm:"not null"`
	LastLogin time.Time `json:"last_login" gorm:"default:NULL"`
	IsDeleted bool      `json:"-" gorm:"default:false"`
}

// IsPrivileged reports whether the user may fetch content directly
// instead of going through the email dispatch flow.
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleWebmaster
}
