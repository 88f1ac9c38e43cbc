package models

import (
	"time"

	"gorm.io/gorm"
)

// Application roles
const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null"`
	Role         string `gorm:"default:'student'"`
	Status       string `gorm:"default:'active'"`
	KYCStatus    string `gorm:"default:'not_started'"`
	LastLoginAt  time.Time
	TokenVersion int `gorm:"default:1"`
}

// IsRegisterableRole reports whether role may be chosen at registration.
// Admin accounts are seeded, never registered.
func IsRegisterableRole(role string) bool {
	return role == RoleStudent || role == RoleTutor
}
