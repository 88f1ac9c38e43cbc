package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// TutorProfile is the public face of a tutor. Profiles are listed to
// students only once the tutor's KYC is approved.
type TutorProfile struct {
	gorm.Model
	UserID     uint           `gorm:"uniqueIndex;not null"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bio        string         `gorm:"type:text"`
	Subjects   pq.StringArray `gorm:"type:text[]" json:"subjects"`
	HourlyRate float64        `gorm:"not null;default:0"`
}

type Course struct {
	gorm.Model
	TutorID     uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Subject     string `gorm:"index"`
	Description string `gorm:"type:text"`
	Price       float64
}
