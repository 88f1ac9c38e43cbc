package models

import "gorm.io/gorm"

// Message is a chat message between the two participants of a booking.
type Message struct {
	gorm.Model
	BookingID uint   `gorm:"index;not null"`
	SenderID  uint   `gorm:"index;not null"`
	Body      string `gorm:"type:text;not null"`
}
