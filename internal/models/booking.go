package models

import "gorm.io/gorm"

// Booking statuses. A booking starts pending and ends in one of the two
// terminal states; terminal bookings never transition again.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	gorm.Model
	Reference string `gorm:"uniqueIndex;not null"`
	StudentID uint   `gorm:"index;not null"`
	TutorID   uint   `gorm:"index;not null"`
	Student   *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Tutor     *User  `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Date      string `gorm:"size:10;not null"` // YYYY-MM-DD
	Time      string `gorm:"size:5;not null"`  // HH:MM
	Status    string `gorm:"index;default:'pending'"`
}

// IsTerminalBookingStatus reports whether status admits no further transitions.
func IsTerminalBookingStatus(status string) bool {
	return status == BookingStatusCancelled || status == BookingStatusCompleted
}
