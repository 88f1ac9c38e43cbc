package models

import "gorm.io/gorm"

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment records the charge raised when a booking is confirmed. One
// payment per booking; a failed charge is kept for reconciliation and
// never blocks the confirmation that triggered it.
type Payment struct {
	gorm.Model
	BookingID      uint `gorm:"uniqueIndex;not null"`
	StudentID      uint `gorm:"index"`
	TutorID        uint `gorm:"index"`
	Amount         float64
	Currency       string `gorm:"size:3;default:'usd'"`
	StripeIntentID string
	Status         string `gorm:"default:'pending'"`
}
