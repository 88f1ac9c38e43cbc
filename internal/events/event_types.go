package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated       EventType = "booking_created"
	EventBookingStatusChanged EventType = "booking_status_changed"
	EventKYCSubmitted         EventType = "kyc_submitted"
	EventKYCStatusChanged     EventType = "kyc_status_changed"
	EventPaymentRecorded      EventType = "payment_recorded"
)

// Event represents a domain event emitted by services after a committed
// state change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   uint        `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	BookingID uint   `json:"booking_id"`
	Reference string `json:"reference"`
	StudentID uint   `json:"student_id"`
	TutorID   uint   `json:"tutor_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// BookingStatusChangedPayload payload.
type BookingStatusChangedPayload struct {
	BookingID uint   `json:"booking_id"`
	Reference string `json:"reference"`
	StudentID uint   `json:"student_id"`
	TutorID   uint   `json:"tutor_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// KYCSubmittedPayload payload.
type KYCSubmittedPayload struct {
	RecordID uint `json:"record_id"`
	UserID   uint `json:"user_id"`
}

// KYCStatusChangedPayload payload.
type KYCStatusChangedPayload struct {
	RecordID  uint   `json:"record_id"`
	UserID    uint   `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Comment   string `json:"comment,omitempty"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	PaymentID uint    `json:"payment_id"`
	BookingID uint    `json:"booking_id"`
	StudentID uint    `json:"student_id"`
	TutorID   uint    `json:"tutor_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}
