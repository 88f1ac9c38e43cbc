package models

import "gorm.io/gorm"

// KYC statuses
const (
	KYCStatusNotStarted = "not_started"
	KYCStatusPending    = "pending"
	KYCStatusApproved   = "approved"
	KYCStatusRejected   = "rejected"
)

// KYCRecord holds a tutor's verification documents. At most one record
// exists per user; re-submission overwrites the existing record.
type KYCRecord struct {
	gorm.Model
	UserID         uint   `gorm:"uniqueIndex;not null"`
	IDDocumentURL  string `gorm:"not null"`
	PhotoURL       string `gorm:"not null"`
	CertificateURL string `gorm:"not null"`
	ResumeURL      string `gorm:"not null"`
	Status         string `gorm:"default:'pending'"`
	ReviewComment  string
	ReviewedBy     *uint
}
