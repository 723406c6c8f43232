package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// ClassSession is a coached session members enrol into. RevenueDistributed
// is the settlement idempotency marker: set exactly once, together with the
// escrow entry moving HELD -> RELEASED.
type ClassSession struct {
	gorm.Model

	CoachCode           string        `gorm:"index;size:32" json:"coach_code"`
	CourtCode           string        `gorm:"size:32" json:"court_code"`
	StartTime           time.Time     `gorm:"index" json:"start_time"`
	EndTime             time.Time     `json:"end_time"`
	Capacity            int           `json:"capacity"`
	CurrentParticipants int           `json:"current_participants"`
	PriceCents          int64         `json:"price_cents"`
	Status              SessionStatus `gorm:"size:16;index" json:"status"`
	RevenueDistributed  bool          `gorm:"default:false" json:"revenue_distributed"`

	Enrollments []SessionEnrollment `gorm:"foreignKey:SessionID"`
}

type EnrollmentStatus string

const (
	EnrollmentConfirmed EnrollmentStatus = "CONFIRMED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

type SessionEnrollment struct {
	gorm.Model

	SessionID  uint             `gorm:"index"`
	MemberCode string           `gorm:"size:32;index" json:"member_code"`
	PaidCents  int64            `json:"paid_cents"`
	Status     EnrollmentStatus `gorm:"size:16;index" json:"status"`
}
