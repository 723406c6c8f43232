package models

import (
	"time"

	"gorm.io/gorm"
)

type CancellationStatus string

const (
	CancellationPending  CancellationStatus = "PENDING"
	CancellationApproved CancellationStatus = "APPROVED"
	CancellationRejected CancellationStatus = "REJECTED"
)

// CancellationRequest is created when policy routes a cancellation to admin
// review. PENDING -> APPROVED | REJECTED, terminal once resolved.
type CancellationRequest struct {
	gorm.Model

	BookingID     uint               `gorm:"index"`
	MemberCode    string             `gorm:"index;size:32" json:"member_code"`
	Reason        string             `gorm:"size:255" json:"reason"`
	Status        CancellationStatus `gorm:"size:16;index" json:"status"`
	RefundPercent int                `json:"refund_percent"`
	AdminRemark   string             `gorm:"size:255" json:"admin_remark"`
	ResolvedAt    *time.Time         `json:"resolved_at,omitempty"`
}
