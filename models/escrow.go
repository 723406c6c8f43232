package models

import (
	"gorm.io/gorm"
)

type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "HELD"
	EscrowReleased EscrowStatus = "RELEASED"
	EscrowRefunded EscrowStatus = "REFUNDED"
)

type EscrowSubject string

const (
	SubjectBooking EscrowSubject = "BOOKING"
	SubjectSession EscrowSubject = "SESSION"
)

// EscrowLedgerEntry tracks platform-held funds per booking or session.
// An entry resolves exactly once: HELD -> RELEASED or HELD -> REFUNDED.
// Amount is the currently held remainder; HeldCents the cumulative total
// ever held. ForfeitedCents is money kept on cancellation, separate from
// the settlement shares so the settled amount stays reconstructable.
// At a terminal state
// HeldCents = RefundedCents + ForfeitedCents + CoachShareCents + PlatformShareCents.
type EscrowLedgerEntry struct {
	gorm.Model

	SubjectType EscrowSubject `gorm:"size:16;uniqueIndex:idx_escrow_subject" json:"subject_type"`
	SubjectID   uint          `gorm:"uniqueIndex:idx_escrow_subject" json:"subject_id"`
	MemberCode  string        `gorm:"size:32;index" json:"member_code"`
	CoachCode   string        `gorm:"size:32;index" json:"coach_code"`
	Amount      int64         `json:"amount"`
	HeldCents   int64         `json:"held_cents"`
	Status      EscrowStatus  `gorm:"size:16;index" json:"status"`

	RefundedCents      int64 `json:"refunded_cents"`
	ForfeitedCents     int64 `json:"forfeited_cents"`
	CoachShareCents    int64 `json:"coach_share_cents"`
	PlatformShareCents int64 `json:"platform_share_cents"`
}
