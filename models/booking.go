package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Active means the booking still holds its slot claims.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

type BookingKind string

const (
	KindCourt   BookingKind = "COURT"
	KindSession BookingKind = "SESSION"
)

type Slot struct {
	gorm.Model

	CourtCode  string    `gorm:"size:32;index:idx_court_start,unique" json:"court_code"`
	StartTime  time.Time `gorm:"index:idx_court_start,unique" json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PriceCents int64     `json:"price_cents"`
	IsOpen     bool      `gorm:"default:true" json:"is_open"`
}

type BookingMeta struct {
	Purpose     string `json:"purpose"`
	PlayerCount int    `json:"player_count"`
}

type Booking struct {
	gorm.Model

	MemberID      uint                                `gorm:"index"`
	MemberCode    string                              `gorm:"index;size:32" json:"member_code"`
	Kind          BookingKind                         `gorm:"size:16;default:COURT" json:"kind"`
	SessionID     *uint                               `gorm:"index" json:"session_id,omitempty"`
	Status        BookingStatus                       `gorm:"size:16;index" json:"status"`
	TotalAmount   int64                               `json:"total_amount"`
	PaymentMethod string                              `gorm:"size:16" json:"payment_method"`
	Meta          datatypes.JSONType[BookingMeta]     `json:"meta"`
	PointsEarned  int64                               `json:"points_earned"`
	StartTime     time.Time                           `gorm:"index" json:"start_time"`

	Slots []BookingSlot `gorm:"foreignKey:BookingID"`
}

// BookingSlot is the slot claim row. The unique index on SlotID is the
// exclusivity backstop: only one live claim may exist per slot. Claims are
// hard-deleted when a booking releases its slots; the Booking row itself
// is never deleted.
type BookingSlot struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	BookingID uint `gorm:"index"`
	SlotID    uint `gorm:"uniqueIndex"`
}
