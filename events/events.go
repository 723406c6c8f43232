package events

// Routing keys for outbound domain events. Delivery (mail, push, chat) is
// someone else's problem; the engine only publishes.
const (
	RKBookingConfirmed = "booking.confirmed"
	RKBookingCancelled = "booking.cancelled"
	RKRefundIssued     = "refund.issued"
	RKTierChanged      = "tier.changed"
	RKSessionSettled   = "session.settled"
)

type BookingConfirmed struct {
	BookingID    uint   `json:"booking_id"`
	MemberCode   string `json:"member_code"`
	Amount       int64  `json:"amount"`
	PointsEarned int64  `json:"points_earned"`
}

type BookingCancelled struct {
	BookingID   uint   `json:"booking_id"`
	MemberCode  string `json:"member_code"`
	RefundCents int64  `json:"refund_cents"`
}

type RefundIssued struct {
	MemberCode string `json:"member_code"`
	Amount     int64  `json:"amount"`
	RefType    string `json:"ref_type"`
	RefID      string `json:"ref_id"`
}

type TierChanged struct {
	MemberCode string `json:"member_code"`
	OldTier    string `json:"old_tier"`
	NewTier    string `json:"new_tier"`
}

type SessionSettled struct {
	SessionID     uint   `json:"session_id"`
	CoachCode     string `json:"coach_code"`
	CoachShare    int64  `json:"coach_share"`
	PlatformShare int64  `json:"platform_share"`
}
