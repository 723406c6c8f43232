package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"courtside/database"
	"courtside/events"
	"courtside/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PolicyOutcome string

const (
	OutcomeAutoApprove    PolicyOutcome = "AUTO_APPROVE"
	OutcomeRequiresReview PolicyOutcome = "REQUIRES_REVIEW"
	OutcomeRejected       PolicyOutcome = "REJECTED"
)

type PolicyDecision struct {
	Outcome       PolicyOutcome
	RefundPercent int
}

// CancellationPolicy is a step function of hours-until-start. Above
// FullRefundHours the refund is 100 %; between PartialHours and
// FullRefundHours it is PartialRefundPercent; below PartialHours the
// request is rejected outright unless forced, in which case it goes to
// admin review with no automatic refund.
type CancellationPolicy struct {
	FullRefundHours      int
	PartialHours         int
	PartialRefundPercent int
}

func PolicyFor(kind models.BookingKind) CancellationPolicy {
	if kind == models.KindSession {
		// Coached sessions: hard 24h block, full refund outside it.
		h := envInt("SESSION_CANCEL_BLOCK_HOURS", 24)
		return CancellationPolicy{FullRefundHours: h, PartialHours: h, PartialRefundPercent: 100}
	}
	return CancellationPolicy{
		FullRefundHours:      envInt("CANCEL_FULL_REFUND_HOURS", 48),
		PartialHours:         envInt("CANCEL_PARTIAL_HOURS", 24),
		PartialRefundPercent: envInt("CANCEL_PARTIAL_PERCENT", 50),
	}
}

func (p CancellationPolicy) Evaluate(startTime, requestTime time.Time, force bool) PolicyDecision {
	hours := startTime.Sub(requestTime).Hours()
	switch {
	case hours >= float64(p.FullRefundHours):
		return PolicyDecision{Outcome: OutcomeAutoApprove, RefundPercent: 100}
	case hours >= float64(p.PartialHours):
		return PolicyDecision{Outcome: OutcomeAutoApprove, RefundPercent: p.PartialRefundPercent}
	case force:
		return PolicyDecision{Outcome: OutcomeRequiresReview, RefundPercent: 0}
	default:
		return PolicyDecision{Outcome: OutcomeRejected}
	}
}

type CancellationOutcome struct {
	Status      string `json:"status"`
	RefundCents int64  `json:"refund_cents"`
	RequestID   uint   `json:"request_id,omitempty"`
}

// cancelBookingTx flips an active booking to CANCELLED, releases its slot
// claims and resolves its escrow entry with the given refund percentage.
func cancelBookingTx(tx *gorm.DB, b *models.Booking, refundPct int) (int64, error) {
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status IN ?", b.ID, []models.BookingStatus{models.BookingPending, models.BookingConfirmed}).
		Update("status", models.BookingCancelled)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("booking %d is no longer active: %w", b.ID, ErrConflict)
	}

	if err := tx.Where("booking_id = ?", b.ID).Delete(&models.BookingSlot{}).Error; err != nil {
		return 0, err
	}
	return resolveBookingEscrow(tx, b.ID, b.MemberCode, refundPct)
}

// CancelBooking applies the cancellation policy for the booking's kind.
// Auto-approved cancellations refund immediately; forced late requests
// create a PENDING CancellationRequest for admin review.
func CancelBooking(bookingID uint, memberCode, reason string, force bool) (*CancellationOutcome, error) {
	outcome := &CancellationOutcome{}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
			}
			return err
		}
		if b.MemberCode != memberCode {
			return fmt.Errorf("booking %d belongs to another member: %w", bookingID, ErrUnauthorized)
		}
		if !b.Status.Active() {
			return fmt.Errorf("booking %d is %s: %w", bookingID, b.Status, ErrConflict)
		}
		if b.Kind == models.KindSession {
			return fmt.Errorf("session bookings are cancelled through the session: %w", ErrValidation)
		}

		var pending int64
		if err := tx.Model(&models.CancellationRequest{}).
			Where("booking_id = ? AND status = ?", b.ID, models.CancellationPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("booking %d already has a pending cancellation request: %w", bookingID, ErrConflict)
		}

		decision := PolicyFor(b.Kind).Evaluate(b.StartTime, time.Now(), force)
		switch decision.Outcome {
		case OutcomeRejected:
			return fmt.Errorf("booking %d starts too soon to cancel: %w", bookingID, ErrConflict)
		case OutcomeRequiresReview:
			req := models.CancellationRequest{
				BookingID:     b.ID,
				MemberCode:    memberCode,
				Reason:        reason,
				Status:        models.CancellationPending,
				RefundPercent: decision.RefundPercent,
			}
			if err := tx.Create(&req).Error; err != nil {
				return err
			}
			outcome.Status = string(models.CancellationPending)
			outcome.RequestID = req.ID
			return nil
		default:
			refund, err := cancelBookingTx(tx, &b, decision.RefundPercent)
			if err != nil {
				return err
			}
			outcome.Status = string(models.CancellationApproved)
			outcome.RefundCents = refund
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if outcome.Status == string(models.CancellationApproved) {
		emit(events.RKBookingCancelled, events.BookingCancelled{
			BookingID: bookingID, MemberCode: memberCode, RefundCents: outcome.RefundCents,
		})
		if outcome.RefundCents > 0 {
			emit(events.RKRefundIssued, events.RefundIssued{
				MemberCode: memberCode, Amount: outcome.RefundCents,
				RefType: "BOOKING", RefID: fmt.Sprint(bookingID),
			})
		}
	}
	return outcome, nil
}

// ProcessCancellationRequest resolves a PENDING request. Approval triggers
// the refund exactly once; a resolved request can never be processed again.
func ProcessCancellationRequest(requestID uint, approve bool, adminRemark string) (*CancellationOutcome, error) {
	outcome := &CancellationOutcome{RequestID: requestID}
	var memberCode string
	var bookingID uint

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var req models.CancellationRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cancellation request %d: %w", requestID, ErrNotFound)
			}
			return err
		}
		if req.Status != models.CancellationPending {
			log.Printf("🚨 reprocessing attempt on cancellation request %d (status %s)", requestID, req.Status)
			return fmt.Errorf("cancellation request %d already %s: %w", requestID, req.Status, ErrConflict)
		}

		newStatus := models.CancellationRejected
		if approve {
			newStatus = models.CancellationApproved
		}
		now := time.Now()
		res := tx.Model(&req).
			Where("id = ? AND status = ?", req.ID, models.CancellationPending).
			Updates(map[string]any{
				"status":       newStatus,
				"admin_remark": adminRemark,
				"resolved_at":  &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cancellation request %d resolved concurrently: %w", requestID, ErrConflict)
		}

		outcome.Status = string(newStatus)
		memberCode = req.MemberCode
		bookingID = req.BookingID
		if !approve {
			return nil
		}

		var b models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, req.BookingID).Error; err != nil {
			return err
		}
		refund, err := cancelBookingTx(tx, &b, req.RefundPercent)
		if err != nil {
			return err
		}
		outcome.RefundCents = refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approve {
		emit(events.RKBookingCancelled, events.BookingCancelled{
			BookingID: bookingID, MemberCode: memberCode, RefundCents: outcome.RefundCents,
		})
		if outcome.RefundCents > 0 {
			emit(events.RKRefundIssued, events.RefundIssued{
				MemberCode: memberCode, Amount: outcome.RefundCents,
				RefType: "BOOKING", RefID: fmt.Sprint(bookingID),
			})
		}
	}
	return outcome, nil
}

func ListPendingCancellations(limit, offset int) ([]models.CancellationRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.CancellationRequest
	err := database.DB.Where("status = ?", models.CancellationPending).
		Order("id ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}
