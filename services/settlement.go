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

type SettlementResult struct {
	SessionID     uint  `json:"session_id"`
	Revenue       int64 `json:"revenue"`
	CoachShare    int64 `json:"coach_share"`
	PlatformShare int64 `json:"platform_share"`
}

func lockedSession(tx *gorm.DB, sessionID uint) (*models.ClassSession, error) {
	var s models.ClassSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// SettleSession distributes a session's pooled escrow between coach and
// platform. Idempotent: RevenueDistributed plus the escrow HELD→RELEASED
// check-and-set guarantee the payout happens once; later or concurrent
// calls get ErrConflict and move no money.
func SettleSession(sessionID uint) (*SettlementResult, error) {
	var result *SettlementResult
	var coachCode string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockedSession(tx, sessionID)
		if err != nil {
			return err
		}
		if s.RevenueDistributed {
			log.Printf("🚨 duplicate settlement attempt for session %d", s.ID)
			return fmt.Errorf("session %d already settled: %w", s.ID, ErrConflict)
		}
		if s.CurrentParticipants == 0 {
			return fmt.Errorf("session %d has no participants to settle: %w", s.ID, ErrConflict)
		}

		coachShare, platformShare, err := settleEscrow(tx, models.SubjectSession, s.ID, s.CoachCode)
		if err != nil {
			return err
		}
		revenue := coachShare + platformShare
		if expected := s.PriceCents * int64(s.CurrentParticipants); revenue != expected {
			log.Printf("🚨 session %d escrow %d differs from price×participants %d", s.ID, revenue, expected)
		}

		res := tx.Model(s).
			Where("id = ? AND revenue_distributed = ?", s.ID, false).
			Updates(map[string]any{
				"revenue_distributed": true,
				"status":              models.SessionCompleted,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %d settled concurrently: %w", s.ID, ErrConflict)
		}

		coachCode = s.CoachCode
		result = &SettlementResult{
			SessionID:     s.ID,
			Revenue:       revenue,
			CoachShare:    coachShare,
			PlatformShare: platformShare,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	emit(events.RKSessionSettled, events.SessionSettled{
		SessionID:     sessionID,
		CoachCode:     coachCode,
		CoachShare:    result.CoachShare,
		PlatformShare: result.PlatformShare,
	})
	return result, nil
}

// EnrollInSession debits the session price from the member's wallet, pools
// it into the session's escrow entry and takes a seat.
func EnrollInSession(sessionID uint, memberCode string) (*models.SessionEnrollment, error) {
	var enrollment *models.SessionEnrollment
	var tierChange *TierChangeResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockedSession(tx, sessionID)
		if err != nil {
			return err
		}
		if s.Status != models.SessionScheduled {
			return fmt.Errorf("session %d is %s: %w", s.ID, s.Status, ErrConflict)
		}
		if !s.StartTime.After(time.Now()) {
			return fmt.Errorf("session %d already started: %w", s.ID, ErrValidation)
		}
		if s.CurrentParticipants >= s.Capacity {
			return fmt.Errorf("session %d is full: %w", s.ID, ErrConflict)
		}
		if s.CoachCode == memberCode {
			return fmt.Errorf("coach cannot enrol in own session: %w", ErrValidation)
		}

		var existing int64
		if err := tx.Model(&models.SessionEnrollment{}).
			Where("session_id = ? AND member_code = ? AND status = ?", s.ID, memberCode, models.EnrollmentConfirmed).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("member %s already enrolled in session %d: %w", memberCode, s.ID, ErrConflict)
		}

		w, err := lockedWallet(tx, memberCode)
		if err != nil {
			return err
		}
		refID := fmt.Sprint(s.ID)
		if _, err := debitWallet(tx, w, s.PriceCents, "SESSION", refID, "Class session enrolment"); err != nil {
			return err
		}
		if _, err := holdEscrow(tx, models.SubjectSession, s.ID, "", s.PriceCents); err != nil {
			return err
		}

		enrollment = &models.SessionEnrollment{
			SessionID:  s.ID,
			MemberCode: memberCode,
			PaidCents:  s.PriceCents,
			Status:     models.EnrollmentConfirmed,
		}
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		if err := tx.Model(s).
			Update("current_participants", gorm.Expr("current_participants + 1")).Error; err != nil {
			return err
		}

		if points := s.PriceCents / 100; points > 0 {
			tierChange, err = addPointsTx(tx, memberCode, points, 0)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tierChange != nil && tierChange.Changed {
		emit(events.RKTierChanged, events.TierChanged{
			MemberCode: memberCode, OldTier: tierChange.OldTier, NewTier: tierChange.NewTier,
		})
	}
	return enrollment, nil
}

// CancelEnrollment takes a member back out of a coached session. Inside the
// block window the request is refused unless forced; a forced late
// cancellation forfeits the payment to the platform.
func CancelEnrollment(sessionID uint, memberCode string, force bool) (*CancellationOutcome, error) {
	outcome := &CancellationOutcome{}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s, err := lockedSession(tx, sessionID)
		if err != nil {
			return err
		}
		if s.RevenueDistributed {
			return fmt.Errorf("session %d already settled: %w", s.ID, ErrConflict)
		}

		var e models.SessionEnrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ? AND member_code = ? AND status = ?", s.ID, memberCode, models.EnrollmentConfirmed).
			First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("enrolment for member %s in session %d: %w", memberCode, s.ID, ErrNotFound)
			}
			return err
		}

		decision := PolicyFor(models.KindSession).Evaluate(s.StartTime, time.Now(), force)
		if decision.Outcome == OutcomeRejected {
			return fmt.Errorf("session %d starts within the cancellation block window: %w", s.ID, ErrConflict)
		}

		var refund, forfeit int64
		if decision.Outcome == OutcomeAutoApprove {
			refund = e.PaidCents
		} else {
			// Forced late cancellation: the seat is freed, the money is not.
			forfeit = e.PaidCents
		}

		res := tx.Model(&e).
			Where("id = ? AND status = ?", e.ID, models.EnrollmentConfirmed).
			Update("status", models.EnrollmentCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("enrolment %d cancelled concurrently: %w", e.ID, ErrConflict)
		}
		if err := tx.Model(s).
			Update("current_participants", gorm.Expr("current_participants - 1")).Error; err != nil {
			return err
		}

		if err := reduceSessionHold(tx, s.ID, memberCode, refund, forfeit); err != nil {
			return err
		}
		outcome.Status = string(models.CancellationApproved)
		outcome.RefundCents = refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.RefundCents > 0 {
		emit(events.RKRefundIssued, events.RefundIssued{
			MemberCode: memberCode, Amount: outcome.RefundCents,
			RefType: "SESSION", RefID: fmt.Sprint(sessionID),
		})
	}
	return outcome, nil
}

// CreateSession schedules a coached class.
func CreateSession(coachCode, courtCode string, startTime, endTime time.Time, capacity int, priceCents int64) (*models.ClassSession, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive: %w", ErrValidation)
	}
	if priceCents <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	if !startTime.After(time.Now()) || !endTime.After(startTime) {
		return nil, fmt.Errorf("invalid session time window: %w", ErrValidation)
	}

	var coach models.Member
	if err := database.DB.Where("member_code = ? AND is_coach = true AND is_active = true", coachCode).
		First(&coach).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coach %s: %w", coachCode, ErrNotFound)
		}
		return nil, err
	}

	s := models.ClassSession{
		CoachCode:  coachCode,
		CourtCode:  courtCode,
		StartTime:  startTime,
		EndTime:    endTime,
		Capacity:   capacity,
		PriceCents: priceCents,
		Status:     models.SessionScheduled,
	}
	if err := database.DB.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
