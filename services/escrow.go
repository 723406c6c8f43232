package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"courtside/database"
	"courtside/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func lockedEscrowEntry(tx *gorm.DB, subjectType models.EscrowSubject, subjectID uint) (*models.EscrowLedgerEntry, error) {
	var entry models.EscrowLedgerEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("escrow entry %s/%d: %w", subjectType, subjectID, ErrNotFound)
		}
		return nil, err
	}
	return &entry, nil
}

// holdEscrow moves funds into the platform pool. Booking subjects get one
// entry for the full amount; session subjects pool enrolment payments into
// a single HELD entry that grows while the session is open.
func holdEscrow(tx *gorm.DB, subjectType models.EscrowSubject, subjectID uint, memberCode string, amount int64) (*models.EscrowLedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("escrow hold amount %d must be positive: %w", amount, ErrValidation)
	}

	var entry models.EscrowLedgerEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		First(&entry).Error
	if err == nil {
		if entry.Status != models.EscrowHeld {
			log.Printf("🚨 escrow hold on resolved entry %s/%d (status %s)", subjectType, subjectID, entry.Status)
			return nil, fmt.Errorf("escrow entry %s/%d already %s: %w", subjectType, subjectID, entry.Status, ErrConflict)
		}
		res := tx.Model(&entry).Where("id = ? AND status = ?", entry.ID, models.EscrowHeld).
			Updates(map[string]any{
				"amount":     gorm.Expr("amount + ?", amount),
				"held_cents": gorm.Expr("held_cents + ?", amount),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("escrow entry %s/%d resolved concurrently: %w", subjectType, subjectID, ErrConflict)
		}
		entry.Amount += amount
		entry.HeldCents += amount
		return &entry, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry = models.EscrowLedgerEntry{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		MemberCode:  memberCode,
		Amount:      amount,
		HeldCents:   amount,
		Status:      models.EscrowHeld,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// splitRevenue divides an escrowed amount between coach and platform.
// The platform share is the remainder, so the two always sum to amount.
func splitRevenue(amount int64, coachPct int64) (int64, int64) {
	coach := decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(coachPct)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
	return coach, amount - coach
}

// settleEscrow resolves a HELD entry to RELEASED exactly once and pays out
// the split. coachCode may be empty (plain court bookings), in which case
// the platform keeps the whole amount. Losing a settle/refund race returns
// ErrConflict.
func settleEscrow(tx *gorm.DB, subjectType models.EscrowSubject, subjectID uint, coachCode string) (int64, int64, error) {
	entry, err := lockedEscrowEntry(tx, subjectType, subjectID)
	if err != nil {
		return 0, 0, err
	}
	if entry.Status != models.EscrowHeld {
		log.Printf("🚨 double settlement attempt on escrow %s/%d (status %s)", subjectType, subjectID, entry.Status)
		return 0, 0, fmt.Errorf("escrow entry %s/%d already %s: %w", subjectType, subjectID, entry.Status, ErrConflict)
	}

	var coachShare, platformShare int64
	if coachCode == "" {
		coachShare, platformShare = 0, entry.Amount
	} else {
		coachShare, platformShare = splitRevenue(entry.Amount, coachSharePercent())
	}

	res := tx.Model(entry).
		Where("id = ? AND status = ?", entry.ID, models.EscrowHeld).
		Updates(map[string]any{
			"status":               models.EscrowReleased,
			"coach_code":           coachCode,
			"coach_share_cents":    gorm.Expr("coach_share_cents + ?", coachShare),
			"platform_share_cents": gorm.Expr("platform_share_cents + ?", platformShare),
		})
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, fmt.Errorf("escrow entry %s/%d resolved concurrently: %w", subjectType, subjectID, ErrConflict)
	}

	refID := strconv.FormatUint(uint64(subjectID), 10)
	if coachShare > 0 {
		cw, err := lockedWallet(tx, coachCode)
		if err != nil {
			return 0, 0, err
		}
		if _, err := creditWallet(tx, cw, coachShare, models.TrxRevenueShare, string(subjectType), refID, "Revenue share"); err != nil {
			return 0, 0, err
		}
	}
	if platformShare > 0 {
		pw, err := lockedWallet(tx, PlatformCode())
		if err != nil {
			return 0, 0, err
		}
		if _, err := creditWallet(tx, pw, platformShare, models.TrxRevenueShare, string(subjectType), refID, "Platform revenue"); err != nil {
			return 0, 0, err
		}
	}
	return coachShare, platformShare, nil
}

// resolveBookingEscrow refunds refundPct of a booking's HELD entry to the
// member and forfeits the remainder to the platform, resolving the entry
// to REFUNDED.
func resolveBookingEscrow(tx *gorm.DB, bookingID uint, memberCode string, refundPct int) (int64, error) {
	entry, err := lockedEscrowEntry(tx, models.SubjectBooking, bookingID)
	if err != nil {
		return 0, err
	}
	if entry.Status != models.EscrowHeld {
		log.Printf("🚨 double refund attempt on escrow BOOKING/%d (status %s)", bookingID, entry.Status)
		return 0, fmt.Errorf("escrow entry BOOKING/%d already %s: %w", bookingID, entry.Status, ErrConflict)
	}
	if refundPct < 0 || refundPct > 100 {
		return 0, fmt.Errorf("refund percent %d out of range: %w", refundPct, ErrValidation)
	}

	refund := decimal.NewFromInt(entry.Amount).
		Mul(decimal.NewFromInt(int64(refundPct))).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
	forfeit := entry.Amount - refund

	res := tx.Model(entry).
		Where("id = ? AND status = ?", entry.ID, models.EscrowHeld).
		Updates(map[string]any{
			"status":          models.EscrowRefunded,
			"refunded_cents":  refund,
			"forfeited_cents": forfeit,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("escrow entry BOOKING/%d resolved concurrently: %w", bookingID, ErrConflict)
	}

	refID := strconv.FormatUint(uint64(bookingID), 10)
	if refund > 0 {
		w, err := lockedWallet(tx, memberCode)
		if err != nil {
			return 0, err
		}
		if _, err := creditWallet(tx, w, refund, models.TrxRefund, "BOOKING", refID, "Cancellation refund"); err != nil {
			return 0, err
		}
	}
	if forfeit > 0 {
		pw, err := lockedWallet(tx, PlatformCode())
		if err != nil {
			return 0, err
		}
		if _, err := creditWallet(tx, pw, forfeit, models.TrxRevenueShare, "BOOKING", refID, "Cancellation forfeit"); err != nil {
			return 0, err
		}
	}
	return refund, nil
}

// reduceSessionHold takes one enrolment's payment back out of a session's
// pooled HELD entry: refundCents to the member, forfeitCents to the
// platform. The entry stays HELD for the remaining participants.
func reduceSessionHold(tx *gorm.DB, sessionID uint, memberCode string, refundCents, forfeitCents int64) error {
	entry, err := lockedEscrowEntry(tx, models.SubjectSession, sessionID)
	if err != nil {
		return err
	}
	if entry.Status != models.EscrowHeld {
		log.Printf("🚨 refund attempt on resolved escrow SESSION/%d (status %s)", sessionID, entry.Status)
		return fmt.Errorf("escrow entry SESSION/%d already %s: %w", sessionID, entry.Status, ErrConflict)
	}
	total := refundCents + forfeitCents
	if total <= 0 || total > entry.Amount {
		return fmt.Errorf("refund %d exceeds held amount %d: %w", total, entry.Amount, ErrValidation)
	}

	res := tx.Model(entry).
		Where("id = ? AND status = ?", entry.ID, models.EscrowHeld).
		Updates(map[string]any{
			"amount":          gorm.Expr("amount - ?", total),
			"refunded_cents":  gorm.Expr("refunded_cents + ?", refundCents),
			"forfeited_cents": gorm.Expr("forfeited_cents + ?", forfeitCents),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("escrow entry SESSION/%d resolved concurrently: %w", sessionID, ErrConflict)
	}

	refID := strconv.FormatUint(uint64(sessionID), 10)
	if refundCents > 0 {
		w, err := lockedWallet(tx, memberCode)
		if err != nil {
			return err
		}
		if _, err := creditWallet(tx, w, refundCents, models.TrxRefund, "SESSION", refID, "Enrollment refund"); err != nil {
			return err
		}
	}
	if forfeitCents > 0 {
		pw, err := lockedWallet(tx, PlatformCode())
		if err != nil {
			return err
		}
		if _, err := creditWallet(tx, pw, forfeitCents, models.TrxRevenueShare, "SESSION", refID, "Late cancellation forfeit"); err != nil {
			return err
		}
	}
	return nil
}

// RefundFromEscrow refunds a held amount back to a member. A refund of the
// full held amount resolves the entry to REFUNDED; a smaller amount is only
// legal on pooled session entries and shrinks the hold. Booking refunds
// cancel the booking and release its slot claims in the same transaction,
// otherwise the booking would be stuck CONFIRMED on a resolved entry with
// no transition able to touch it.
func RefundFromEscrow(memberCode string, amountCents int64, subjectType models.EscrowSubject, subjectID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		entry, err := lockedEscrowEntry(tx, subjectType, subjectID)
		if err != nil {
			return err
		}
		if entry.Status != models.EscrowHeld {
			log.Printf("🚨 refund attempt on resolved escrow %s/%d (status %s)", subjectType, subjectID, entry.Status)
			return fmt.Errorf("escrow entry %s/%d already %s: %w", subjectType, subjectID, entry.Status, ErrConflict)
		}
		if amountCents <= 0 || amountCents > entry.Amount {
			return fmt.Errorf("refund %d exceeds held amount %d: %w", amountCents, entry.Amount, ErrValidation)
		}
		if amountCents < entry.Amount {
			if subjectType != models.SubjectSession {
				return fmt.Errorf("partial refund of %s escrow is not supported: %w", subjectType, ErrValidation)
			}
			return reduceSessionHold(tx, subjectID, memberCode, amountCents, 0)
		}

		if subjectType == models.SubjectBooking {
			var b models.Booking
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, subjectID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("booking %d: %w", subjectID, ErrNotFound)
				}
				return err
			}
			if b.MemberCode != memberCode {
				return fmt.Errorf("refund target %s does not hold booking %d: %w", memberCode, subjectID, ErrValidation)
			}
			_, err := cancelBookingTx(tx, &b, 100)
			return err
		}

		res := tx.Model(entry).
			Where("id = ? AND status = ?", entry.ID, models.EscrowHeld).
			Updates(map[string]any{
				"status":         models.EscrowRefunded,
				"refunded_cents": gorm.Expr("refunded_cents + ?", amountCents),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("escrow entry %s/%d resolved concurrently: %w", subjectType, subjectID, ErrConflict)
		}

		w, err := lockedWallet(tx, memberCode)
		if err != nil {
			return err
		}
		_, err = creditWallet(tx, w, amountCents, models.TrxRefund,
			string(subjectType), strconv.FormatUint(uint64(subjectID), 10), "Escrow refund")
		return err
	})
}

// PlatformEscrowBalance is the sum of all currently held funds.
func PlatformEscrowBalance() (int64, error) {
	var sum int64
	err := database.DB.Model(&models.EscrowLedgerEntry{}).
		Where("status = ?", models.EscrowHeld).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	return sum, err
}

// PlatformRevenue is everything the platform has kept: settlement shares
// plus cancellation forfeits.
func PlatformRevenue() (int64, error) {
	var sum int64
	err := database.DB.Model(&models.EscrowLedgerEntry{}).
		Select("COALESCE(SUM(platform_share_cents + forfeited_cents), 0)").Scan(&sum).Error
	return sum, err
}

func CoachRevenue(coachCode string) (int64, error) {
	var sum int64
	err := database.DB.Model(&models.EscrowLedgerEntry{}).
		Where("coach_code = ?", coachCode).
		Select("COALESCE(SUM(coach_share_cents), 0)").Scan(&sum).Error
	return sum, err
}
