package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"courtside/database"
	"courtside/events"
	"courtside/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookSlots reserves the requested slots, debits the wallet, holds the
// amount in escrow and awards points, all in one transaction. Multi-slot
// requests are all-or-nothing: one taken slot fails the whole batch with
// ErrSlotUnavailable.
func BookSlots(memberCode string, slotIDs []uint, purpose string, playerCount int, paymentMethod string) (*models.Booking, error) {
	if len(slotIDs) == 0 {
		return nil, fmt.Errorf("at least one slot is required: %w", ErrValidation)
	}
	seen := make(map[uint]bool, len(slotIDs))
	for _, id := range slotIDs {
		if seen[id] {
			return nil, fmt.Errorf("slot %d duplicated in request: %w", id, ErrValidation)
		}
		seen[id] = true
	}
	if paymentMethod == "" {
		paymentMethod = "WALLET"
	}

	var (
		booking    *models.Booking
		tierChange *TierChangeResult
	)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		member, err := lockedMember(tx, memberCode)
		if err != nil {
			return err
		}

		// Lock slot rows in id order so concurrent bookings over the same
		// set cannot deadlock.
		var slots []models.Slot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", slotIDs).Order("id ASC").Find(&slots).Error; err != nil {
			return err
		}
		if len(slots) != len(slotIDs) {
			return fmt.Errorf("one or more slots do not exist: %w", ErrNotFound)
		}

		now := time.Now()
		openH, closeH := operatingHours()
		loc := venueLocation()
		var total int64
		earliest := slots[0].StartTime
		for _, s := range slots {
			if !s.IsOpen {
				return fmt.Errorf("slot %d is closed: %w", s.ID, ErrSlotUnavailable)
			}
			if !s.StartTime.After(now) {
				return fmt.Errorf("slot %d is in the past: %w", s.ID, ErrValidation)
			}
			start := s.StartTime.In(loc)
			if h := start.Hour(); h < openH || h >= closeH {
				return fmt.Errorf("slot %d outside operating hours %02d:00-%02d:00: %w", s.ID, openH, closeH, ErrValidation)
			}
			if closeH < 24 {
				closing := time.Date(start.Year(), start.Month(), start.Day(), closeH, 0, 0, 0, loc)
				if s.EndTime.After(closing) {
					return fmt.Errorf("slot %d ends after closing time %02d:00: %w", s.ID, closeH, ErrValidation)
				}
			}
			total += s.PriceCents
			if s.StartTime.Before(earliest) {
				earliest = s.StartTime
			}
		}

		var claimed int64
		if err := tx.Model(&models.BookingSlot{}).
			Where("slot_id IN ?", slotIDs).Count(&claimed).Error; err != nil {
			return err
		}
		if claimed > 0 {
			return fmt.Errorf("one or more slots already booked: %w", ErrSlotUnavailable)
		}

		booking = &models.Booking{
			MemberID:      member.ID,
			MemberCode:    member.MemberCode,
			Kind:          models.KindCourt,
			Status:        models.BookingPending,
			TotalAmount:   total,
			PaymentMethod: paymentMethod,
			Meta:          datatypes.NewJSONType(models.BookingMeta{Purpose: purpose, PlayerCount: playerCount}),
			StartTime:     earliest,
		}
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		// The unique index on BookingSlot.SlotID is the backstop: under
		// concurrent attempts exactly one insert wins per slot.
		for _, s := range slots {
			claim := models.BookingSlot{BookingID: booking.ID, SlotID: s.ID}
			if err := tx.Create(&claim).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("slot %d claimed concurrently: %w", s.ID, ErrSlotUnavailable)
				}
				return err
			}
		}

		w, err := lockedWallet(tx, memberCode)
		if err != nil {
			return err
		}
		refID := strconv.FormatUint(uint64(booking.ID), 10)
		if _, err := debitWallet(tx, w, total, "BOOKING", refID, "Court booking"); err != nil {
			return err
		}
		if _, err := holdEscrow(tx, models.SubjectBooking, booking.ID, memberCode, total); err != nil {
			return err
		}

		// One tier point per currency unit spent.
		points := total / 100
		if points > 0 {
			tierChange, err = addPointsTx(tx, memberCode, points, 0)
			if err != nil {
				return err
			}
		}

		booking.PointsEarned = points
		booking.Status = models.BookingConfirmed
		return tx.Model(booking).Updates(map[string]any{
			"status":        models.BookingConfirmed,
			"points_earned": points,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	emit(events.RKBookingConfirmed, events.BookingConfirmed{
		BookingID:    booking.ID,
		MemberCode:   memberCode,
		Amount:       booking.TotalAmount,
		PointsEarned: booking.PointsEarned,
	})
	if tierChange != nil && tierChange.Changed {
		emit(events.RKTierChanged, events.TierChanged{
			MemberCode: memberCode, OldTier: tierChange.OldTier, NewTier: tierChange.NewTier,
		})
	}
	return booking, nil
}

// CompleteBooking marks a confirmed court booking as played and releases
// its escrow to the platform (no coach on plain court bookings).
func CompleteBooking(bookingID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
			}
			return err
		}

		res := tx.Model(&b).
			Where("id = ? AND status = ?", b.ID, models.BookingConfirmed).
			Update("status", models.BookingCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("booking %d is %s, not confirmed: %w", bookingID, b.Status, ErrConflict)
		}

		if err := tx.Where("booking_id = ?", b.ID).Delete(&models.BookingSlot{}).Error; err != nil {
			return err
		}
		_, _, err := settleEscrow(tx, models.SubjectBooking, b.ID, "")
		return err
	})
}

func GetBooking(bookingID uint, memberCode string) (*models.Booking, error) {
	var b models.Booking
	if err := database.DB.Preload("Slots").First(&b, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
		}
		return nil, err
	}
	if b.MemberCode != memberCode {
		return nil, fmt.Errorf("booking %d belongs to another member: %w", bookingID, ErrUnauthorized)
	}
	return &b, nil
}

// ExpirePendingBookings cancels bookings stuck in PENDING longer than ttl,
// refunding in full. Run periodically.
func ExpirePendingBookings(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	var ids []uint
	if err := database.DB.Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingPending, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		cancelled := false
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var b models.Booking
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
				return err
			}
			if b.Status != models.BookingPending {
				return nil
			}
			if _, err := cancelBookingTx(tx, &b, 100); err != nil {
				return err
			}
			cancelled = true
			return nil
		})
		if err != nil {
			log.Printf("❌ expiry of pending booking %d failed: %v", id, err)
			continue
		}
		if cancelled {
			expired++
		}
	}
	return expired, nil
}
