package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"courtside/database"
	"courtside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSlotsEndToEnd(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)
	slot := newSlot(t, "court-1", 72*time.Hour, 2000)

	booking, err := BookSlots("m1", []uint{slot.ID}, "friendly match", 4, "WALLET")
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, int64(2000), booking.TotalAmount)
	assert.Equal(t, int64(20), booking.PointsEarned)
	assert.Equal(t, int64(3000), walletBalance(t, "m1"))

	pool, err := PlatformEscrowBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pool)

	m, err := GetMember("m1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), m.TierPointBalance)

	meta := booking.Meta.Data()
	assert.Equal(t, "friendly match", meta.Purpose)
	assert.Equal(t, 4, meta.PlayerCount)
}

func TestSlotExclusivity(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)
	newFundedMember(t, "m2", 5000)
	slot := newSlot(t, "court-1", 72*time.Hour, 2000)

	_, err := BookSlots("m1", []uint{slot.ID}, "", 2, "WALLET")
	require.NoError(t, err)

	_, err = BookSlots("m2", []uint{slot.ID}, "", 2, "WALLET")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// The loser keeps their money.
	assert.Equal(t, int64(5000), walletBalance(t, "m2"))
}

func TestConcurrentBookingExactlyOneWinner(t *testing.T) {
	setupTestDB(t)
	const contenders = 8
	for i := 0; i < contenders; i++ {
		newFundedMember(t, fmt.Sprintf("m%d", i), 5000)
	}
	slot := newSlot(t, "court-1", 72*time.Hour, 2000)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = BookSlots(fmt.Sprintf("m%d", i), []uint{slot.ID}, "", 2, "WALLET")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, winners)

	pool, err := PlatformEscrowBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pool)
}

func TestMultiSlotBookingIsAllOrNothing(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 10000)
	newFundedMember(t, "m2", 10000)
	a := newSlot(t, "court-1", 72*time.Hour, 2000)
	b := newSlot(t, "court-2", 72*time.Hour, 2000)

	_, err := BookSlots("m2", []uint{b.ID}, "", 2, "WALLET")
	require.NoError(t, err)

	_, err = BookSlots("m1", []uint{a.ID, b.ID}, "", 2, "WALLET")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Slot a must not have been claimed by the failed batch.
	open, err := ListOpenSlots("court-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.ID, open[0].ID)
	assert.Equal(t, int64(10000), walletBalance(t, "m1"))
}

func TestBookSlotsValidation(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)

	_, err := BookSlots("m1", nil, "", 1, "WALLET")
	assert.ErrorIs(t, err, ErrValidation)

	slot := newSlot(t, "court-1", 72*time.Hour, 2000)
	_, err = BookSlots("m1", []uint{slot.ID, slot.ID}, "", 1, "WALLET")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = BookSlots("m1", []uint{slot.ID, 9999}, "", 1, "WALLET")
	assert.ErrorIs(t, err, ErrNotFound)

	past := newSlot(t, "court-2", -2*time.Hour, 2000)
	_, err = BookSlots("m1", []uint{past.ID}, "", 1, "WALLET")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompleteBookingReleasesEscrow(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)
	slot := newSlot(t, "court-1", 72*time.Hour, 2000)

	booking, err := BookSlots("m1", []uint{slot.ID}, "", 2, "WALLET")
	require.NoError(t, err)

	require.NoError(t, CompleteBooking(booking.ID))

	// No coach on a court booking: the platform keeps the full amount.
	assert.Equal(t, int64(2000), walletBalance(t, PlatformCode()))
	pool, err := PlatformEscrowBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pool)

	err = CompleteBooking(booking.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExpirePendingBookingsRefundsInFull(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)
	slot := newSlot(t, "court-1", 72*time.Hour, 2000)

	booking, err := BookSlots("m1", []uint{slot.ID}, "", 2, "WALLET")
	require.NoError(t, err)

	// Simulate a booking stuck before confirmation.
	require.NoError(t, database.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"status":     models.BookingPending,
			"created_at": time.Now().Add(-time.Hour),
		}).Error)

	expired, err := ExpirePendingBookings(15 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, int64(5000), walletBalance(t, "m1"))

	open, err := ListOpenSlots("court-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	// Confirmed bookings inside the window are untouched.
	expired, err = ExpirePendingBookings(15 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestBookSlotsOperatingHourBounds(t *testing.T) {
	setupTestDB(t)
	t.Setenv("VENUE_TZ", "UTC")
	t.Setenv("OPEN_HOUR", "8")
	t.Setenv("CLOSE_HOUR", "22")
	newFundedMember(t, "m1", 20000)

	day := time.Now().UTC().Add(72 * time.Hour)
	at := func(hour int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
	}
	mkSlot := func(court string, start, end time.Time) *models.Slot {
		s := models.Slot{CourtCode: court, StartTime: start, EndTime: end, PriceCents: 2000, IsOpen: true}
		require.NoError(t, database.DB.Create(&s).Error)
		return &s
	}

	early := mkSlot("court-1", at(7), at(8))
	_, err := BookSlots("m1", []uint{early.ID}, "", 1, "WALLET")
	assert.ErrorIs(t, err, ErrValidation)

	// Starts inside hours but runs past closing.
	late := mkSlot("court-2", at(21), at(23))
	_, err = BookSlots("m1", []uint{late.ID}, "", 1, "WALLET")
	assert.ErrorIs(t, err, ErrValidation)

	ok := mkSlot("court-3", at(9), at(10))
	_, err = BookSlots("m1", []uint{ok.ID}, "", 1, "WALLET")
	require.NoError(t, err)

	// Last playable slot of the day ends exactly at closing.
	closing := mkSlot("court-4", at(21), at(22))
	_, err = BookSlots("m1", []uint{closing.ID}, "", 1, "WALLET")
	require.NoError(t, err)
}
