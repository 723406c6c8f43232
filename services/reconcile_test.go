package services

import (
	"testing"
	"time"

	"courtside/database"
	"courtside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCleanAfterFullLifecycle(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 72*time.Hour, 10, 2500)
	slot := newSlot(t, "court-1", 30*time.Hour, 2000)

	newFundedMember(t, "m1", 10000)
	newFundedMember(t, "m2", 10000)

	booking, err := BookSlots("m1", []uint{slot.ID}, "", 2, "WALLET")
	require.NoError(t, err)
	_, err = CancelBooking(booking.ID, "m1", "", false)
	require.NoError(t, err)

	_, err = EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m2")
	require.NoError(t, err)
	_, err = CancelEnrollment(session.ID, "m2", false)
	require.NoError(t, err)
	_, err = SettleSession(session.ID)
	require.NoError(t, err)

	report, err := Reconcile()
	require.NoError(t, err)
	assert.True(t, report.Clean)
	assert.Empty(t, report.WalletMismatches)
	assert.Empty(t, report.EscrowMismatches)
	assert.Equal(t, int64(0), report.EscrowPoolBalance)
}

func TestReconcileFlagsTamperedWallet(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)

	require.NoError(t, database.DB.Model(&models.Wallet{}).
		Where("member_code = ?", "m1").Update("balance", 9999).Error)

	report, err := Reconcile()
	require.NoError(t, err)
	assert.False(t, report.Clean)
	assert.Contains(t, report.WalletMismatches, "m1")
}

func TestReconcileFlagsBrokenEscrowConservation(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 5000)
	slot := newSlot(t, "court-1", 72*time.Hour, 2000)

	booking, err := BookSlots("m1", []uint{slot.ID}, "", 2, "WALLET")
	require.NoError(t, err)
	require.NoError(t, CompleteBooking(booking.ID))

	require.NoError(t, database.DB.Model(&models.EscrowLedgerEntry{}).
		Where("subject_type = ? AND subject_id = ?", models.SubjectBooking, booking.ID).
		Update("platform_share_cents", 1).Error)

	report, err := Reconcile()
	require.NoError(t, err)
	assert.False(t, report.Clean)
	assert.Len(t, report.EscrowMismatches, 1)
}

func TestReconcileFlagsShortSettlement(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 72*time.Hour, 10, 2500)
	newFundedMember(t, "m1", 10000)
	newFundedMember(t, "m2", 10000)

	_, err := EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m2")
	require.NoError(t, err)

	// Drain part of the pool without touching the enrollment, so the
	// settled amount falls short of price times participants.
	require.NoError(t, RefundFromEscrow("m1", 1000, models.SubjectSession, session.ID))

	_, err = SettleSession(session.ID)
	require.NoError(t, err)

	report, err := Reconcile()
	require.NoError(t, err)
	assert.False(t, report.Clean)
	require.Len(t, report.SettlementMismatches, 1)
	assert.Contains(t, report.SettlementMismatches[0], "settled 4000 expected 5000")
}
