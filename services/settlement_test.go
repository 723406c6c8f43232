package services

import (
	"testing"
	"time"

	"courtside/database"
	"courtside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, coachCode string, startIn time.Duration, capacity int, priceCents int64) *models.ClassSession {
	t.Helper()
	start := time.Now().Add(startIn)
	s, err := CreateSession(coachCode, "court-1", start, start.Add(time.Hour), capacity, priceCents)
	require.NoError(t, err)
	return s
}

func TestSettleSessionPaysOutExactlyOnce(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 72*time.Hour, 10, 2500)

	newFundedMember(t, "m1", 5000)
	newFundedMember(t, "m2", 5000)
	_, err := EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m2")
	require.NoError(t, err)

	result, err := SettleSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Revenue)
	assert.Equal(t, int64(4000), result.CoachShare)
	assert.Equal(t, int64(1000), result.PlatformShare)
	assert.Equal(t, int64(4000), walletBalance(t, "coach-1"))
	assert.Equal(t, int64(1000), walletBalance(t, PlatformCode()))

	coachTrx := walletTrxCount(t, "coach-1")
	platformTrx := walletTrxCount(t, PlatformCode())

	_, err = SettleSession(session.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, coachTrx, walletTrxCount(t, "coach-1"))
	assert.Equal(t, platformTrx, walletTrxCount(t, PlatformCode()))
	assert.Equal(t, int64(4000), walletBalance(t, "coach-1"))

	var s models.ClassSession
	require.NoError(t, database.DB.First(&s, session.ID).Error)
	assert.True(t, s.RevenueDistributed)
	assert.Equal(t, models.SessionCompleted, s.Status)
}

func TestSettleEmptySessionRefused(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 72*time.Hour, 10, 2500)

	_, err := SettleSession(session.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = SettleSession(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollmentRespectsCapacityAndDuplicates(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 72*time.Hour, 2, 2500)

	newFundedMember(t, "m1", 5000)
	newFundedMember(t, "m2", 5000)
	newFundedMember(t, "m3", 5000)

	_, err := EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m1")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = EnrollInSession(session.ID, "m2")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m3")
	assert.ErrorIs(t, err, ErrConflict)

	// Coaches do not pay to attend their own class.
	_, err = EnrollInSession(session.ID, coach.MemberCode)
	assert.ErrorIs(t, err, ErrValidation)

	var s models.ClassSession
	require.NoError(t, database.DB.First(&s, session.ID).Error)
	assert.Equal(t, 2, s.CurrentParticipants)
}

func TestCancelEnrollmentReopensSeat(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 72*time.Hour, 1, 2500)

	newFundedMember(t, "m1", 5000)
	newFundedMember(t, "m2", 5000)
	_, err := EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m2")
	assert.ErrorIs(t, err, ErrConflict)

	outcome, err := CancelEnrollment(session.ID, "m1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), outcome.RefundCents)
	assert.Equal(t, int64(5000), walletBalance(t, "m1"))

	// The freed seat is available, including to the member who left.
	_, err = EnrollInSession(session.ID, "m2")
	require.NoError(t, err)
	_, err = CancelEnrollment(session.ID, "m2", false)
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
}

func TestForcedLateEnrollmentCancelForfeits(t *testing.T) {
	setupTestDB(t)
	coach := newCoach(t, "coach-1")
	session := newSession(t, coach.MemberCode, 10*time.Hour, 10, 2500)

	newFundedMember(t, "m1", 5000)
	newFundedMember(t, "m2", 5000)
	_, err := EnrollInSession(session.ID, "m1")
	require.NoError(t, err)
	_, err = EnrollInSession(session.ID, "m2")
	require.NoError(t, err)

	_, err = CancelEnrollment(session.ID, "m1", false)
	assert.ErrorIs(t, err, ErrConflict)

	outcome, err := CancelEnrollment(session.ID, "m1", true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), outcome.RefundCents)
	assert.Equal(t, int64(2500), walletBalance(t, "m1"))
	// The forfeit goes straight to the platform, not back into the pool.
	assert.Equal(t, int64(2500), walletBalance(t, PlatformCode()))

	result, err := SettleSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), result.Revenue)
	assert.Equal(t, int64(2000), result.CoachShare)

	revenue, err := PlatformRevenue()
	require.NoError(t, err)
	assert.Equal(t, int64(2500+500), revenue)
}

func TestCreateSessionValidation(t *testing.T) {
	setupTestDB(t)
	newFundedMember(t, "m1", 0)
	start := time.Now().Add(72 * time.Hour)

	_, err := CreateSession("m1", "court-1", start, start.Add(time.Hour), 10, 2500)
	assert.ErrorIs(t, err, ErrNotFound)

	coach := newCoach(t, "coach-1")
	_, err = CreateSession(coach.MemberCode, "court-1", start, start.Add(time.Hour), 0, 2500)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = CreateSession(coach.MemberCode, "court-1", start, start.Add(time.Hour), 10, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = CreateSession(coach.MemberCode, "court-1", start, start, 10, 2500)
	assert.ErrorIs(t, err, ErrValidation)
}
