package services

import (
	"testing"
	"time"

	"courtside/database"
	"courtside/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package at a fresh in-memory database with the
// default tiers and platform account seeded. A single connection keeps
// sqlite's locking out of the picture; correctness under contention is
// asserted through the claim index and check-and-set transitions.
func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("OPEN_HOUR", "0")
	t.Setenv("CLOSE_HOUR", "24")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.DB = db

	require.NoError(t, EnsureDefaultTiers())
	require.NoError(t, EnsurePlatformAccount())
}

// newFundedMember registers a member and tops their wallet up.
func newFundedMember(t *testing.T, code string, balanceCents int64) *models.Member {
	t.Helper()
	m, err := RegisterMember(code, "Member "+code, false)
	require.NoError(t, err)
	if balanceCents > 0 {
		_, _, err = TopUpWallet(code, balanceCents, "test")
		require.NoError(t, err)
	}
	return m
}

func newCoach(t *testing.T, code string) *models.Member {
	t.Helper()
	m, err := RegisterMember(code, "Coach "+code, true)
	require.NoError(t, err)
	return m
}

// newSlot creates a bookable slot starting the given duration from now.
func newSlot(t *testing.T, court string, startIn time.Duration, priceCents int64) *models.Slot {
	t.Helper()
	start := time.Now().Add(startIn)
	s := models.Slot{
		CourtCode:  court,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		PriceCents: priceCents,
		IsOpen:     true,
	}
	require.NoError(t, database.DB.Create(&s).Error)
	return &s
}

func walletBalance(t *testing.T, code string) int64 {
	t.Helper()
	w, err := GetWallet(code)
	require.NoError(t, err)
	return w.Balance
}

func walletTrxCount(t *testing.T, code string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.DB.Model(&models.WalletTransaction{}).
		Where("member_code = ?", code).Count(&n).Error)
	return n
}
