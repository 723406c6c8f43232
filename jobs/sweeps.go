package jobs

import (
	"log"
	"os"
	"strconv"
	"time"

	"courtside/services"
)

func interval(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

// StartSweeps launches the periodic background jobs: the tier upgrade
// sweep and the pending-booking expiry sweep.
func StartSweeps() {
	tickerTier := time.NewTicker(interval("TIER_SWEEP_INTERVAL_SECONDS", 10*time.Minute))
	go func() {
		for {
			<-tickerTier.C
			upgraded, err := services.RunTierUpgradeSweep()
			if err != nil {
				log.Printf("❌ tier sweep failed: %v", err)
				continue
			}
			if upgraded > 0 {
				log.Printf("✅ tier sweep upgraded %d members", upgraded)
			}
		}
	}()

	ttl := interval("BOOKING_PENDING_TTL_SECONDS", 15*time.Minute)
	tickerExpiry := time.NewTicker(interval("BOOKING_EXPIRY_INTERVAL_SECONDS", time.Minute))
	go func() {
		for {
			<-tickerExpiry.C
			expired, err := services.ExpirePendingBookings(ttl)
			if err != nil {
				log.Printf("❌ booking expiry sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("✅ expired %d stale pending bookings", expired)
			}
		}
	}()
}
