package services

import (
	"os"
	"strconv"
	"time"
)

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// Top-up bounds in cents. Defaults: 20–1000 currency units.
func topUpBounds() (int64, int64) {
	return envInt64("TOPUP_MIN_CENTS", 2000), envInt64("TOPUP_MAX_CENTS", 100000)
}

// Coach percentage of settled revenue; platform keeps the remainder.
func coachSharePercent() int64 {
	return envInt64("REVENUE_SHARE_COACH_PCT", 80)
}

// Court operating hours, slot start must fall in [open, close).
func operatingHours() (int, int) {
	return envInt("OPEN_HOUR", 8), envInt("CLOSE_HOUR", 22)
}

// venueLocation is the timezone operating hours are expressed in.
func venueLocation() *time.Location {
	if v := os.Getenv("VENUE_TZ"); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			return loc
		}
	}
	return time.Local
}

// PlatformCode is the member code of the platform revenue account.
func PlatformCode() string {
	if v := os.Getenv("PLATFORM_MEMBER_CODE"); v != "" {
		return v
	}
	return "platform"
}
