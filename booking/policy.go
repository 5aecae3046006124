package booking

import (
	"math"
	"time"
)

// Cancellation policy tiers governing refund-by-lead-time.
const (
	PolicyFlexible    = "flexible"
	PolicyModerate    = "moderate"
	PolicyStrict      = "strict"
	PolicySuperStrict = "super_strict"
)

// DaysUntilCheckIn is the whole days between now and check-in, rounded up.
// Negative once check-in has passed.
func DaysUntilCheckIn(checkIn, now time.Time) int {
	return int(math.Ceil(checkIn.Sub(now).Hours() / 24))
}

// RefundPercentage evaluates the deterministic refund table for a policy.
//
// flexible keeps the historical same-day floor of 50% rather than 0%; every
// booking cancelled under that policy has been refunded that way and the
// product copy promises "at least half back" for flexible listings. An
// unknown policy tag falls back to moderate, the Booking default.
func RefundPercentage(policy string, checkIn, now time.Time) int {
	days := DaysUntilCheckIn(checkIn, now)

	switch policy {
	case PolicyFlexible:
		if days >= 1 {
			return 100
		}
		return 50
	case PolicyStrict:
		if days >= 7 {
			return 50
		}
		return 0
	case PolicySuperStrict:
		if days >= 30 {
			return 50
		}
		return 0
	default: // moderate
		if days >= 5 {
			return 100
		}
		if days >= 1 {
			return 50
		}
		return 0
	}
}

// RefundAmount applies a refund percentage to a total, rounded to the
// currency's minor unit (2 decimal places for every currency in scope).
func RefundAmount(total float64, percentage int) float64 {
	return math.Round(total*float64(percentage)) / 100
}
