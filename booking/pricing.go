package booking

import (
	"math"
	"time"
)

// PriceBreakdown is the snapshot stored on a booking at creation or
// modification time. Totals are never recomputed from live property data.
type PriceBreakdown struct {
	NightlyRate float64 `json:"nightlyRate"`
	Nights      int     `json:"nights"`
	CleaningFee float64 `json:"cleaningFee"`
	ServiceFee  float64 `json:"serviceFee"`
	Taxes       float64 `json:"taxes"`
	Total       float64 `json:"total"`
}

// ComputePrice is total over its documented domain: nights must be a
// positive integer and the fee inputs non-negative, both pre-validated by
// the caller.
func ComputePrice(nightlyRate float64, nights int, cleaningFee, serviceFee, taxes float64) PriceBreakdown {
	total := nightlyRate*float64(nights) + cleaningFee + serviceFee + taxes
	return PriceBreakdown{
		NightlyRate: nightlyRate,
		Nights:      nights,
		CleaningFee: cleaningFee,
		ServiceFee:  serviceFee,
		Taxes:       taxes,
		Total:       total,
	}
}

// Nights returns the number of calendar nights between check-in and
// check-out: the ceiling of the day difference, so partial days count as a
// full night.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// DateOnly truncates t to midnight UTC. Stays have date-only semantics;
// every comparison in the core goes through this.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
