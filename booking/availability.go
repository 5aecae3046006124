package booking

import (
	"context"
	"time"
)

// Overlaps is the half-open interval test: [aIn, aOut) intersects
// [bIn, bOut) iff bIn < aOut and bOut > aIn. A stay ending the day another
// begins does not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return bIn.Before(aOut) && bOut.After(aIn)
}

// HasConflict reports whether an existing pending or confirmed booking on
// the property overlaps the proposed range. excludeID skips a booking being
// re-validated against itself; pass 0 for creations.
//
// This is a read-then-write check: callers that go on to write must hold the
// property's lock (see Service) so two concurrent creations cannot both
// observe false here.
func HasConflict(ctx context.Context, store Store, propertyID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	n, err := store.CountOverlapping(ctx, propertyID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
