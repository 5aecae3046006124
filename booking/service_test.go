package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"airbnb-clone-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// day returns midnight UTC offset whole days from the test clock's date.
func day(offset int) time.Time {
	return DateOnly(testNow).AddDate(0, 0, offset)
}

func newTestService(store *memStore) *Service {
	svc := NewService(store, store)
	svc.now = func() time.Time { return testNow }
	return svc
}

func activeProperty(store *memStore) *models.Property {
	return store.addProperty(&models.Property{
		HostID:             42,
		Title:              "Seaside Loft",
		Capacity:           4,
		NightlyPrice:       120.50,
		CleaningFee:        40,
		ServiceFee:         25,
		Taxes:              18.30,
		Currency:           "EUR",
		MinStay:            2,
		MaxStay:            14,
		CancellationPolicy: PolicyModerate,
		Status:             "active",
	})
}

func validInput(propertyID uint) CreateInput {
	return CreateInput{
		PropertyID: propertyID,
		GuestID:    7,
		CheckIn:    day(5),
		CheckOut:   day(8),
		Adults:     2,
		Children:   1,
	}
}

func TestCreateBooking(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)

	b, err := svc.Create(context.Background(), validInput(property.ID))
	require.NoError(t, err)

	assert.Equal(t, string(StatusPending), b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.NotEmpty(t, b.Reference)
	assert.Equal(t, property.HostID, b.HostID)
	assert.Equal(t, uint(7), b.GuestID)
	assert.False(t, b.IsInstantBook)
	assert.Equal(t, PolicyModerate, b.CancellationPolicy)
	assert.Equal(t, "EUR", b.Currency)

	// 3 nights at 120.50 plus fees, snapshotted exactly
	assert.Equal(t, 3, b.Nights())
	assert.Equal(t, 120.50, b.NightlyRate)
	assert.InDelta(t, 120.50*3+40+25+18.30, b.TotalAmount, 1e-9)
	assert.NotZero(t, b.ID)
}

func TestCreateBookingInstantBook(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := store.addProperty(&models.Property{
		HostID:          42,
		Capacity:        4,
		NightlyPrice:    80,
		MinStay:         1,
		InstantBookable: true,
		Status:          "active",
	})

	b, err := svc.Create(context.Background(), validInput(property.ID))
	require.NoError(t, err)

	assert.Equal(t, string(StatusConfirmed), b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.True(t, b.IsInstantBook)
	// empty policy on the property falls back to the default
	assert.Equal(t, PolicyModerate, b.CancellationPolicy)
}

func TestCreateBookingGuards(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	t.Run("property not found", func(t *testing.T) {
		in := validInput(9999)
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeNotFound))
	})

	t.Run("inactive property", func(t *testing.T) {
		inactive := store.addProperty(&models.Property{HostID: 42, Capacity: 2, NightlyPrice: 50, Status: "inactive"})
		_, err := svc.Create(ctx, validInput(inactive.ID))
		assert.True(t, IsCode(err, CodeForbidden))
	})

	t.Run("self booking", func(t *testing.T) {
		in := validInput(property.ID)
		in.GuestID = property.HostID
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeForbidden))
	})

	t.Run("check-out not after check-in", func(t *testing.T) {
		in := validInput(property.ID)
		in.CheckOut = in.CheckIn
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeInvalidDateRange))
	})

	t.Run("check-in not in the future", func(t *testing.T) {
		in := validInput(property.ID)
		in.CheckIn = day(0)
		in.CheckOut = day(3)
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeInvalidDateRange))
	})

	t.Run("below minimum stay", func(t *testing.T) {
		in := validInput(property.ID)
		in.CheckOut = in.CheckIn.AddDate(0, 0, 1)
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeStayLength))
	})

	t.Run("above maximum stay", func(t *testing.T) {
		in := validInput(property.ID)
		in.CheckOut = in.CheckIn.AddDate(0, 0, 15)
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeStayLength))
	})

	t.Run("over capacity", func(t *testing.T) {
		in := validInput(property.ID)
		in.Adults = 3
		in.Children = 1
		in.Infants = 1
		_, err := svc.Create(ctx, in)
		assert.True(t, IsCode(err, CodeCapacityExceeded))
	})

	// nothing above may have written anything
	assert.Equal(t, 0, store.bookingCount())
}

func TestCreateBookingConflict(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput(property.ID)) // day 5..8
	require.NoError(t, err)

	overlapping := validInput(property.ID)
	overlapping.GuestID = 8
	overlapping.CheckIn = day(7)
	overlapping.CheckOut = day(10)
	_, err = svc.Create(ctx, overlapping)
	assert.True(t, IsCode(err, CodeConflict))

	// A different property is unaffected.
	other := activeProperty(store)
	elsewhere := overlapping
	elsewhere.PropertyID = other.ID
	_, err = svc.Create(ctx, elsewhere)
	assert.NoError(t, err)
}

func TestCreateBookingBackToBackStaysDoNotConflict(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	first := validInput(property.ID) // checks out day 8
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := validInput(property.ID)
	second.GuestID = 8
	second.CheckIn = day(8) // checks in the day the first leaves
	second.CheckOut = day(11)
	_, err = svc.Create(ctx, second)
	assert.NoError(t, err)
}

func TestCreateBookingConcurrentOverlapAdmitsExactlyOne(t *testing.T) {
	store := newMemStore()
	store.countDelay = 2 * time.Millisecond // widen the check-then-write gap
	svc := newTestService(store)
	property := activeProperty(store)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := validInput(property.ID)
			in.GuestID = uint(100 + i)
			_, errs[i] = svc.Create(context.Background(), in)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, IsCode(err, CodeConflict))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.bookingCount())
}

func TestUpdateStatusHostConfirmAndReject(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)

	confirmed, err := svc.UpdateStatus(ctx, b.ID, property.HostID, ActorHost, StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, string(StatusConfirmed), confirmed.Status)

	second := validInput(property.ID)
	second.GuestID = 8
	second.CheckIn = day(9)
	second.CheckOut = day(12)
	b2, err := svc.Create(ctx, second)
	require.NoError(t, err)

	rejected, err := svc.UpdateStatus(ctx, b2.ID, property.HostID, ActorHost, StatusRejected, "")
	require.NoError(t, err)
	assert.Equal(t, string(StatusRejected), rejected.Status)

	// rejected bookings release their dates
	third := second
	third.GuestID = 9
	_, err = svc.Create(ctx, third)
	assert.NoError(t, err)
}

func TestUpdateStatusPermissions(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)

	// the guest cannot confirm their own request
	_, err = svc.UpdateStatus(ctx, b.ID, b.GuestID, ActorGuest, StatusConfirmed, "")
	assert.True(t, IsCode(err, CodeForbidden))

	// a stranger claiming to be the host is rejected on the id match
	_, err = svc.UpdateStatus(ctx, b.ID, 555, ActorHost, StatusConfirmed, "")
	assert.True(t, IsCode(err, CodeForbidden))

	// the host cannot cancel a pending request, only reject it
	_, err = svc.UpdateStatus(ctx, b.ID, property.HostID, ActorHost, StatusCancelled, "")
	assert.True(t, IsCode(err, CodeForbidden))
}

func TestUpdateStatusCancelComputesRefund(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	in := validInput(property.ID)
	in.CheckIn = day(3) // 3 whole days out under moderate -> 50%
	in.CheckOut = day(6)
	b, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, b.ID, property.HostID, ActorHost, StatusConfirmed, "")
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, b.ID, "pi_test_123")
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(ctx, b.ID, b.GuestID, ActorGuest, StatusCancelled, "change of plans")
	require.NoError(t, err)

	assert.Equal(t, string(StatusCancelled), cancelled.Status)
	assert.Equal(t, "change of plans", cancelled.CancellationReason)
	require.NotNil(t, cancelled.RefundAmount)
	assert.InDelta(t, RefundAmount(cancelled.TotalAmount, 50), *cancelled.RefundAmount, 1e-9)
	assert.Equal(t, PaymentRefunded, cancelled.PaymentStatus)
}

func TestUpdateStatusConcurrentCancelAppliesOnce(t *testing.T) {
	store := newMemStore()
	store.findDelay = 2 * time.Millisecond // widen the read-then-save gap
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, b.ID, property.HostID, ActorHost, StatusConfirmed, "")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	reasons := make([]string, attempts)

	for i := 0; i < attempts; i++ {
		reasons[i] = fmt.Sprintf("reason %d", i)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(ctx, b.ID, b.GuestID, ActorGuest, StatusCancelled, reasons[i])
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "only one cancel may pass the transition check")
			winner = i
		} else {
			assert.True(t, IsCode(err, CodeInvalidTransition))
		}
	}
	require.NotEqual(t, -1, winner)

	// the stored metadata is the winner's, not a later overwrite
	stored, err := store.FindBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCancelled), stored.Status)
	assert.Equal(t, reasons[winner], stored.CancellationReason)
	require.NotNil(t, stored.RefundAmount)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, b.ID, b.GuestID, ActorGuest, StatusCancelled, "")
	require.NoError(t, err)

	// cancelling again is an explicit error, not a silent no-op
	_, err = svc.UpdateStatus(ctx, b.ID, b.GuestID, ActorGuest, StatusCancelled, "")
	assert.True(t, IsCode(err, CodeInvalidTransition))
}

func TestUpdateDetailsRepricesAndRevalidates(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)
	originalTotal := b.TotalAmount

	// extending the stay by two nights must re-run pricing
	newOut := day(10)
	updated, err := svc.UpdateDetails(ctx, b.ID, b.GuestID, UpdateInput{CheckOut: &newOut})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Nights())
	assert.InDelta(t, 120.50*5+40+25+18.30, updated.TotalAmount, 1e-9)
	assert.Greater(t, updated.TotalAmount, originalTotal)

	// moving onto another guest's dates is a conflict and changes nothing
	other := validInput(property.ID)
	other.GuestID = 8
	other.CheckIn = day(20)
	other.CheckOut = day(23)
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	badIn, badOut := day(21), day(24)
	_, err = svc.UpdateDetails(ctx, b.ID, b.GuestID, UpdateInput{CheckIn: &badIn, CheckOut: &badOut})
	assert.True(t, IsCode(err, CodeConflict))

	kept, err := store.FindBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, kept.CheckOut.Equal(day(10)), "rejected edit must not leave partial updates")

	// capacity is re-checked on guest changes
	six := 6
	_, err = svc.UpdateDetails(ctx, b.ID, b.GuestID, UpdateInput{Adults: &six})
	assert.True(t, IsCode(err, CodeCapacityExceeded))
}

func TestUpdateDetailsGuards(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)

	_, err = svc.UpdateDetails(ctx, b.ID, 999, UpdateInput{})
	assert.True(t, IsCode(err, CodeForbidden))

	_, err = svc.UpdateStatus(ctx, b.ID, property.HostID, ActorHost, StatusConfirmed, "")
	require.NoError(t, err)

	newIn := day(6)
	_, err = svc.UpdateDetails(ctx, b.ID, b.GuestID, UpdateInput{CheckIn: &newIn})
	assert.True(t, IsCode(err, CodeImmutableState))
}

func TestDeleteBooking(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)

	assert.True(t, IsCode(svc.Delete(ctx, b.ID, 999), CodeForbidden))

	require.NoError(t, svc.Delete(ctx, b.ID, b.GuestID))
	_, err = store.FindBooking(ctx, b.ID)
	assert.True(t, IsCode(err, CodeNotFound))

	// confirmed bookings cannot be deleted, only cancelled
	b2, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, b2.ID, property.HostID, ActorHost, StatusConfirmed, "")
	require.NoError(t, err)
	assert.True(t, IsCode(svc.Delete(ctx, b2.ID, b2.GuestID), CodeImmutableState))
}

func TestMarkPaid(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	b, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)

	paid, err := svc.MarkPaid(ctx, b.ID, "pi_abc")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, "pi_abc", paid.PaymentReference)

	_, err = svc.MarkPaid(ctx, b.ID, "pi_again")
	assert.True(t, IsCode(err, CodeInvalidTransition))

	_, err = svc.MarkPaymentFailed(ctx, b.ID)
	assert.True(t, IsCode(err, CodeInvalidTransition))
}

func TestCompleteElapsed(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	property := activeProperty(store)
	ctx := context.Background()

	// a stay that ended yesterday, seeded directly in the store
	past := &models.Booking{
		PropertyID: property.ID,
		GuestID:    7,
		HostID:     property.HostID,
		CheckIn:    day(-4),
		CheckOut:   day(-1),
		Status:     string(StatusConfirmed),
	}
	require.NoError(t, store.CreateBooking(ctx, past))

	future, err := svc.Create(ctx, validInput(property.ID))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, future.ID, property.HostID, ActorHost, StatusConfirmed, "")
	require.NoError(t, err)

	completed, err := svc.CompleteElapsed(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, past.ID, completed[0].ID)
	assert.Equal(t, string(StatusCompleted), completed[0].Status)

	kept, err := store.FindBooking(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusConfirmed), kept.Status)
}
